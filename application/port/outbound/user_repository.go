package outbound

import (
	"context"
	"errors"

	"github.com/txgate/txgate/domain/entity"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
}
