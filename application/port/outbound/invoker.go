package outbound

import (
	"context"
	"errors"

	"github.com/txgate/txgate/domain"
)

var (
	ErrUnknownObject = errors.New("unknown business object")
	ErrUnknownMethod = errors.New("unknown business method")
)

// TargetInvoker executes the business logic behind a resolved target.
// Business-level failures are Results, not errors; an error means the
// invocation never reached a handler.
type TargetInvoker interface {
	Invoke(ctx context.Context, objectName, methodName string, ectx domain.ExecutionContext, params interface{}) (*domain.Result, error)
}
