package entity

import (
	"time"
)

// User is a login principal. Authorization is evaluated against the
// user's ProfileID, not the user itself.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	ProfileID int64      `json:"profile_id"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

func NewUser(username, email, password string, profileID int64) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Email:     email,
		Password:  password,
		ProfileID: profileID,
		Status:    UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive reports whether the user may log in.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && u.DeletedAt == nil
}
