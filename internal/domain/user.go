package domain

import (
	"context"
	"time"
)

// User is the active-identity record. Guest users are created on demand and
// have no email or password.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // argon2id, empty for guests
	IsGuest      bool      `json:"isGuest"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUID(ctx context.Context, uid string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
