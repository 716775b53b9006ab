package v1

import (
	"context"

	"github.com/weekmatrix/weekmatrix/internal/domain"
	"github.com/weekmatrix/weekmatrix/internal/session"
)

// TaskSessions abstracts per-user session controller access for handler
// testing. *session.Manager satisfies this interface.
type TaskSessions interface {
	Controller(ctx context.Context, uid string) (*session.Controller, error)
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Guest(ctx context.Context) (*domain.User, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}
