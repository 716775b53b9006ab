package v1_test

import (
	"context"
	"sync"

	"github.com/weekmatrix/weekmatrix/internal/domain"
	"github.com/weekmatrix/weekmatrix/internal/server/middleware"
	"github.com/weekmatrix/weekmatrix/internal/session"
	"github.com/weekmatrix/weekmatrix/internal/store"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated user into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(uid string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, uid)
	return ctx
}

// ---------------------------------------------------------------------------
// In-memory KV + real session manager
// ---------------------------------------------------------------------------

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (f *memKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *memKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *memKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

// newSessions returns a session manager over an in-memory KV, so handler tests
// exercise the real controller semantics.
func newSessions() *session.Manager {
	return session.NewManager(store.NewAdapter(newMemKV()), nil, nil)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	guestFunc        func(ctx context.Context) (*domain.User, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) Guest(ctx context.Context) (*domain.User, string, error) {
	return m.guestFunc(ctx)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}
