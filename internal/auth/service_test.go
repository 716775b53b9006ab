package auth_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekmatrix/weekmatrix/internal/auth"
	"github.com/weekmatrix/weekmatrix/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// memUserRepo is an in-memory domain.UserRepository for service tests.
type memUserRepo struct {
	byUID   map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byUID:   make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	copied := *u
	r.byUID[u.UID] = &copied
	if u.Email != "" {
		r.byEmail[u.Email] = &copied
	}
	return nil
}

func (r *memUserRepo) GetByUID(_ context.Context, uid string) (*domain.User, error) {
	u, ok := r.byUID[uid]
	if !ok {
		return nil, fmt.Errorf("memUserRepo.GetByUID: %w", domain.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("memUserRepo.GetByEmail: %w", domain.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func newService(repo domain.UserRepository) *auth.Service {
	return auth.NewService(repo, testSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := newService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "secretpw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.UID, "user_"))
	assert.False(t, user.IsGuest)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "secretpw1", "password must never be stored in the clear")

	access, refresh, err := svc.Login(ctx, "alice@example.com", "secretpw1")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	claims, err := auth.ValidateToken(testSecret, access)
	require.NoError(t, err)
	assert.Equal(t, user.UID, claims.UserID)
	assert.False(t, claims.IsGuest)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "secretpw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "otherpw99")
	assert.ErrorIs(t, err, auth.ErrUserAlreadyExists)
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "secretpw1")
	require.NoError(t, err)

	t.Run("wrong_password", func(t *testing.T) {
		t.Parallel()
		_, _, err := svc.Login(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown_email", func(t *testing.T) {
		t.Parallel()
		_, _, err := svc.Login(ctx, "ghost@example.com", "secretpw1")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestGuest(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := newService(repo)

	user, access, err := svc.Guest(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.UID, "guest_"))
	assert.True(t, user.IsGuest)
	assert.Empty(t, user.Email)

	claims, err := auth.ValidateToken(testSecret, access)
	require.NoError(t, err)
	assert.Equal(t, user.UID, claims.UserID)
	assert.True(t, claims.IsGuest)

	// Two guests never share an identity.
	other, _, err := svc.Guest(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, user.UID, other.UID)
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	repo := newMemUserRepo()
	svc := newService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "secretpw1")
	require.NoError(t, err)
	access, refresh, err := svc.Login(ctx, "alice@example.com", "secretpw1")
	require.NoError(t, err)

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		newAccess, err := svc.RefreshToken(ctx, refresh)
		require.NoError(t, err)

		claims, err := auth.ValidateToken(testSecret, newAccess)
		require.NoError(t, err)
		assert.Equal(t, user.UID, claims.UserID)
	})

	t.Run("access_token_rejected", func(t *testing.T) {
		t.Parallel()

		// An access token must not be accepted where a refresh token is expected.
		_, err := svc.RefreshToken(ctx, access)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage_rejected", func(t *testing.T) {
		t.Parallel()

		_, err := svc.RefreshToken(ctx, "not.a.jwt")
		assert.Error(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	t.Run("wrong_secret", func(t *testing.T) {
		t.Parallel()

		tok, err := auth.IssueAccessToken(testSecret, "user_1", false, time.Minute)
		require.NoError(t, err)

		_, err = auth.ValidateToken("another-secret-another-secret-32", tok)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		tok, err := auth.IssueAccessToken(testSecret, "user_1", false, -time.Minute)
		require.NoError(t, err)

		_, err = auth.ValidateToken(testSecret, tok)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
