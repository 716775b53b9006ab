package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/weekmatrix/weekmatrix/internal/domain"
)

// OAuthProvider is an OAuth2 sign-in backend for the mobile client.
type OAuthProvider struct {
	Name        string
	UserInfoURL string

	oauthConfig *oauth2.Config
}

// NewGoogleProvider returns the Google sign-in configuration.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name:        "google",
		UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
			RedirectURL:  redirectURL,
		},
	}
}

// AuthorizationURL returns the OAuth2 authorization URL with the given state.
func (p *OAuthProvider) AuthorizationURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens and fetches the
// provider-side email address.
func (p *OAuthProvider) ExchangeCode(ctx context.Context, code string) (email string, err error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("auth.ExchangeCode: %w", err)
	}

	client := p.oauthConfig.Client(ctx, token)

	resp, err := client.Get(p.UserInfoURL)
	if err != nil {
		return "", fmt.Errorf("auth.ExchangeCode: fetching user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth.ExchangeCode: user info returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("auth.ExchangeCode: reading user info: %w", err)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("auth.ExchangeCode: %w", err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("auth.ExchangeCode: provider returned no email")
	}

	return info.Email, nil
}

// SignInWithOAuth completes the code exchange and returns tokens for the
// matching user, creating a password-less account on first sign-in.
func (s *Service) SignInWithOAuth(ctx context.Context, provider *OAuthProvider, code string) (accessToken, refreshToken string, err error) {
	email, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("auth.SignInWithOAuth: %w", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		user = &domain.User{
			UID:       "user_" + uuid.NewString(),
			Email:     email,
			CreatedAt: time.Now(),
		}
		if createErr := s.userRepo.Create(ctx, user); createErr != nil {
			return "", "", fmt.Errorf("auth.SignInWithOAuth: %w", createErr)
		}
	}

	accessToken, err = IssueAccessToken(s.jwtSecret, user.UID, user.IsGuest, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.SignInWithOAuth: %w", err)
	}

	refreshToken, err = IssueRefreshToken(s.jwtSecret, user.UID, user.IsGuest, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.SignInWithOAuth: %w", err)
	}

	return accessToken, refreshToken, nil
}
