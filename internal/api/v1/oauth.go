package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/weekmatrix/weekmatrix/internal/auth"
)

// OAuthExchanger abstracts the OAuth sign-in flow for handler testing.
// *auth.Service satisfies this interface.
type OAuthExchanger interface {
	SignInWithOAuth(ctx context.Context, provider *auth.OAuthProvider, code string) (accessToken, refreshToken string, err error)
}

type OAuthURLInput struct {
	State string `query:"state" minLength:"1" doc:"Opaque state echoed back on the redirect"`
}

type OAuthURLOutput struct {
	Body struct {
		URL string `json:"url"`
	}
}

type OAuthExchangeInput struct {
	Body struct {
		Code string `json:"code" minLength:"1" doc:"Authorization code from the provider redirect"`
	}
}

type OAuthExchangeOutput struct {
	Body struct {
		AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

func RegisterOAuthRoutes(api huma.API, svc OAuthExchanger, provider *auth.OAuthProvider) {
	huma.Register(api, huma.Operation{
		OperationID: "oauth-" + provider.Name + "-url",
		Method:      http.MethodGet,
		Path:        "/auth/oauth/" + provider.Name + "/url",
		Summary:     "Get the " + provider.Name + " authorization URL",
		Tags:        []string{"Auth"},
	}, func(_ context.Context, input *OAuthURLInput) (*OAuthURLOutput, error) {
		out := &OAuthURLOutput{}
		out.Body.URL = provider.AuthorizationURL(input.State)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "oauth-" + provider.Name + "-exchange",
		Method:      http.MethodPost,
		Path:        "/auth/oauth/" + provider.Name,
		Summary:     "Exchange a " + provider.Name + " authorization code for tokens",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *OAuthExchangeInput) (*OAuthExchangeOutput, error) {
		accessToken, refreshToken, err := svc.SignInWithOAuth(ctx, provider, input.Body.Code)
		if err != nil {
			return nil, huma.Error401Unauthorized("oauth sign-in failed")
		}

		out := &OAuthExchangeOutput{}
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})
}
