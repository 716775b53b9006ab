package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/weekmatrix/weekmatrix/internal/api/v1"
	"github.com/weekmatrix/weekmatrix/internal/api/ws"
	"github.com/weekmatrix/weekmatrix/internal/auth"
	"github.com/weekmatrix/weekmatrix/internal/session"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerOAuthRoutes(api huma.API, authSvc *auth.Service, provider *auth.OAuthProvider) {
	v1.RegisterOAuthRoutes(api, authSvc, provider)
}

func registerAPIRoutes(api huma.API, sessions *session.Manager) {
	v1.RegisterTaskRoutes(api, sessions)
	v1.RegisterAnalyticsRoutes(api, sessions)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/tasks", hub.ServeTasks)
}
