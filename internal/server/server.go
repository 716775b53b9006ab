package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/weekmatrix/weekmatrix/internal/api/ws"
	"github.com/weekmatrix/weekmatrix/internal/auth"
	"github.com/weekmatrix/weekmatrix/internal/config"
	"github.com/weekmatrix/weekmatrix/internal/server/middleware"
	"github.com/weekmatrix/weekmatrix/internal/session"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	sessions   *session.Manager
	auth       *auth.Service
	wsHub      *ws.Hub // nil when redis pub/sub is not configured
	cfg        *config.Config
}

// New creates a Server with all routes wired. pubsub may be nil; the live
// task stream is only mounted when it is provided.
func New(cfg *config.Config, sessions *session.Manager, authSvc *auth.Service, pubsub ws.Subscriber) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	var hub *ws.Hub
	if pubsub != nil {
		hub = ws.NewHub(pubsub)
	}

	s := &Server{
		router:   router,
		sessions: sessions,
		auth:     authSvc,
		wsHub:    hub,
		cfg:      cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Rate limiter tables clean themselves up for the process lifetime.
	limiterCtx := context.Background()

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for auth endpoints.
	// 2. Authenticated group for all other endpoints.
	router.Route("/api/v1", func(r chi.Router) {
		// Unauthenticated auth routes (register, login, refresh, guest).
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(limiterCtx, 5, 10))

			authConfig := huma.DefaultConfig("WeekMatrix Auth API", "1.0.0")
			authConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			authAPI := humachi.New(r, authConfig)
			registerAuthRoutes(authAPI, authSvc)

			if cfg.OAuth.GoogleClientID != "" {
				google := auth.NewGoogleProvider(
					cfg.OAuth.GoogleClientID,
					cfg.OAuth.GoogleClientSecret,
					cfg.OAuth.RedirectURL,
				)
				registerOAuthRoutes(authAPI, authSvc, google)
			}
		})

		// Authenticated routes (everything else).
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RateLimitByUser(limiterCtx, 50, 100))

			apiConfig := huma.DefaultConfig("WeekMatrix API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, sessions)
		})
	})

	// WebSocket routes.
	if hub != nil {
		router.Route("/ws", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			registerWSRoutes(r, hub)
		})
	}

	// Health check (unauthenticated).
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
