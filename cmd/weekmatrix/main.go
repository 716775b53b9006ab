package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/weekmatrix/weekmatrix/internal/auth"
	"github.com/weekmatrix/weekmatrix/internal/config"
	"github.com/weekmatrix/weekmatrix/internal/notify"
	"github.com/weekmatrix/weekmatrix/internal/server"
	"github.com/weekmatrix/weekmatrix/internal/session"
	"github.com/weekmatrix/weekmatrix/internal/store"
	"github.com/weekmatrix/weekmatrix/internal/store/postgres"
	redisstore "github.com/weekmatrix/weekmatrix/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("WM_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("WM_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	pg, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer pg.Close()

	// Connect to Redis.
	rds, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rds.Close()

	// Pick the durable task backend.
	var kv store.KV = pg.KV()
	if cfg.Storage.Backend == "redis" {
		kv = rds
	}
	adapter := store.NewAdapter(kv)

	// Task reminders go to Slack when configured, to the log otherwise.
	var messenger notify.Messenger = &notify.LogMessenger{}
	if cfg.Slack.BotToken != "" {
		messenger = notify.NewSlackMessenger(slacklib.New(cfg.Slack.BotToken), cfg.Slack.Channel)
		log.Info().Msg("slack reminders enabled")
	}
	scheduler := notify.NewScheduler(messenger)
	defer scheduler.CancelAll()

	// Session manager fans saved-task events out over redis pub/sub and keeps
	// the reminder timers in sync with durable state.
	sessions := session.NewManager(adapter, rds, scheduler)
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer flushCancel()
		if flushErr := sessions.Close(flushCtx); flushErr != nil {
			log.Error().Err(flushErr).Msg("session flush failed")
		}
	}()

	// Create auth service.
	authSvc := auth.NewService(pg.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(cfg, sessions, authSvc, rds)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("storage", cfg.Storage.Backend).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
