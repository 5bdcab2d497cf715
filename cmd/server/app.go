package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/duvethq/duvet-api/internal/config"
	"github.com/duvethq/duvet-api/internal/dbaccess"
	"github.com/duvethq/duvet-api/internal/identity"
	"github.com/duvethq/duvet-api/internal/jobs"
	"github.com/duvethq/duvet-api/internal/platform/postgres"
	"github.com/duvethq/duvet-api/internal/platform/redis"
	"github.com/duvethq/duvet-api/internal/service/auth"
	"github.com/duvethq/duvet-api/internal/store"
)

// Execution domains of this process. The HTTP server and the background
// jobs each own one; their connection pools never mix.
const (
	domainServer dbaccess.DomainKey = "server"
	domainJobs   dbaccess.DomainKey = "jobs"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Database access service: the single owner of physical connections.
	db *dbaccess.Manager

	// Service interfaces
	verifier auth.TokenVerifier
	identity *identity.Service

	// Background workers
	redis     *goredis.Client
	heartbeat *jobs.Heartbeat
}

// newApplication creates a new application instance with all
// dependencies initialized. No database connection is opened here;
// pools come up lazily on first use.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	app.db = dbaccess.NewManager(cfg.Database, logger.With("component", "dbaccess"))

	var err error
	app.verifier, err = auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	profile := identity.NewProfileClient(cfg.Auth.ProviderDomain)
	app.identity = identity.NewService(app.db, profile, func(q store.Querier) store.UserStore {
		return postgres.NewUserStore(q)
	})

	// Redis is optional: without it the heartbeat only checks the
	// database.
	if cfg.Redis.Host != "" {
		app.redis, err = redis.NewClient(context.Background(), cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis client: %w", err)
		}
		logger.Info("redis client initialized", "host", cfg.Redis.Host)
	}

	app.heartbeat = jobs.NewHeartbeat(app.db, app.redis, jobs.HeartbeatConfig{},
		logger.With("component", "heartbeat"))

	logger.Info("application initialized")
	return app, nil
}

// Run starts the background workers and the HTTP server, then blocks
// until shutdown completes.
func (app *application) Run(ctx context.Context) error {
	// The heartbeat runs in its own execution domain; its pools are
	// disjoint from the ones serving requests.
	app.heartbeat.Start(dbaccess.WithDomain(ctx, domainJobs))

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.heartbeat != nil {
		app.heartbeat.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if app.db != nil {
		app.db.Close()
	}

	app.logger.Info("application shutdown completed")
}
