// Package main implements the entry point for the Duvet API server,
// the multi-tenant task backend. It loads configuration, runs database
// migrations on demand, wires the application dependencies and starts
// the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/duvethq/duvet-api/internal/config"
	"github.com/duvethq/duvet-api/internal/dbaccess"
	"github.com/duvethq/duvet-api/internal/migrations"
	"github.com/duvethq/duvet-api/internal/platform/logger"
)

func main() {
	migrate := flag.String("migrate", "", "run migrations and exit: up | status")
	flag.Parse()

	if err := run(*migrate); err != nil {
		log.Fatalf("duvet-api: %v", err)
	}
}

// run is the testable core of main.
func run(migrate string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	slogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	if migrate != "" {
		return runMigrations(cfg, migrate)
	}

	slogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	app, err := newApplication(cfg, slogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(context.Background())
}

// runMigrations executes the requested migration command on the admin
// role and exits. Migrations always run with administrative credentials;
// the API role owns no schema objects.
func runMigrations(cfg *config.Config, command string) error {
	creds, err := dbaccess.CredentialsFromConfig(cfg.Database, dbaccess.RoleAdmin)
	if err != nil {
		return err
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	switch command {
	case "up":
		return migrations.Up(ctx, creds.ConnString())
	case "status":
		return migrations.Status(ctx, creds.ConnString())
	default:
		fmt.Fprintf(os.Stderr, "unknown migrate command %q (expected up or status)\n", command)
		os.Exit(2)
		return nil
	}
}
