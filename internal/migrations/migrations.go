// Package migrations embeds the database schema migrations and applies
// them with goose. Migrations always run under the administrative role:
// the API role neither owns the schema nor may alter it.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

// Up applies all pending migrations to the database at the given
// connection string.
func Up(ctx context.Context, connString string) error {
	db, err := open(connString)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := goose.UpContext(ctx, db, "sql"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Status prints the migration status to goose's standard logger. Used by
// the -migrate=status flag of the server binary.
func Status(ctx context.Context, connString string) error {
	db, err := open(connString)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := goose.StatusContext(ctx, db, "sql"); err != nil {
		return fmt.Errorf("failed to report migration status: %w", err)
	}
	return nil
}

func open(connString string) (*sql.DB, error) {
	goose.SetBaseFS(embedded)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}
	return db, nil
}
