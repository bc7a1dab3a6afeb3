// Package storage opens the agent's local SQLite database, applies embedded
// migrations, and hands out the record repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/fieldreport/internal/agent/migrations"
	"github.com/dmitrijs2005/fieldreport/internal/agent/repositories/people"
	"github.com/dmitrijs2005/fieldreport/internal/agent/repositories/reports"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the agent's local record stores.
type Repositories struct {
	Reports reports.Repository
	People  people.Repository
	DB      *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Repositories{
		Reports: reports.NewSQLiteRepository(db),
		People:  people.NewSQLiteRepository(db),
		DB:      db,
	}, nil
}
