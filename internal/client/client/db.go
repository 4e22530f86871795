package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/oriontask/internal/client/migrations"
	"github.com/pressly/goose/v3"
)

// busyTimeoutMs lets a second process (e.g. `oriontask agora` next to an
// open shell) wait for the write lock instead of failing at once.
const busyTimeoutMs = 5000

// RunMigrations applies the embedded goose migrations to db and returns the
// number of migrations that ran.
func RunMigrations(ctx context.Context, db *sql.DB) (int, error) {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return 0, fmt.Errorf("load migrations: %w", err)
	}

	results, err := p.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("apply migrations: %w", err)
	}
	return len(results), nil
}

// InitDatabase opens the SQLite file at path and brings its schema up to
// date. The caller must import a driver registered as "sqlite".
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busyTimeoutMs))
	if err != nil {
		return nil, err
	}

	if _, err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
