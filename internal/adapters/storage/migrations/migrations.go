// Package migrations embebe los esquemas SQL y los aplica con goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "pgx"
)

// goose guarda FS y dialecto en estado global
var mu sync.Mutex

// upContext es un seam para tests.
var upContext = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// Up aplica las migraciones del dialecto indicado.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	dir, err := dirFor(dialect)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(files)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := upContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}
	return nil
}

func dirFor(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("no migrations for dialect %q", dialect)
	}
}
