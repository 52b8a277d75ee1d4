package postgres

import (
	"context"
	"database/sql"
	"time"

	"prescription-reminder/internal/adapters/storage/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre un pool a Postgres usando pgx (database/sql) y aplica las migraciones.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// un solo usuario: pool chico
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := migrations.Up(ctx, db, migrations.DialectPostgres); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
