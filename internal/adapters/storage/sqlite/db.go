package sqlite

import (
	"context"
	"database/sql"

	"prescription-reminder/internal/adapters/storage/migrations"

	_ "modernc.org/sqlite"
)

// Open abre (o crea) el archivo SQLite y aplica las migraciones embebidas.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// un solo writer; evita SQLITE_BUSY entre conexiones del pool
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db, migrations.DialectSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
