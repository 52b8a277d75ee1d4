// Package storage elige el adapter de reminders.Repository según STORAGE_BACKEND.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"prescription-reminder/internal/adapters/storage/file"
	"prescription-reminder/internal/adapters/storage/memory"
	"prescription-reminder/internal/adapters/storage/postgres"
	"prescription-reminder/internal/adapters/storage/sqlite"
	"prescription-reminder/internal/domain/reminders"
	"prescription-reminder/internal/platform/config"
	"prescription-reminder/internal/platform/logger"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open devuelve el repositorio y lo que hay que cerrar al apagar.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (reminders.Repository, io.Closer, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warn("using in-memory storage: reminders are lost on restart", nil)
		return memory.NewReminderRepo(), nopCloser{}, nil

	case config.BackendFile:
		store, err := file.Open(cfg.StorageDir)
		if err != nil {
			return nil, nil, fmt.Errorf("file storage: %w", err)
		}
		log.Info("storage ready", map[string]any{
			"backend": cfg.StorageBackend,
			"path":    filepath.Join(store.Dir(), file.RemindersKey+".json"),
		})
		return file.NewReminderRepo(store), store, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite storage: %w", err)
		}
		log.Info("storage ready", map[string]any{"backend": cfg.StorageBackend, "path": cfg.SQLitePath})
		return sqlite.NewRemindersRepo(db), db, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres storage: %w", err)
		}
		log.Info("storage ready", map[string]any{"backend": cfg.StorageBackend})
		return postgres.NewRemindersRepo(db), db, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
