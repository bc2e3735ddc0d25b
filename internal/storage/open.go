package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/logger"
)

// Open connects the backend selected by db.Driver and ensures its schema.
func Open(ctx context.Context, db config.Database) (Storage, error) {
	switch db.Driver {
	case config.DriverMemory:
		logger.Warn(ctx, "using in-memory storage; tasks are lost on exit")
		return NewMemoryStorage(), nil

	case config.DriverSQLite:
		if db.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(db.Path), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		s, err := NewSQLiteStorage(ctx, db.Path)
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "sqlite storage ready", "path", db.Path)
		return s, nil

	case config.DriverPostgres:
		s, err := NewPostgresStorage(ctx, PostgresOptions{
			DatabaseURL: db.PostgresURL(),
			MaxConns:    db.MaxConns,
			MaxLifetime: time.Hour,
			MaxIdleTime: 10 * time.Minute,
		})
		if err != nil {
			return nil, err
		}
		logger.Info(ctx, "postgres storage ready", "host", db.Host, "database", db.Database)
		return s, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", db.Driver)
}
