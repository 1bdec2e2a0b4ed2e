package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperjump/ryori/internal/config"
)

// Open returns the snapshot source selected by cfg.Source.
func Open(ctx context.Context, cfg config.StorageConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceSQLite, "":
		return NewSQLiteStore(cfg.DatabasePath)
	case config.SourcePostgres:
		dsn := os.Getenv(cfg.PostgresDSNEnv)
		if dsn == "" {
			return nil, fmt.Errorf("environment variable %s is not set", cfg.PostgresDSNEnv)
		}
		return NewPostgresSource(ctx, dsn)
	case config.SourceFile:
		db, err := NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return NewFileSource(cfg.SnapshotPath, db, db.Close), nil
	default:
		return nil, fmt.Errorf("unknown storage source: %s", cfg.Source)
	}
}
