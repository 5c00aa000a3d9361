// Package postgres persists parsed records to PostGIS through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq" // registers the "postgres" driver

	"github.com/couchcryptid/nws-text-ingest/internal/config"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
)

// Store writes records in one transaction per product.
// It implements pipeline.RecordStore.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu       sync.Mutex
	migrated map[int]bool
}

// Open connects with the configured driver and verifies the connection.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	db, err := openDB(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("postgres connected", "driver", cfg.DatabaseDriver)
	return NewStore(db, logger), nil
}

func openDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case config.DriverPGX:
		connCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres config: %w", err)
		}
		return stdlib.OpenDB(*connCfg), nil
	case config.DriverPQ:
		db, err := sql.Open(config.DriverPQ, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger, migrated: make(map[int]bool)}
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx nws.DBTX) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// StoreRecords persists records in order within one transaction.
func (s *Store) StoreRecords(ctx context.Context, records []nws.Record) error {
	return s.WithTx(ctx, func(tx nws.DBTX) error {
		for _, r := range records {
			if err := r.SQL(ctx, tx); err != nil {
				return fmt.Errorf("%s record: %w", r.Kind(), err)
			}
		}
		return nil
	})
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
