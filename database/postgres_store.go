package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresStore keeps cache entries in the kv_cache table
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresStore wraps an open database. Every operation is bounded by timeout.
func NewPostgresStore(db *sql.DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Get returns the value stored under key
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT cache_value FROM kv_cache WHERE cache_key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set inserts or replaces the value stored under key
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO kv_cache (cache_key, cache_value)
		VALUES ($1, $2)
		ON CONFLICT (cache_key) DO UPDATE SET
			cache_value = EXCLUDED.cache_value,
			updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query, key, value)
	return err
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return HealthCheck(ctx, s.db)
}

// Close closes the underlying database
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
