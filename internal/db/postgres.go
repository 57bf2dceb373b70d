package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS session_snapshots (
	namespace  TEXT PRIMARY KEY,
	snapshot   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore stores snapshots as JSONB rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and creates the snapshot table
// if it does not exist.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, namespace string) (*Record, error) {
	if err := checkNamespace("load", namespace); err != nil {
		return nil, err
	}

	rec := Record{Namespace: namespace}
	err := s.pool.QueryRow(ctx,
		`SELECT snapshot, updated_at FROM session_snapshots WHERE namespace = $1`,
		namespace,
	).Scan(&rec.Data, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &SnapshotError{Operation: "load", Namespace: namespace, Cause: err}
	}
	return &rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, namespace string, data []byte) error {
	if err := checkNamespace("save", namespace); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_snapshots (namespace, snapshot, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (namespace) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = NOW()`,
		namespace, data,
	)
	if err != nil {
		return &SnapshotError{Operation: "save", Namespace: namespace, Cause: err}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, namespace string) error {
	if err := checkNamespace("delete", namespace); err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM session_snapshots WHERE namespace = $1`, namespace); err != nil {
		return &SnapshotError{Operation: "delete", Namespace: namespace, Cause: err}
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
