package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore stores snapshots in a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates a SQLite database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS session_snapshots (
		namespace  TEXT PRIMARY KEY,
		snapshot   TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, namespace string) (*Record, error) {
	if err := checkNamespace("load", namespace); err != nil {
		return nil, err
	}

	var data string
	rec := Record{Namespace: namespace}
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot, updated_at FROM session_snapshots WHERE namespace = ?`, namespace,
	).Scan(&data, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &SnapshotError{Operation: "load", Namespace: namespace, Cause: err}
	}
	rec.Data = []byte(data)
	return &rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, namespace string, data []byte) error {
	if err := checkNamespace("save", namespace); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_snapshots (namespace, snapshot, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		namespace, string(data), s.now().UTC(),
	)
	if err != nil {
		return &SnapshotError{Operation: "save", Namespace: namespace, Cause: err}
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, namespace string) error {
	if err := checkNamespace("delete", namespace); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_snapshots WHERE namespace = ?`, namespace); err != nil {
		return &SnapshotError{Operation: "delete", Namespace: namespace, Cause: err}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
