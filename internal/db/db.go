// Package db persists session snapshots. A snapshot is an opaque JSON document
// stored under a namespace key; callers validate its shape.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultNamespace is the key used when a caller has no per-user namespace.
const DefaultNamespace = "ats-optimizer/session"

// ErrEmptyNamespace is returned for operations without a namespace.
var ErrEmptyNamespace = errors.New("snapshot namespace is empty")

// Record is a stored snapshot.
type Record struct {
	Namespace string
	Data      []byte
	UpdatedAt time.Time
}

// SnapshotStore loads and saves snapshots keyed by namespace. Load returns
// (nil, nil) when nothing is stored under the namespace.
type SnapshotStore interface {
	Load(ctx context.Context, namespace string) (*Record, error)
	Save(ctx context.Context, namespace string, data []byte) error
	Delete(ctx context.Context, namespace string) error
	Close() error
}

// SnapshotError represents a failed snapshot operation.
type SnapshotError struct {
	Operation string
	Namespace string
	Cause     error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s failed for %q: %v", e.Operation, e.Namespace, e.Cause)
}

func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// Open returns a store for dsn: postgres:// and postgresql:// URLs select
// Postgres, sqlite:// URLs or plain file paths select SQLite, and "" or
// "memory" keeps snapshots in process memory.
func Open(ctx context.Context, dsn string) (SnapshotStore, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return ConnectPostgres(ctx, dsn)
	default:
		return OpenSQLite(strings.TrimPrefix(dsn, "sqlite://"))
	}
}

func checkNamespace(op, namespace string) error {
	if strings.TrimSpace(namespace) == "" {
		return &SnapshotError{Operation: op, Namespace: namespace, Cause: ErrEmptyNamespace}
	}
	return nil
}
