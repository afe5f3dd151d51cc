// Package store persists snapshots between runs.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

var (
	// ErrSnapshotNotFound is returned by Load when no snapshot was saved for
	// the log.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrDBConnect        = errors.New("db connect error")
	ErrMigrate          = errors.New("failed to migrate db schema")
	ErrDecode           = errors.New("failed to decode snapshot")
)

// SnapshotStore loads and saves the snapshot of a log, keyed by log path.
// Implementations assume a single writer per log.
type SnapshotStore interface {
	Load(ctx context.Context, logPath string) (*stats.Snapshot, error)
	Save(ctx context.Context, logPath string, snap *stats.Snapshot) error
	Close() error
}

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend. For the file backend path is the
// snapshot file (empty: next to each log); for sqlite it is the database.
func Open(ctx context.Context, backend, path string) (SnapshotStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path), nil
	case BackendSQLite:
		return OpenSQLite(ctx, path)
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}
