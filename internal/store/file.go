package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/oastats/oastats-go/internal/safefile"
	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

// CacheSuffix is appended to the log path to name its snapshot file.
const CacheSuffix = "_cache.json"

// FileStore keeps each snapshot as a JSON file.
type FileStore struct {
	// Path overrides the snapshot file location. When empty the snapshot of
	// a log is stored next to it as <log>_cache.json.
	Path string
}

// NewFileStore returns a FileStore writing to path, or next to each log when
// path is empty.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// SnapshotPath returns the file holding the snapshot of logPath.
func (s *FileStore) SnapshotPath(logPath string) string {
	if s.Path != "" {
		return s.Path
	}
	return logPath + CacheSuffix
}

func (s *FileStore) Load(_ context.Context, logPath string) (*stats.Snapshot, error) {
	path := s.SnapshotPath(logPath)
	f, _, err := safefile.OpenRegular(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer f.Close()

	var snap stats.Snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, errors.Join(fmt.Errorf("decode snapshot %s: %w", path, err), ErrDecode)
	}
	return &snap, nil
}

func (s *FileStore) Save(_ context.Context, logPath string, snap *stats.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	path := s.SnapshotPath(logPath)
	if err := safefile.WriteAtomic(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

var _ SnapshotStore = (*FileStore)(nil)
