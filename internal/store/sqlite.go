package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/httpfs"
	_ "modernc.org/sqlite"

	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

//go:embed migrations
var migrations embed.FS

const memoryPath = ":memory:"

// SQLiteStore keeps one snapshot row per log path.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// its schema. An empty path opens an in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = memoryPath
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Join(err, ErrDBConnect)
	}
	if err := configureConnection(ctx, db, path == memoryPath); err != nil {
		db.Close()
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Join(err, ErrDBConnect)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func configureConnection(ctx context.Context, db *sql.DB, memory bool) error {
	conns := min(8, max(2, runtime.GOMAXPROCS(0)))
	if memory {
		// every connection to :memory: is a separate database
		conns = 1
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA main.synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Join(err, ErrDBConnect)
		}
	}
	return nil
}

func migrateUp(db *sql.DB) error {
	driver, err := msqlite.WithInstance(db, &msqlite.Config{})
	if err != nil {
		return errors.Join(err, ErrMigrate)
	}
	source, err := httpfs.New(http.FS(migrations), "migrations")
	if err != nil {
		return errors.Join(err, ErrMigrate)
	}
	migrator, err := migrate.NewWithInstance("httpfs", source, "sqlite", driver)
	if err != nil {
		return errors.Join(err, ErrMigrate)
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Join(err, ErrMigrate)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, logPath string) (*stats.Snapshot, error) {
	const query = `
		SELECT version, lines_processed, log_size, written_at, players, quotes, server
		FROM snapshots WHERE log_path = ?`

	var (
		snap                    stats.Snapshot
		writtenAt               int64
		players, quotes, server string
	)
	err := s.db.QueryRowContext(ctx, query, logPath).Scan(
		&snap.Version, &snap.LinesProcessed, &snap.LogSize, &writtenAt,
		&players, &quotes, &server)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	snap.WrittenAt = time.Unix(0, writtenAt).UTC()
	if err := errors.Join(
		json.Unmarshal([]byte(players), &snap.Players),
		json.Unmarshal([]byte(quotes), &snap.Quotes),
		json.Unmarshal([]byte(server), &snap.Server),
	); err != nil {
		return nil, errors.Join(err, ErrDecode)
	}
	return &snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, logPath string, snap *stats.Snapshot) error {
	const query = `
		INSERT INTO snapshots (log_path, version, lines_processed, log_size, written_at, players, quotes, server)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (log_path) DO UPDATE SET
			version = excluded.version,
			lines_processed = excluded.lines_processed,
			log_size = excluded.log_size,
			written_at = excluded.written_at,
			players = excluded.players,
			quotes = excluded.quotes,
			server = excluded.server`

	players, err := marshalList(snap.Players)
	if err != nil {
		return err
	}
	quotes, err := marshalList(snap.Quotes)
	if err != nil {
		return err
	}
	server, err := json.Marshal(snap.Server)
	if err != nil {
		return fmt.Errorf("encode server stats: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query,
		logPath, snap.Version, snap.LinesProcessed, snap.LogSize,
		snap.WrittenAt.UnixNano(), players, quotes, string(server)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// marshalList encodes a nil slice as [] so the column never holds null.
func marshalList[T any](list []T) (string, error) {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}

var _ SnapshotStore = (*SQLiteStore)(nil)
