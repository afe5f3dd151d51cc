package oastats

import (
	"errors"
	"fmt"

	"github.com/oastats/oastats-go/internal/game"
	"github.com/oastats/oastats-go/internal/logfinder"
	"github.com/oastats/oastats-go/internal/parser"
	"github.com/oastats/oastats-go/internal/safefile"
	"github.com/oastats/oastats-go/internal/store"
	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

// Sentinel errors.
var (
	// ErrWatcherClosed is returned by Watch after Close.
	ErrWatcherClosed = errors.New("watcher closed")

	// ErrAlreadyWatching is returned when Watch is called twice.
	ErrAlreadyWatching = errors.New("already watching")

	// ErrNotRegularFile is returned when the log path is a directory, FIFO
	// or device.
	ErrNotRegularFile = safefile.ErrNotRegularFile

	// ErrMalformedLine is wrapped by ParseError for event lines whose fields
	// could not be read.
	ErrMalformedLine = parser.ErrMalformed

	// ErrUnknownWeapon is returned for a means of death without a weapon
	// slot. Such kills still count as deaths and server frags.
	ErrUnknownWeapon = stats.ErrUnknownWeapon
	// ErrUnknownPlayer describes event lines dropped from a game because a
	// client could not be resolved.
	ErrUnknownPlayer = game.ErrUnknownPlayer

	// ErrSnapshotNotFound is returned by a SnapshotStore with nothing saved
	// for the log.
	ErrSnapshotNotFound = store.ErrSnapshotNotFound

	// ErrInvalidSnapshot is wrapped by Snapshot.Validate errors.
	ErrInvalidSnapshot = stats.ErrInvalidSnapshot

	// ErrLogNotFound is returned by FindLogFile.
	ErrLogNotFound = logfinder.ErrLogNotFound
)

// ParseError describes an event line that could not be classified.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v (line: %q)", e.Err, e.Line)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ProcessOp identifies the step of ProcessLog or Run that failed.
type ProcessOp string

const (
	ProcessOpOpen    ProcessOp = "open"
	ProcessOpRead    ProcessOp = "read"
	ProcessOpOptions ProcessOp = "options"
	ProcessOpSave    ProcessOp = "save"
)

// ProcessError is returned when a run cannot complete. No snapshot is
// produced or saved when it occurs.
type ProcessError struct {
	Op   ProcessOp
	Path string
	Err  error
}

func (e *ProcessError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("process %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("process %s: %v", e.Op, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// WatchOp identifies the watcher step that failed.
type WatchOp string

const (
	WatchOpTail WatchOp = "tail"
	WatchOpRun  WatchOp = "run"
)

// WatchError is sent on the watcher's error channel.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}
