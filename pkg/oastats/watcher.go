package oastats

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/oastats/oastats-go/internal/tailer"
	"github.com/oastats/oastats-go/pkg/oastats/event"
)

// watcherErrBuffer is the buffer size for the error channel.
const watcherErrBuffer = 16

// Watcher keeps the snapshot of a live log up to date. It runs once when
// Watch is called and again each time a game shuts down.
//
// Runs are sequential; a Watcher must be the only writer of its store's
// record for the log.
type Watcher struct {
	cfg   config // immutable after creation
	path  string
	store SnapshotStore
	log   *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

// NewWatcher returns a watcher for the log at path that keeps its snapshot
// in st.
func NewWatcher(path string, st SnapshotStore, opts ...Option) (*Watcher, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New("log path is required")
	}
	if st == nil {
		return nil, errors.New("snapshot store is required")
	}
	return &Watcher{
		cfg:   *cfg,
		path:  path,
		store: st,
		log:   cfg.logger.With("path", path),
	}, nil
}

// Watch starts following the log and returns the result and error
// channels. Both are closed when ctx is done or Close is called.
// Watch can only be called once per Watcher.
//
// Returns ErrWatcherClosed if the watcher has been closed.
// Returns ErrAlreadyWatching if Watch has already been called.
func (w *Watcher) Watch(ctx context.Context) (<-chan *BatchResult, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	resultCh := make(chan *BatchResult)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, resultCh, errCh)

	return resultCh, errCh, nil
}

// Close stops the watcher and waits for it to exit.
// Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, resultCh chan<- *BatchResult, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(resultCh)
	defer close(errCh)

	// The tail starts at the current end before the first run, so a shutdown
	// written while that run is reading is still seen and triggers another.
	cfg := tailer.DefaultConfig()
	cfg.Poll = w.cfg.poll
	t, err := tailer.New(ctx, w.path, cfg)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: w.path, Err: err})
		return
	}
	defer func() { _ = t.Stop() }()
	w.log.Debug("started tailing", "poll", cfg.Poll)

	if !w.runOnce(ctx, resultCh, errCh) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			if !w.isShutdown(ctx, line) {
				continue
			}
			w.log.Debug("game shut down, updating snapshot")
			if !w.runOnce(ctx, resultCh, errCh) {
				return
			}
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: w.path, Err: err})
		}
	}
}

func (w *Watcher) isShutdown(ctx context.Context, line string) bool {
	ev, err := w.cfg.classify(ctx, line)
	return err == nil && ev != nil && ev.Type == event.Shutdown
}

// runOnce performs one incremental run and reports whether watching should
// continue.
func (w *Watcher) runOnce(ctx context.Context, resultCh chan<- *BatchResult, errCh chan<- error) bool {
	res, err := run(ctx, w.path, w.store, &w.cfg)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		sendError(ctx, errCh, &WatchError{Op: WatchOpRun, Path: w.path, Err: err})
		return true
	}
	select {
	case resultCh <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

// sendError sends err without blocking once ctx is done or the buffer is
// full.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
