// Package tailer follows a growing log file.
package tailer

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/nxadm/tail"
)

// ErrOpen is joined with the underlying error when the file cannot be tailed.
var ErrOpen = errors.New("failed to open log for tailing")

// Config configures a Tailer.
type Config struct {
	// FromStart reads the file from its first byte instead of its end.
	FromStart bool
	// Poll uses stat polling instead of inotify.
	Poll bool
	// ReOpen follows the path across truncation and rotation.
	ReOpen bool
}

// DefaultConfig tails from the end of the file and reopens on rotation.
func DefaultConfig() Config {
	return Config{ReOpen: true}
}

// Tailer emits complete lines appended to a file.
type Tailer struct {
	t      *tail.Tail
	lines  chan string
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New starts tailing path. Lines and Errors are closed when ctx is done or
// Stop is called.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	whence := io.SeekEnd
	if cfg.FromStart {
		whence = io.SeekStart
	}
	t, err := tail.TailFile(path, tail.Config{
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    tail.DiscardingLogger,
		Follow:    true,
		ReOpen:    cfg.ReOpen,
		MustExist: true,
		Poll:      cfg.Poll,
	})
	if err != nil {
		return nil, errors.Join(err, ErrOpen)
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		t:      t,
		lines:  make(chan string),
		errs:   make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

// Lines returns the channel of lines, without line terminators.
func (tl *Tailer) Lines() <-chan string {
	return tl.lines
}

// Errors returns the channel of read errors.
func (tl *Tailer) Errors() <-chan error {
	return tl.errs
}

// Stop stops tailing and waits for the reader goroutine to exit.
func (tl *Tailer) Stop() error {
	var err error
	tl.once.Do(func() {
		tl.cancel()
		<-tl.done
		err = tl.t.Stop()
		tl.t.Cleanup()
	})
	return err
}

func (tl *Tailer) run(ctx context.Context) {
	defer close(tl.done)
	defer close(tl.lines)
	defer close(tl.errs)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-tl.t.Lines:
			if !ok {
				if err := tl.t.Err(); err != nil {
					select {
					case tl.errs <- err:
					default:
					}
				}
				return
			}
			if msg == nil {
				continue
			}
			if msg.Err != nil {
				select {
				case tl.errs <- msg.Err:
				default:
				}
				continue
			}
			select {
			case tl.lines <- strings.TrimRight(msg.Text, "\r"):
			case <-ctx.Done():
				return
			}
		}
	}
}
