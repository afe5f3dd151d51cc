package oastats

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/oastats/oastats-go/pkg/oastats/event"
)

// DefaultMinPlay is the playtime fraction used when WithMinPlay is not given.
const DefaultMinPlay = 0.5

// Option configures ProcessLog, Run and NewWatcher using the functional
// options pattern.
type Option func(*config)

// config holds the resolved options. It is not modified after construction.
type config struct {
	minPlay float64
	logger  *slog.Logger
	parser  Parser
	now     func() time.Time
	poll    bool
}

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func defaultConfig() *config {
	return &config{
		minPlay: DefaultMinPlay,
		logger:  discardLogger,
		parser:  DefaultParser{},
		now:     time.Now,
	}
}

// applyOptions applies opts over the defaults and validates the result.
func applyOptions(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func (c *config) validate() error {
	if math.IsNaN(c.minPlay) || c.minPlay < 0 || c.minPlay > 1 {
		return fmt.Errorf("min play must be within [0, 1], got %v", c.minPlay)
	}
	return nil
}

// classify adapts the configured Parser to the segmenter, which consumes one
// event per line.
func (c *config) classify(ctx context.Context, line string) (*event.Event, error) {
	result, err := c.parser.ParseLine(ctx, line)
	if len(result.Events) == 0 {
		return nil, err
	}
	ev := result.Events[0]
	return &ev, nil
}

// WithMinPlay sets the fraction of a game a player must have been present
// for to count in it. A player who joined at t counts when
// final time - t > final time × frac - earliest join.
// Default: 0.5.
func WithMinPlay(frac float64) Option {
	return func(c *config) {
		c.minPlay = frac
	}
}

// WithLogger sets a logger for debug output. Dropped lines are logged at
// Debug, discarded snapshots at Warn.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithParser sets a custom line classifier.
// If p is nil, this option has no effect.
func WithParser(p Parser) Option {
	return func(c *config) {
		if p != nil {
			c.parser = p
		}
	}
}

// WithClock sets the function used to stamp snapshots. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPolling makes the Watcher poll the log with stat instead of relying
// on filesystem notifications, for network mounts and containers.
func WithPolling(poll bool) Option {
	return func(c *config) {
		c.poll = poll
	}
}
