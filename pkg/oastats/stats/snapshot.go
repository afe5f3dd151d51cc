package stats

import (
	"errors"
	"fmt"
	"time"
)

// SnapshotVersion is the layout version written into new snapshots.
const SnapshotVersion = 1

// ErrInvalidSnapshot is wrapped by Snapshot.Validate.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Snapshot is the persisted cumulative state of one log.
type Snapshot struct {
	Version        int           `json:"version" yaml:"version"`
	Players        []PlayerStats `json:"players" yaml:"players"`
	Quotes         []Quote       `json:"quotes" yaml:"quotes"`
	Server         ServerStats   `json:"server" yaml:"server"`
	LinesProcessed int           `json:"lines_processed" yaml:"lines_processed"`
	LogSize        int64         `json:"log_size" yaml:"log_size"`
	WrittenAt      time.Time     `json:"written_at" yaml:"written_at"`
}

// Validate reports whether the snapshot is internally consistent.
func (s *Snapshot) Validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, s.Version)
	}
	if s.LinesProcessed < 0 || s.LogSize < 0 {
		return fmt.Errorf("%w: negative counters", ErrInvalidSnapshot)
	}
	if s.Server.Time < 0 || s.Server.Frags < 0 {
		return fmt.Errorf("%w: negative server totals", ErrInvalidSnapshot)
	}
	seen := make(map[string]struct{}, len(s.Players))
	for _, p := range s.Players {
		if _, dup := seen[p.Nick]; dup {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidSnapshot, p.Nick)
		}
		seen[p.Nick] = struct{}{}
		if p.Games <= 0 || p.Wins > p.Games {
			return fmt.Errorf("%w: player %q has inconsistent game counts", ErrInvalidSnapshot, p.Nick)
		}
	}
	return nil
}

// QuoteSet returns the snapshot's quotes as a set.
func (s *Snapshot) QuoteSet() QuoteSet {
	return NewQuoteSet(s.Quotes...)
}

// Player returns the record for nick, if present.
func (s *Snapshot) Player(nick string) (PlayerStats, bool) {
	for _, p := range s.Players {
		if p.Nick == nick {
			return p, true
		}
	}
	return PlayerStats{}, false
}
