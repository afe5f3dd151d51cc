package oastats

import (
	"context"
	"errors"

	"github.com/oastats/oastats-go/internal/game"
	"github.com/oastats/oastats-go/internal/logfinder"
	"github.com/oastats/oastats-go/internal/resume"
	"github.com/oastats/oastats-go/internal/safefile"
	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

// SnapshotStore persists snapshots between runs, keyed by log path.
// Load returns an error wrapping ErrSnapshotNotFound when nothing was saved.
type SnapshotStore interface {
	Load(ctx context.Context, logPath string) (*stats.Snapshot, error)
	Save(ctx context.Context, logPath string, snap *stats.Snapshot) error
}

// BatchResult describes one run. Players, Server and Quotes are the
// cumulative totals after the run, the other fields cover the run itself.
type BatchResult struct {
	Players []stats.PlayerStats `json:"players"`
	Server  stats.ServerStats   `json:"server"`
	Quotes  []stats.Quote       `json:"quotes"`

	// NewGames is the number of games merged by this run.
	NewGames int `json:"new_games"`
	// Discarded counts games that shut down early or had no registered player.
	Discarded int `json:"discarded"`
	// Dropped counts malformed or unresolvable event lines.
	Dropped int `json:"dropped"`

	// FromLine is the first line read, LinesProcessed the last settled one.
	FromLine       int `json:"from_line"`
	LinesProcessed int `json:"lines_processed"`

	// Resumed reports whether the prior snapshot was merged into. When it is
	// false, Reason says why it was not: "none", "invalid" or "rotated".
	Resumed bool   `json:"resumed"`
	Reason  string `json:"reason"`
}

// ProcessLog reads the lines of path that prior has not covered, merges the
// games found there into prior and returns the result with the new snapshot.
//
// prior may be nil. It is discarded when it is inconsistent or when the log
// is smaller than it was when prior was written, and the whole log is read
// instead. On error no snapshot is returned; prior is still valid.
func ProcessLog(ctx context.Context, path string, prior *stats.Snapshot, opts ...Option) (*BatchResult, *stats.Snapshot, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, nil, &ProcessError{Op: ProcessOpOptions, Err: err}
	}
	return processLog(ctx, path, prior, cfg)
}

func processLog(ctx context.Context, path string, prior *stats.Snapshot, cfg *config) (*BatchResult, *stats.Snapshot, error) {
	log := cfg.logger.With("path", path)

	f, info, err := safefile.OpenRegular(path)
	if err != nil {
		return nil, nil, &ProcessError{Op: ProcessOpOpen, Path: path, Err: err}
	}
	defer f.Close()

	dec := resume.Decide(info.Size(), prior)
	switch dec.Reason {
	case resume.ReasonInvalid:
		log.Warn("ignoring invalid snapshot, reprocessing whole log", "error", dec.Err)
	case resume.ReasonRotated:
		log.Warn("log is smaller than at the last run, reprocessing whole log",
			"size", info.Size(), "snapshot_size", prior.LogSize)
	}
	base := prior
	if !dec.Usable {
		base = nil
	}

	cursor := game.NewCursor(f, dec.StartLine)
	seg, err := game.Run(ctx, cursor, game.Config{
		MinPlay:  cfg.minPlay,
		Classify: cfg.classify,
		Logger:   log,
	})
	if err != nil {
		return nil, nil, &ProcessError{Op: ProcessOpRead, Path: path, Err: err}
	}

	batch := collect(seg.Games)
	snap := stats.Merge(base, batch)
	snap.LinesProcessed = seg.Committed
	snap.LogSize = cursor.BytesRead()
	snap.WrittenAt = cfg.now().UTC()

	log.Debug("processed log",
		"from_line", dec.StartLine, "lines_read", cursor.LinesRead(),
		"games", batch.Games, "discarded", seg.Discarded, "dropped", seg.Dropped)

	return &BatchResult{
		Players:        snap.Players,
		Server:         snap.Server,
		Quotes:         snap.Quotes,
		NewGames:       batch.Games,
		Discarded:      seg.Discarded,
		Dropped:        seg.Dropped,
		FromLine:       dec.StartLine,
		LinesProcessed: snap.LinesProcessed,
		Resumed:        dec.Usable,
		Reason:         string(dec.Reason),
	}, &snap, nil
}

// collect turns the finalized games of a run into a batch.
func collect(games []*game.Record) stats.Batch {
	batch := stats.Batch{Games: len(games), Quotes: stats.NewQuoteSet()}
	results := make([][]stats.PlayerGame, 0, len(games))
	for _, rec := range games {
		results = append(results, game.Extract(rec))
		batch.Server.Time += rec.ServerTime()
		batch.Server.Frags += rec.Frags
		batch.Server.GameType = rec.GameType
		batch.Server.Hostname = rec.Hostname
		batch.Quotes.Union(rec.Quotes)
	}
	batch.Players = stats.Aggregate(results)
	return batch
}

// Run processes path incrementally against the snapshot kept in st and
// saves the new snapshot. A snapshot that cannot be loaded is logged and
// the whole log is reprocessed. A nil st processes the whole log without
// persisting anything.
func Run(ctx context.Context, path string, st SnapshotStore, opts ...Option) (*BatchResult, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, &ProcessError{Op: ProcessOpOptions, Err: err}
	}
	return run(ctx, path, st, cfg)
}

func run(ctx context.Context, path string, st SnapshotStore, cfg *config) (*BatchResult, error) {
	if st == nil {
		res, _, err := processLog(ctx, path, nil, cfg)
		return res, err
	}

	prior, err := st.Load(ctx, path)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			cfg.logger.Warn("cannot load snapshot, reprocessing whole log",
				"path", path, "error", err)
		}
		prior = nil
	}

	res, snap, err := processLog(ctx, path, prior, cfg)
	if err != nil {
		return nil, err
	}
	if err := st.Save(ctx, path, snap); err != nil {
		return nil, &ProcessError{Op: ProcessOpSave, Path: path, Err: err}
	}
	return res, nil
}

// FindLogFile resolves the games.log to read: explicit if non-empty, then
// the OASTATS_LOG environment variable, then the most recently written log
// in the default install directories.
func FindLogFile(explicit string) (string, error) {
	return logfinder.FindLogFile(explicit)
}
