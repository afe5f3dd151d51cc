package game

import (
	"context"
	"io"
	"log/slog"

	"github.com/oastats/oastats-go/pkg/oastats/event"
)

// ClassifyFunc turns a log line into an event. It follows the classifier
// contract: (nil, nil) for lines that are not events, a non-nil error for
// event lines whose fields could not be read.
type ClassifyFunc func(ctx context.Context, line string) (*event.Event, error)

// Config configures Segment.
type Config struct {
	// MinPlay is the playtime fraction of the playtime rule, in [0,1].
	MinPlay  float64
	Classify ClassifyFunc
	Logger   *slog.Logger
}

// Segment is the outcome of segmenting one run's lines.
type Segment struct {
	// Games holds the finalized games that registered at least one player.
	Games []*Record

	// Committed is the number of the last line whose effect is settled.
	// Lines after it belong to a game that was still open at end of input.
	Committed int

	// Dropped counts malformed or unresolvable event lines.
	Dropped int

	// Discarded counts games ended by a shutdown without a match-end line,
	// or finalized without any registered player.
	Discarded int
}

type state int

const (
	stateIdle state = iota
	statePlaying
	stateEnded
)

type segmenter struct {
	cfg    Config
	log    *slog.Logger
	cursor *Cursor

	state state
	cur   *Record
	seg   Segment
}

// Run reads every line of c and splits it into games.
//
// A game opens on an InitGame line that is not followed by a Warmup line and
// is finalized on the first ShutdownGame (or InitGame) after a match-end
// line. A game that shuts down before its match-end line is discarded.
// Only a read error or ctx cancellation makes Run fail.
func Run(ctx context.Context, c *Cursor, cfg Config) (Segment, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &segmenter{cfg: cfg, log: log, cursor: c}
	s.seg.Committed = c.start - 1

	for {
		if err := ctx.Err(); err != nil {
			return Segment{}, err
		}
		line, ok := c.Next()
		if !ok {
			break
		}
		if s.step(ctx, line) {
			break
		}
	}
	if err := c.Err(); err != nil {
		return Segment{}, err
	}
	if s.cur != nil {
		log.Debug("game still open at end of input",
			"game", s.cur.Number, "start_line", s.cur.StartLine)
	}
	return s.seg, nil
}

// step handles one line and reports whether segmentation must stop.
func (s *segmenter) step(ctx context.Context, line Line) bool {
	ev, err := s.cfg.Classify(ctx, line.Text)
	if err != nil {
		s.drop(line, err)
		if s.state == stateIdle {
			s.seg.Committed = line.No
		}
		return false
	}

	if s.state != stateIdle && ev != nil {
		switch ev.Type {
		case event.Shutdown:
			s.close(line.No)
			s.seg.Committed = line.No
			return false
		case event.Init:
			s.close(line.No - 1)
			s.seg.Committed = line.No - 1
			// re-examined below as a possible game start
		default:
			if err := s.cur.apply(ev); err != nil {
				s.drop(line, err)
			}
			if ev.Type == event.Exit {
				s.state = stateEnded
			}
			return false
		}
	}

	if s.state != stateIdle {
		return false
	}

	if ev == nil || ev.Type != event.Init {
		s.seg.Committed = line.No
		return false
	}

	next, ok := s.cursor.Peek()
	if !ok {
		// InitGame as the last line: nothing to open yet.
		return true
	}
	if s.isWarmup(ctx, next) {
		s.seg.Committed = line.No
		return false
	}

	data, _ := ev.Data.(*event.InitData)
	s.cur = newRecord(len(s.seg.Games)+s.seg.Discarded+1, line.No, data)
	s.state = statePlaying
	s.log.Debug("game started", "game", s.cur.Number, "line", line.No,
		"map", s.cur.MapName, "game_type", s.cur.GameType.String())
	return false
}

func (s *segmenter) isWarmup(ctx context.Context, line Line) bool {
	ev, err := s.cfg.Classify(ctx, line.Text)
	return err == nil && ev != nil && ev.Type == event.Warmup
}

// close ends the current game as a shutdown on line end would.
func (s *segmenter) close(end int) {
	rec := s.cur
	rec.EndLine = end
	ended := s.state == stateEnded
	s.cur = nil
	s.state = stateIdle

	if !ended {
		s.seg.Discarded++
		s.log.Debug("game discarded without match end", "game", rec.Number, "start_line", rec.StartLine)
		return
	}
	if !rec.finalize(s.cfg.MinPlay) {
		s.seg.Discarded++
		s.log.Debug("game has no registered players", "game", rec.Number, "start_line", rec.StartLine)
		return
	}
	if len(rec.Valid()) == 0 {
		s.log.Debug("game has no valid players", "game", rec.Number,
			"registered", rec.Players(), "start_line", rec.StartLine)
	}
	if rec.Unslotted > 0 {
		s.log.Debug("kills without weapon slot", "game", rec.Number, "count", rec.Unslotted)
	}
	s.seg.Games = append(s.seg.Games, rec)
}

func (s *segmenter) drop(line Line, err error) {
	s.seg.Dropped++
	s.log.Debug("dropped event line", "line", line.No, "error", err)
}
