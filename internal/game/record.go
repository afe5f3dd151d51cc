package game

import (
	"errors"
	"fmt"

	"github.com/oastats/oastats-go/pkg/oastats/event"
	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

// ErrUnknownPlayer is returned when an event names a client that has no
// binding in the current game.
var ErrUnknownPlayer = errors.New("unknown player")

// tally holds one nickname's raw counters for one game.
type tally struct {
	join     int
	team     int
	handicap int

	weapons    stats.Weapons
	deaths     int
	suicides   int
	worldFrags int
	awards     stats.Awards
	flags      [4]int // indexed by event.CTFAction
}

// scoreEntry is one scoreboard line. Position is 1 for the first line.
type scoreEntry struct {
	nick     string
	score    int
	ping     int
	position int
}

// Record is the data of one match.
type Record struct {
	// Number is the 1-based index of the game within its run.
	Number    int
	StartLine int
	EndLine   int

	MapName  string
	Hostname string
	GameType event.GameType

	// Time is the elapsed game time recorded by the match-end line.
	Time int

	// Frags counts kills between two named players.
	Frags int
	// Unslotted counts the kills in Frags whose means of death has no
	// weapon slot.
	Unslotted int
	Quotes    stats.QuoteSet

	ended      bool
	ids        map[int]string
	players    map[string]*tally
	scoreboard []scoreEntry
	onBoard    map[string]int // nick -> index into scoreboard
	teamScores *event.TeamScoreData

	valid        []string
	earliestJoin int
}

func newRecord(number, line int, init *event.InitData) *Record {
	r := &Record{
		Number:    number,
		StartLine: line,
		GameType:  event.DefaultGameType,
		Quotes:    make(stats.QuoteSet),
		ids:       make(map[int]string),
		players:   make(map[string]*tally),
		onBoard:   make(map[string]int),
	}
	if init != nil {
		r.MapName = init.MapName
		r.Hostname = init.Hostname
		r.GameType = init.GameType
	}
	return r
}

// Players returns the number of nicknames registered during the game.
func (r *Record) Players() int {
	return len(r.players)
}

// Valid returns the nicknames that passed the playtime rule, in scoreboard
// order. It is empty until the game is finalized.
func (r *Record) Valid() []string {
	return r.valid
}

// ServerTime is the elapsed time from the earliest join of any registered
// player to the end of the match.
func (r *Record) ServerTime() int {
	first, ok := r.firstJoin()
	if !ok {
		return 0
	}
	return r.Time - first
}

func (r *Record) firstJoin() (int, bool) {
	first, ok := 0, false
	for _, t := range r.players {
		if !ok || t.join < first {
			first, ok = t.join, true
		}
	}
	return first, ok
}

// acceptsAfterExit reports whether an event still applies once the
// match-end line has been seen.
func acceptsAfterExit(t event.Type) bool {
	switch t {
	case event.Score, event.TeamScore, event.Say, event.UserInfo:
		return true
	}
	return false
}

// apply folds one event into the record. A non-nil error means the event
// was dropped.
func (r *Record) apply(ev *event.Event) error {
	if r.ended && !acceptsAfterExit(ev.Type) {
		return nil
	}

	switch d := ev.Data.(type) {
	case *event.KillData:
		return r.applyKill(d)
	case *event.CTFData:
		t, ok := r.byID(d.ClientID)
		if !ok {
			return fmt.Errorf("%w: client %d", ErrUnknownPlayer, d.ClientID)
		}
		if d.Action >= event.FlagTaken && d.Action <= event.CarrierFragged {
			t.flags[d.Action]++
		}
	case *event.AwardData:
		award, counted := stats.ParseAward(d.Award)
		if !counted {
			return nil
		}
		_, t, ok := r.resolve(d.ClientID, d.Name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPlayer, d.Name)
		}
		t.awards[award]++
	case *event.UserInfoData:
		r.ids[d.ClientID] = d.Name
		if _, seen := r.players[d.Name]; !seen {
			r.players[d.Name] = &tally{
				join:     ev.Time,
				team:     d.Team,
				handicap: d.Handicap,
			}
		}
	case *event.SayData:
		r.Quotes.Add(stats.Quote{Speaker: d.Speaker, Text: d.Message})
	case *event.ScoreData:
		nick := d.Name
		if _, ok := r.players[nick]; !ok {
			if bound, ok := r.ids[d.ClientID]; ok {
				nick = bound
			}
		}
		if _, listed := r.onBoard[nick]; listed {
			return nil
		}
		r.onBoard[nick] = len(r.scoreboard)
		r.scoreboard = append(r.scoreboard, scoreEntry{
			nick:     nick,
			score:    d.Score,
			ping:     d.Ping,
			position: len(r.scoreboard) + 1,
		})
	case *event.TeamScoreData:
		scores := *d
		r.teamScores = &scores
	case *event.ExitData:
		r.Time = ev.Time
		r.ended = true
	}
	return nil
}

func (r *Record) applyKill(k *event.KillData) error {
	victim, vt, ok := r.resolve(k.VictimID, k.Victim)
	if !ok {
		return fmt.Errorf("%w: victim %q", ErrUnknownPlayer, k.Victim)
	}

	if k.ByWorld() {
		vt.deaths++
		vt.worldFrags++
		return nil
	}

	killer, kt, ok := r.resolve(k.KillerID, k.Killer)
	if !ok {
		return fmt.Errorf("%w: killer %q", ErrUnknownPlayer, k.Killer)
	}
	if killer == victim {
		kt.suicides++
		kt.deaths++
		return nil
	}

	vt.deaths++
	r.Frags++
	// A means of death without a slot still counts as a death and a server
	// frag; only the killer's weapon vector misses it.
	if slot, err := stats.WeaponSlot(k.Weapon); err == nil {
		kt.weapons[slot]++
	} else {
		r.Unslotted++
	}
	return nil
}

// resolve maps a client id to its bound nickname, falling back to the
// printed name when the id has no binding.
func (r *Record) resolve(id int, printed string) (string, *tally, bool) {
	if nick, ok := r.ids[id]; ok {
		if t, ok := r.players[nick]; ok {
			return nick, t, true
		}
	}
	if t, ok := r.players[printed]; ok {
		return printed, t, true
	}
	return "", nil, false
}

func (r *Record) byID(id int) (*tally, bool) {
	nick, ok := r.ids[id]
	if !ok {
		return nil, false
	}
	t, ok := r.players[nick]
	return t, ok
}

// finalize applies the playtime rule to every scoreboard nickname and
// reports whether the game belongs in the batch, which is whenever any
// player registered. A game without valid players still contributes its
// server totals and quotes.
//
// A player counts when
//
//	(Time - join) > minPlay * (Time - earliest join among scoreboard players)
func (r *Record) finalize(minPlay float64) bool {
	if len(r.players) == 0 {
		return false
	}
	r.valid = r.valid[:0]

	first := true
	for _, e := range r.scoreboard {
		t, ok := r.players[e.nick]
		if !ok {
			continue
		}
		if first || t.join < r.earliestJoin {
			r.earliestJoin = t.join
			first = false
		}
	}
	if first {
		return true
	}

	span := float64(r.Time - r.earliestJoin)
	for _, e := range r.scoreboard {
		t, ok := r.players[e.nick]
		if !ok {
			continue
		}
		if float64(r.Time-t.join) > minPlay*span {
			r.valid = append(r.valid, e.nick)
		}
	}
	return true
}
