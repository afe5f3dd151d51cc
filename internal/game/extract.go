package game

import (
	"github.com/oastats/oastats-go/pkg/oastats/event"
	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

// Extract returns one result per valid player of a finalized game, in
// scoreboard order.
func Extract(rec *Record) []stats.PlayerGame {
	out := make([]stats.PlayerGame, 0, len(rec.valid))
	for _, nick := range rec.valid {
		t := rec.players[nick]
		entry := rec.scoreboard[rec.onBoard[nick]]

		g := stats.PlayerGame{
			Nick:       nick,
			Win:        rec.won(t, entry),
			Time:       rec.Time - t.join,
			Handicap:   t.handicap,
			Ping:       entry.ping,
			Frags:      t.weapons.Sum(),
			Deaths:     t.deaths,
			Suicides:   t.suicides,
			WorldFrags: t.worldFrags,
			Awards:     t.awards,
			Weapons:    t.weapons,
		}
		if rec.GameType.IsCTF() {
			g.CTF = stats.CTFEvents{
				stats.FlagsTaken:      t.flags[event.FlagTaken],
				stats.FlagsReturned:   t.flags[event.FlagReturned],
				stats.CarriersFragged: t.flags[event.CarrierFragged],
			}
		}
		out = append(out, g)
	}
	return out
}

// won decides the win flag. Free-for-all games are won by the first
// scoreboard line; team games by every member of the top-scoring team.
// Missing team data means no win.
func (r *Record) won(t *tally, entry scoreEntry) bool {
	if !r.GameType.IsTeam() {
		return entry.position == 1
	}
	if r.teamScores == nil {
		return false
	}
	best := max(r.teamScores.Red, r.teamScores.Blue)
	switch t.team {
	case event.TeamRed:
		return r.teamScores.Red == best
	case event.TeamBlue:
		return r.teamScores.Blue == best
	}
	return false
}
