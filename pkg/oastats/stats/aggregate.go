package stats

import (
	"cmp"
	"slices"
)

// Batch is the set of games parsed in one run, already aggregated.
type Batch struct {
	// Games is the number of valid games in the batch.
	Games   int
	Players []PlayerStats
	Server  ServerStats
	Quotes  QuoteSet
}

// Aggregate folds per-game results into one record per nickname, sorted by
// nickname. Nicknames whose frags sum to zero over all games are dropped.
func Aggregate(games [][]PlayerGame) []PlayerStats {
	byNick := make(map[string]*PlayerStats)
	for _, game := range games {
		for _, g := range game {
			if p, ok := byNick[g.Nick]; ok {
				p.Add(FromGame(g))
				continue
			}
			p := FromGame(g)
			byNick[g.Nick] = &p
		}
	}

	out := make([]PlayerStats, 0, len(byNick))
	for _, p := range byNick {
		if p.Frags == 0 {
			continue
		}
		out = append(out, *p)
	}
	sortByNick(out)
	return out
}

func sortByNick(players []PlayerStats) {
	slices.SortFunc(players, func(a, b PlayerStats) int {
		return cmp.Compare(a.Nick, b.Nick)
	})
}
