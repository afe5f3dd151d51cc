// Package stats holds the per-player and server aggregates produced from
// games.log files, and the operations that fold and merge them.
package stats

// PlayerGame is one player's normalized result for one valid game.
type PlayerGame struct {
	Nick       string    `json:"nick"`
	Win        bool      `json:"win"`
	Time       int       `json:"time"`
	Handicap   int       `json:"handicap"`
	Ping       int       `json:"ping"`
	Frags      int       `json:"frags"`
	Deaths     int       `json:"deaths"`
	Suicides   int       `json:"suicides"`
	WorldFrags int       `json:"world_frags"`
	Awards     Awards    `json:"awards"`
	Weapons    Weapons   `json:"weapons"`
	CTF        CTFEvents `json:"ctf"`
}

// Ping is the (min, average, max) ping triple across games. Total is the sum
// of per-game pings; Avg is derived from it.
type Ping struct {
	Min   int     `json:"min" yaml:"min"`
	Avg   float64 `json:"avg" yaml:"avg"`
	Max   int     `json:"max" yaml:"max"`
	Total int     `json:"total" yaml:"total"`
}

// PlayerStats is the cumulative record for one nickname.
//
// Averages are carried as integer totals (Ping.Total, HandicapTotal) so that
// merging any number of batches reproduces a from-scratch computation
// exactly. Avg and Handicap are recomputed from the totals by Normalize.
type PlayerStats struct {
	Nick          string    `json:"nick" yaml:"nick"`
	Games         int       `json:"games" yaml:"games"`
	Wins          int       `json:"wins" yaml:"wins"`
	Time          int       `json:"time" yaml:"time"`
	Handicap      float64   `json:"handicap" yaml:"handicap"`
	HandicapTotal int       `json:"handicap_total" yaml:"handicap_total"`
	Ping          Ping      `json:"ping" yaml:"ping"`
	Frags         int       `json:"frags" yaml:"frags"`
	Deaths        int       `json:"deaths" yaml:"deaths"`
	Suicides      int       `json:"suicides" yaml:"suicides"`
	WorldFrags    int       `json:"world_frags" yaml:"world_frags"`
	Awards        Awards    `json:"awards" yaml:"awards,flow"`
	Weapons       Weapons   `json:"weapons" yaml:"weapons,flow"`
	CTF           CTFEvents `json:"ctf" yaml:"ctf,flow"`
}

// FromGame starts a cumulative record from a single game result.
func FromGame(g PlayerGame) PlayerStats {
	p := PlayerStats{
		Nick:          g.Nick,
		Games:         1,
		Time:          g.Time,
		HandicapTotal: g.Handicap,
		Ping:          Ping{Min: g.Ping, Max: g.Ping, Total: g.Ping},
		Frags:         g.Frags,
		Deaths:        g.Deaths,
		Suicides:      g.Suicides,
		WorldFrags:    g.WorldFrags,
		Awards:        g.Awards,
		Weapons:       g.Weapons,
		CTF:           g.CTF,
	}
	if g.Win {
		p.Wins = 1
	}
	p.Normalize()
	return p
}

// Add folds o into p. Both must describe the same nickname.
func (p *PlayerStats) Add(o PlayerStats) {
	switch {
	case o.Games == 0:
		return
	case p.Games == 0:
		p.Ping = o.Ping
	default:
		p.Ping.Min = min(p.Ping.Min, o.Ping.Min)
		p.Ping.Max = max(p.Ping.Max, o.Ping.Max)
		p.Ping.Total += o.Ping.Total
	}
	p.Games += o.Games
	p.Wins += o.Wins
	p.Time += o.Time
	p.HandicapTotal += o.HandicapTotal
	p.Frags += o.Frags
	p.Deaths += o.Deaths
	p.Suicides += o.Suicides
	p.WorldFrags += o.WorldFrags
	p.Awards = p.Awards.add(o.Awards)
	p.Weapons = p.Weapons.add(o.Weapons)
	p.CTF = p.CTF.add(o.CTF)
	p.Normalize()
}

// Normalize recomputes the derived averages from the totals.
func (p *PlayerStats) Normalize() {
	if p.Games == 0 {
		p.Ping.Avg = 0
		p.Handicap = 0
		return
	}
	p.Ping.Avg = float64(p.Ping.Total) / float64(p.Games)
	p.Handicap = float64(p.HandicapTotal) / float64(p.Games)
}
