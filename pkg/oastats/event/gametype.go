package event

import "fmt"

// GameType is the g_gametype server setting.
type GameType int

const (
	Deathmatch GameType = iota
	Tournament
	SinglePlayer
	TeamDeathmatch
	CaptureTheFlag
	OneFlagCTF
	Overload
	Harvester
	Elimination
	CTFElimination
	LastManStanding
	DoubleDomination
	Domination
)

// DefaultGameType is used when g_gametype is missing or unparseable.
const DefaultGameType = Deathmatch

var gameTypeNames = map[GameType]string{
	Deathmatch:       "Death Match",
	Tournament:       "1 vs 1",
	SinglePlayer:     "Single Death Match",
	TeamDeathmatch:   "Team Death Match",
	CaptureTheFlag:   "Capture the Flag",
	OneFlagCTF:       "One-Flag CTF",
	Overload:         "Overload",
	Harvester:        "Harvester",
	Elimination:      "Elimination",
	CTFElimination:   "CTF Elimination",
	LastManStanding:  "Last Man Standing",
	DoubleDomination: "Double Domination",
	Domination:       "Domination",
}

func (g GameType) String() string {
	if name, ok := gameTypeNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", int(g))
}

// IsTeam reports whether wins are decided by red/blue team scores.
func (g GameType) IsTeam() bool {
	switch g {
	case TeamDeathmatch, CaptureTheFlag, OneFlagCTF, Overload, Harvester,
		Elimination, CTFElimination, DoubleDomination, Domination:
		return true
	}
	return false
}

// IsCTF reports whether flag events are meaningful for the game type.
func (g GameType) IsCTF() bool {
	switch g {
	case CaptureTheFlag, OneFlagCTF, CTFElimination:
		return true
	}
	return false
}
