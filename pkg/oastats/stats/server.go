package stats

import "github.com/oastats/oastats-go/pkg/oastats/event"

// ServerStats is the server-wide aggregate. GameType and Hostname are those
// of the most recent game, not merged.
type ServerStats struct {
	Time     int            `json:"time" yaml:"time"`
	Frags    int            `json:"frags" yaml:"frags"`
	GameType event.GameType `json:"game_type" yaml:"game_type"`
	Hostname string         `json:"hostname" yaml:"hostname"`
}
