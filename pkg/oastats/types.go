package oastats

import (
	"github.com/oastats/oastats-go/pkg/oastats/event"
	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

// Type aliases for the event and stats packages, so most callers only need
// to import oastats.
type (
	Event       = event.Event
	EventType   = event.Type
	KillData    = event.KillData
	InitData    = event.InitData
	Snapshot    = stats.Snapshot
	PlayerStats = stats.PlayerStats
	ServerStats = stats.ServerStats
	Quote       = stats.Quote
)
