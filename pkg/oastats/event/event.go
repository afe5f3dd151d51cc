// Package event defines the typed events recognised in OpenArena and Quake 3
// games.log files.
package event

// Type identifies the kind of a log event.
type Type string

// Event types, in the order the classifier tests them.
const (
	Item      Type = "item"
	Kill      Type = "kill"
	CTF       Type = "ctf"
	Award     Type = "award"
	UserInfo  Type = "userinfo"
	Say       Type = "say"
	Score     Type = "score"
	TeamScore Type = "teamscore"
	Exit      Type = "exit"
	Shutdown  Type = "shutdown"
	Init      Type = "init"
	Warmup    Type = "warmup"
)

// WorldID is the client id the engine uses for environmental kills.
const WorldID = 1022

// WorldName is the killer name printed for environmental kills.
const WorldName = "<world>"

// Event is one classified log line.
type Event struct {
	Type Type `json:"type"`

	// Time is the elapsed game time in seconds printed at the start of the line.
	Time int `json:"time"`

	// Data holds the payload for the event type: *InitData, *KillData,
	// *CTFData, *AwardData, *UserInfoData, *SayData, *ScoreData,
	// *TeamScoreData or *ExitData. Item, Warmup and Shutdown carry no data.
	Data any `json:"data,omitempty"`

	// RawLine is the original line, set only when requested.
	RawLine string `json:"raw_line,omitempty"`
}

// InitData is the payload of an InitGame line.
type InitData struct {
	MapName  string            `json:"map_name"`
	Hostname string            `json:"hostname"`
	GameType GameType          `json:"game_type"`
	Settings map[string]string `json:"settings,omitempty"`
}

// KillData is the payload of a Kill line.
type KillData struct {
	KillerID int    `json:"killer_id"`
	VictimID int    `json:"victim_id"`
	Killer   string `json:"killer"`
	Victim   string `json:"victim"`
	Weapon   string `json:"weapon"`
}

// ByWorld reports whether the kill was inflicted by the environment.
func (k *KillData) ByWorld() bool {
	return k.KillerID == WorldID || k.Killer == WorldName
}

// CTFAction is the event code printed on a CTF line.
type CTFAction int

const (
	FlagTaken CTFAction = iota
	FlagCaptured
	FlagReturned
	CarrierFragged
)

// CTFData is the payload of a CTF line.
type CTFData struct {
	ClientID int       `json:"client_id"`
	Team     int       `json:"team"`
	Action   CTFAction `json:"action"`
}

// AwardData is the payload of an Award line. Award is the upper-case award
// word, e.g. "IMPRESSIVE".
type AwardData struct {
	ClientID int    `json:"client_id"`
	Name     string `json:"name"`
	Award    string `json:"award"`
}

// Team codes used in userinfo strings.
const (
	TeamFree      = 0
	TeamRed       = 1
	TeamBlue      = 2
	TeamSpectator = 3
)

// DefaultHandicap applies when a userinfo string has no hc key.
const DefaultHandicap = 100

// UserInfoData is the payload of a ClientUserinfoChanged line.
type UserInfoData struct {
	ClientID int    `json:"client_id"`
	Name     string `json:"name"`
	Team     int    `json:"team"`
	Handicap int    `json:"handicap"`
}

// SayData is the payload of a say line.
type SayData struct {
	Speaker string `json:"speaker"`
	Message string `json:"message"`
}

// ScoreData is the payload of a scoreboard line.
type ScoreData struct {
	Score    int    `json:"score"`
	Ping     int    `json:"ping"`
	ClientID int    `json:"client_id"`
	Name     string `json:"name"`
}

// TeamScoreData is the payload of a "red: N blue: M" line.
type TeamScoreData struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// ExitData is the payload of a match-end line.
type ExitData struct {
	Reason string `json:"reason"`
}
