package parser

import "regexp"

// Every games.log line starts with the elapsed game time, "mmm:ss", padded
// with leading spaces: "  3:20 Kill: ..." or "100:04 Kill: ...".
var timePrefixPattern = regexp.MustCompile(`^\s*(\d+):(\d{2})\s(.*)$`)

// Line keywords, matched against the text after the time prefix.
const (
	itemPrefix      = "Item: "
	killPrefix      = "Kill: "
	ctfPrefix       = "CTF: "
	awardPrefix     = "Award: "
	userInfoPrefix  = "ClientUserinfoChanged: "
	sayPrefix       = "say: "
	scorePrefix     = "score: "
	teamScorePrefix = "red:"
	exitPrefix      = "Exit: "
	shutdownPrefix  = "ShutdownGame:"
	initPrefix      = "InitGame: "
	warmupPrefix    = "Warmup:"
)

// Compiled regex patterns for field extraction.
var (
	// Matches: "Kill: 3 2 10: Gargoyle killed Grunt by MOD_RAILGUN"
	// Captures: (1) killer id, (2) victim id, (3) means-of-death id,
	// (4) killer name, (5) victim name, (6) MOD name
	killPattern = regexp.MustCompile(
		`^Kill: (\d+) (\d+) (\d+): (.+?) killed (.+) by (MOD_[A-Z0-9_]+)$`,
	)

	// Matches: "CTF: 1 1 3: Inhakitor fragged RED's flag carrier!"
	// Captures: (1) client id, (2) team, (3) event code
	ctfPattern = regexp.MustCompile(`^CTF: (\d+) (\d+) ([0-3]):`)

	// Matches: "Award: 4 2: Grunt gained the IMPRESSIVE award!"
	// Captures: (1) client id, (2) award id, (3) name, (4) award word
	awardPattern = regexp.MustCompile(
		`^Award: (\d+) (\d+): (.+) gained the ([A-Z]+) award!$`,
	)

	// Matches: "ClientUserinfoChanged: 0 n\kernel\t\3\model\sarge\hc\100"
	// Captures: (1) client id, (2) info string
	userInfoPattern = regexp.MustCompile(`^ClientUserinfoChanged: (\d+) (.*)$`)

	// Matches: "say: ^2ONAK: joder otra vez no"
	// Captures: (1) speaker, (2) message
	sayPattern = regexp.MustCompile(`^say: (.+?): (.*)$`)

	// Matches: "score: 6  ping: 85  client: 2 Iagoi"
	// Captures: (1) score, (2) ping, (3) client id, (4) name
	scorePattern = regexp.MustCompile(
		`^score:\s+(-?\d+)\s+ping:\s+(\d+)\s+client:\s+(\d+)\s+(.+)$`,
	)

	// Matches: "red:4  blue:5"
	// Captures: (1) red score, (2) blue score
	teamScorePattern = regexp.MustCompile(`^red:\s*(-?\d+)\s+blue:\s*(-?\d+)`)

	// Matches: "Exit: Timelimit hit." and the frag/capture limit variants.
	// Captures: (1) limit name
	exitPattern = regexp.MustCompile(`^Exit: (Timelimit|Fraglimit|Capturelimit) hit`)
)
