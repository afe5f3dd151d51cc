// Package parser provides games.log line classification.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oastats/oastats-go/pkg/oastats/event"
)

// ErrMalformed is wrapped by every error returned for a line that carries an
// event keyword but whose fields could not be extracted.
var ErrMalformed = errors.New("malformed event line")

// Parse classifies a games.log line.
//
// Returns:
//   - (*Event, nil): Recognised event
//   - (nil, nil): Not an event line (or an event nobody counts)
//   - (nil, error): Event keyword present but fields malformed
func Parse(line string) (*event.Event, error) {
	// Trim trailing CR for Windows CRLF compatibility
	line = strings.TrimRight(line, "\r\n")

	secs, rest, ok := splitTime(line)
	if !ok {
		return nil, nil
	}

	ev := &event.Event{Time: secs}
	var err error

	switch {
	case strings.HasPrefix(rest, itemPrefix):
		ev.Type = event.Item
	case strings.HasPrefix(rest, killPrefix):
		ev.Type = event.Kill
		ev.Data, err = parseKill(rest)
	case strings.HasPrefix(rest, ctfPrefix):
		ev.Type = event.CTF
		ev.Data, err = parseCTF(rest)
	case strings.HasPrefix(rest, awardPrefix):
		ev.Type = event.Award
		ev.Data, err = parseAward(rest)
	case strings.HasPrefix(rest, userInfoPrefix):
		ev.Type = event.UserInfo
		ev.Data, err = parseUserInfo(rest)
	case strings.HasPrefix(rest, sayPrefix):
		ev.Type = event.Say
		ev.Data, err = parseSay(rest)
	case strings.HasPrefix(rest, scorePrefix):
		ev.Type = event.Score
		ev.Data, err = parseScore(rest)
	case strings.HasPrefix(rest, teamScorePrefix):
		ev.Type = event.TeamScore
		ev.Data, err = parseTeamScore(rest)
	case strings.HasPrefix(rest, exitPrefix):
		match := exitPattern.FindStringSubmatch(rest)
		if match == nil {
			// Other exit reasons do not end a match
			return nil, nil
		}
		ev.Type = event.Exit
		ev.Data = &event.ExitData{Reason: match[1]}
	case strings.HasPrefix(rest, shutdownPrefix):
		ev.Type = event.Shutdown
	case strings.HasPrefix(rest, initPrefix):
		ev.Type = event.Init
		ev.Data = parseInit(rest)
	case strings.HasPrefix(rest, warmupPrefix):
		ev.Type = event.Warmup
	default:
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return ev, nil
}

// splitTime strips the "mmm:ss " prefix and returns it in seconds.
func splitTime(line string) (int, string, bool) {
	match := timePrefixPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, "", false
	}
	mins, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, "", false
	}
	secs, err := strconv.Atoi(match[2])
	if err != nil || secs > 59 {
		return 0, "", false
	}
	return mins*60 + secs, strings.TrimLeft(match[3], " "), true
}

func malformed(kind, rest string) error {
	return fmt.Errorf("%w: %s: %q", ErrMalformed, kind, rest)
}

func parseKill(rest string) (*event.KillData, error) {
	match := killPattern.FindStringSubmatch(rest)
	if match == nil {
		return nil, malformed("kill", rest)
	}
	killerID, err1 := strconv.Atoi(match[1])
	victimID, err2 := strconv.Atoi(match[2])
	if err := errors.Join(err1, err2); err != nil {
		return nil, malformed("kill", rest)
	}
	return &event.KillData{
		KillerID: killerID,
		VictimID: victimID,
		Killer:   match[4],
		Victim:   match[5],
		Weapon:   match[6],
	}, nil
}

func parseCTF(rest string) (*event.CTFData, error) {
	match := ctfPattern.FindStringSubmatch(rest)
	if match == nil {
		return nil, malformed("ctf", rest)
	}
	clientID, err1 := strconv.Atoi(match[1])
	team, err2 := strconv.Atoi(match[2])
	code, err3 := strconv.Atoi(match[3])
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, malformed("ctf", rest)
	}
	return &event.CTFData{
		ClientID: clientID,
		Team:     team,
		Action:   event.CTFAction(code),
	}, nil
}

func parseAward(rest string) (*event.AwardData, error) {
	match := awardPattern.FindStringSubmatch(rest)
	if match == nil {
		return nil, malformed("award", rest)
	}
	clientID, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, malformed("award", rest)
	}
	return &event.AwardData{
		ClientID: clientID,
		Name:     match[3],
		Award:    match[4],
	}, nil
}

func parseUserInfo(rest string) (*event.UserInfoData, error) {
	match := userInfoPattern.FindStringSubmatch(rest)
	if match == nil {
		return nil, malformed("userinfo", rest)
	}
	clientID, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, malformed("userinfo", rest)
	}

	info := parseInfoString(match[2])
	name, ok := info["n"]
	if !ok || name == "" {
		return nil, malformed("userinfo", rest)
	}

	data := &event.UserInfoData{
		ClientID: clientID,
		Name:     name,
		Team:     event.TeamFree,
		Handicap: event.DefaultHandicap,
	}
	if t, ok := info["t"]; ok {
		team, err := strconv.Atoi(t)
		if err != nil {
			return nil, malformed("userinfo", rest)
		}
		data.Team = team
	}
	if hc, ok := info["hc"]; ok {
		if handicap, err := strconv.Atoi(hc); err == nil {
			data.Handicap = handicap
		}
	}
	return data, nil
}

func parseSay(rest string) (*event.SayData, error) {
	match := sayPattern.FindStringSubmatch(rest)
	if match == nil {
		return nil, malformed("say", rest)
	}
	return &event.SayData{
		Speaker: strings.TrimSpace(match[1]),
		Message: strings.TrimSpace(match[2]),
	}, nil
}

func parseScore(rest string) (*event.ScoreData, error) {
	match := scorePattern.FindStringSubmatch(rest)
	if match == nil {
		return nil, malformed("score", rest)
	}
	score, err1 := strconv.Atoi(match[1])
	ping, err2 := strconv.Atoi(match[2])
	clientID, err3 := strconv.Atoi(match[3])
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, malformed("score", rest)
	}
	return &event.ScoreData{
		Score:    score,
		Ping:     ping,
		ClientID: clientID,
		Name:     match[4],
	}, nil
}

func parseTeamScore(rest string) (*event.TeamScoreData, error) {
	match := teamScorePattern.FindStringSubmatch(rest)
	if match == nil {
		return nil, malformed("teamscore", rest)
	}
	red, err1 := strconv.Atoi(match[1])
	blue, err2 := strconv.Atoi(match[2])
	if err := errors.Join(err1, err2); err != nil {
		return nil, malformed("teamscore", rest)
	}
	return &event.TeamScoreData{Red: red, Blue: blue}, nil
}

func parseInit(rest string) *event.InitData {
	settings := parseInfoString(strings.TrimPrefix(rest, initPrefix))
	data := &event.InitData{
		MapName:  settings["mapname"],
		Hostname: settings["sv_hostname"],
		GameType: event.DefaultGameType,
		Settings: settings,
	}
	if gt, err := strconv.Atoi(settings["g_gametype"]); err == nil && gt >= 0 {
		data.GameType = event.GameType(gt)
	}
	return data
}

// parseInfoString splits a backslash-separated key/value string such as
// `\mapname\q3dm17\g_gametype\0` (the leading backslash is optional).
// A trailing key without value maps to "".
func parseInfoString(s string) map[string]string {
	s = strings.TrimPrefix(s, `\`)
	parts := strings.Split(s, `\`)
	kv := make(map[string]string, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		key := parts[i]
		if key == "" {
			continue
		}
		value := ""
		if i+1 < len(parts) {
			value = parts[i+1]
		}
		if _, exists := kv[key]; !exists {
			kv[key] = value
		}
	}
	return kv
}
