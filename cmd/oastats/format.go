package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/oastats/oastats-go/pkg/oastats"
	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

// validFormats lists all valid output formats.
var validFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
	"yaml":   true,
}

// report is the printed form of a run: cumulative totals in snapshot order,
// with no ranking applied.
type report struct {
	Server  serverReport        `json:"server" yaml:"server"`
	Players []stats.PlayerStats `json:"players" yaml:"players"`
	Quotes  []stats.Quote       `json:"quotes" yaml:"quotes"`
}

type serverReport struct {
	Hostname string `json:"hostname" yaml:"hostname"`
	GameType string `json:"game_type" yaml:"game_type"`
	// Time is the total played time in seconds.
	Time  int `json:"time" yaml:"time"`
	Frags int `json:"frags" yaml:"frags"`

	NewGames       int  `json:"new_games" yaml:"new_games"`
	Discarded      int  `json:"discarded" yaml:"discarded"`
	Dropped        int  `json:"dropped" yaml:"dropped"`
	LinesProcessed int  `json:"lines_processed" yaml:"lines_processed"`
	Resumed        bool `json:"resumed" yaml:"resumed"`
}

// newReport builds the report of res. A non-empty label replaces the game
// type name.
func newReport(res *oastats.BatchResult, label string) report {
	gameType := res.Server.GameType.String()
	if label != "" {
		gameType = label
	}
	return report{
		Server: serverReport{
			Hostname:       res.Server.Hostname,
			GameType:       gameType,
			Time:           res.Server.Time,
			Frags:          res.Server.Frags,
			NewGames:       res.NewGames,
			Discarded:      res.Discarded,
			Dropped:        res.Dropped,
			LinesProcessed: res.LinesProcessed,
			Resumed:        res.Resumed,
		},
		Players: res.Players,
		Quotes:  res.Quotes,
	}
}

// writeReport writes r in the specified format.
func writeReport(format string, r report, out io.Writer) error {
	switch format {
	case "jsonl":
		return writeJSONL(r, out)
	case "pretty":
		return writePretty(r, out)
	case "yaml":
		return writeYAML(r, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// jsonLine is one JSON Lines record; exactly one payload field is set.
type jsonLine struct {
	Kind   string             `json:"kind"`
	Player *stats.PlayerStats `json:"player,omitempty"`
	Quote  *stats.Quote       `json:"quote,omitempty"`
	Server *serverReport      `json:"server,omitempty"`
}

// writeJSONL writes one record per player, one per quote and a final
// server record.
func writeJSONL(r report, out io.Writer) error {
	enc := json.NewEncoder(out)
	for i := range r.Players {
		if err := enc.Encode(jsonLine{Kind: "player", Player: &r.Players[i]}); err != nil {
			return err
		}
	}
	for i := range r.Quotes {
		if err := enc.Encode(jsonLine{Kind: "quote", Quote: &r.Quotes[i]}); err != nil {
			return err
		}
	}
	return enc.Encode(jsonLine{Kind: "server", Server: &r.Server})
}

func writeYAML(r report, out io.Writer) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// writePretty writes a human-readable summary and a player table.
func writePretty(r report, out io.Writer) error {
	s := r.Server
	hostname := s.Hostname
	if hostname == "" {
		hostname = "(unknown server)"
	}
	fmt.Fprintf(out, "%s: %s\n", hostname, s.GameType)
	fmt.Fprintf(out, "played %s, %s frags, %s new %s",
		formatSeconds(s.Time), humanize.Comma(int64(s.Frags)),
		humanize.Comma(int64(s.NewGames)), plural(s.NewGames, "game", "games"))
	if s.Discarded > 0 {
		fmt.Fprintf(out, " (%d discarded)", s.Discarded)
	}
	fmt.Fprintln(out)

	if len(r.Players) == 0 {
		_, err := fmt.Fprintln(out, "no players yet")
		return err
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tGAMES\tWINS\tFRAGS\tDEATHS\tSUICIDES\tTIME\tPING\tHANDICAP\t")
	for _, p := range r.Players {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%d\t%s\t%d/%s/%d\t%s\t\n",
			p.Nick, p.Games, p.Wins,
			humanize.Comma(int64(p.Frags)), humanize.Comma(int64(p.Deaths)), p.Suicides,
			formatSeconds(p.Time),
			p.Ping.Min, humanize.FtoaWithDigits(p.Ping.Avg, 1), p.Ping.Max,
			humanize.FtoaWithDigits(p.Handicap, 1))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Quotes) > 0 {
		fmt.Fprintf(out, "\n%d %s:\n", len(r.Quotes), plural(len(r.Quotes), "quote", "quotes"))
		for _, q := range r.Quotes {
			fmt.Fprintf(out, "  %s: %s\n", q.Speaker, strings.TrimSpace(q.Text))
		}
	}
	return nil
}

func formatSeconds(secs int) string {
	return (time.Duration(secs) * time.Second).String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
