package oastats

import "github.com/oastats/oastats-go/internal/parser"

// ParseLine classifies a single games.log line.
//
// Return values:
//   - (*Event, nil): recognised event
//   - (nil, nil): not an event line
//   - (nil, error): event keyword present but the fields are malformed
//
// Example:
//
//	ev, err := oastats.ParseLine("  3:20 Kill: 3 2 10: Gargoyle killed Grunt by MOD_RAILGUN")
//	if err == nil && ev != nil {
//	    k := ev.Data.(*oastats.KillData)
//	    fmt.Println(k.Killer, "fragged", k.Victim)
//	}
func ParseLine(line string) (*Event, error) {
	ev, err := parser.Parse(line)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	return ev, nil
}
