package oastats

import (
	"context"

	"github.com/oastats/oastats-go/internal/parser"
	"github.com/oastats/oastats-go/pkg/oastats/event"
)

// DefaultParser recognises the OpenArena and Quake 3 games.log events.
type DefaultParser struct{}

// ParseLine implements Parser. Malformed event lines are reported as
// *ParseError wrapping ErrMalformedLine.
func (DefaultParser) ParseLine(_ context.Context, line string) (ParseResult, error) {
	ev, err := parser.Parse(line)
	if err != nil {
		return ParseResult{}, &ParseError{Line: line, Err: err}
	}
	if ev == nil {
		return ParseResult{}, nil
	}
	return ParseResult{Events: []event.Event{*ev}, Matched: true}, nil
}

var _ Parser = DefaultParser{}
