package oastats

import (
	"context"
	"errors"

	"github.com/oastats/oastats-go/pkg/oastats/event"
)

// ParseResult is the outcome of classifying one log line.
type ParseResult struct {
	// Events holds the recognised events. The segmenter uses the first one.
	Events []event.Event

	// Matched reports whether the parser recognised the line. It can be true
	// with no Events when a parser deliberately swallows a line.
	Matched bool
}

// Parser classifies games.log lines.
type Parser interface {
	// ParseLine returns Matched=false for lines that are not events and an
	// error for event lines whose fields could not be read. Either way the
	// pipeline moves on to the next line.
	ParseLine(ctx context.Context, line string) (ParseResult, error)
}

// ParserFunc adapts an ordinary function to the Parser interface.
type ParserFunc func(ctx context.Context, line string) (ParseResult, error)

// ParseLine implements Parser.
func (f ParserFunc) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	return f(ctx, line)
}

// ChainMode selects how a ParserChain combines its parsers.
type ChainMode int

const (
	// ChainAll runs every parser and concatenates their events (default).
	ChainAll ChainMode = iota

	// ChainFirst stops at the first parser that matches.
	ChainFirst

	// ChainContinueOnError skips parsers that fail and returns the joined
	// errors together with whatever the others produced.
	ChainContinueOnError
)

// ParserChain runs several parsers over each line.
type ParserChain struct {
	Mode    ChainMode
	Parsers []Parser
}

// ParseLine implements Parser. On context cancellation it returns the events
// collected so far together with the context error.
func (c *ParserChain) ParseLine(ctx context.Context, line string) (ParseResult, error) {
	var events []event.Event
	var errs []error
	matched := false

	for _, p := range c.Parsers {
		if err := ctx.Err(); err != nil {
			return ParseResult{Events: events, Matched: matched}, err
		}
		if p == nil {
			continue
		}

		result, err := p.ParseLine(ctx, line)
		if err != nil {
			if c.Mode == ChainContinueOnError {
				errs = append(errs, err)
				continue
			}
			return ParseResult{}, err
		}
		if !result.Matched {
			continue
		}
		matched = true
		events = append(events, result.Events...)
		if c.Mode == ChainFirst {
			break
		}
	}

	return ParseResult{Events: events, Matched: matched}, errors.Join(errs...)
}

// ExcludeTypes wraps p so that events of the given types are treated as
// unrecognised lines. Excluding event.Say, for example, keeps chat out of
// the quote set.
func ExcludeTypes(p Parser, types ...EventType) Parser {
	excluded := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		excluded[t] = struct{}{}
	}
	return ParserFunc(func(ctx context.Context, line string) (ParseResult, error) {
		result, err := p.ParseLine(ctx, line)
		if err != nil || !result.Matched {
			return result, err
		}
		kept := result.Events[:0:0]
		for _, ev := range result.Events {
			if _, drop := excluded[ev.Type]; !drop {
				kept = append(kept, ev)
			}
		}
		return ParseResult{Events: kept, Matched: len(kept) > 0}, nil
	})
}
