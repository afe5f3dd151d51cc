package stats

import (
	"cmp"
	"slices"
)

// Quote is one chat line.
type Quote struct {
	Speaker string `json:"speaker" yaml:"speaker"`
	Text    string `json:"text" yaml:"text"`
}

// QuoteSet is a set of quotes; identical pairs collapse.
type QuoteSet map[Quote]struct{}

// NewQuoteSet returns a set holding quotes.
func NewQuoteSet(quotes ...Quote) QuoteSet {
	s := make(QuoteSet, len(quotes))
	for _, q := range quotes {
		s.Add(q)
	}
	return s
}

// Add inserts q.
func (s QuoteSet) Add(q Quote) {
	s[q] = struct{}{}
}

// Union adds every quote of o to s.
func (s QuoteSet) Union(o QuoteSet) {
	for q := range o {
		s[q] = struct{}{}
	}
}

// Sorted returns the quotes ordered by speaker, then text.
func (s QuoteSet) Sorted() []Quote {
	out := make([]Quote, 0, len(s))
	for q := range s {
		out = append(out, q)
	}
	slices.SortFunc(out, func(a, b Quote) int {
		if c := cmp.Compare(a.Speaker, b.Speaker); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
	return out
}
