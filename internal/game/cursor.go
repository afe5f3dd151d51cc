// Package game splits a games.log line stream into matches and turns each
// finished match into per-player results.
package game

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Line is one log line with its 1-based line number.
type Line struct {
	No   int
	Text string
}

// Cursor is a peekable reader of log lines.
//
// Lines numbered below the start line are read and counted but never
// returned. A final line without a terminating newline is treated as still
// being written and is not returned either.
type Cursor struct {
	r     *bufio.Reader
	start int
	no    int
	bytes int64

	peeked *Line
	done   bool
	err    error
}

// NewCursor returns a cursor over r whose first returned line is start.
// A start below 1 is treated as 1.
func NewCursor(r io.Reader, start int) *Cursor {
	if start < 1 {
		start = 1
	}
	return &Cursor{r: bufio.NewReaderSize(r, 64*1024), start: start}
}

// Next returns the next line. It returns false at end of input or on a read
// error; use Err to tell them apart.
func (c *Cursor) Next() (Line, bool) {
	if c.peeked != nil {
		l := *c.peeked
		c.peeked = nil
		return l, true
	}
	return c.read()
}

// Peek returns the next line without consuming it.
func (c *Cursor) Peek() (Line, bool) {
	if c.peeked != nil {
		return *c.peeked, true
	}
	l, ok := c.read()
	if !ok {
		return Line{}, false
	}
	c.peeked = &l
	return l, true
}

// Err returns the first read error other than io.EOF.
func (c *Cursor) Err() error {
	return c.err
}

// BytesRead returns the number of bytes of complete lines read so far,
// including skipped ones and a peeked one.
func (c *Cursor) BytesRead() int64 {
	return c.bytes
}

// LinesRead returns the number of complete lines read so far, including
// skipped ones and a peeked one.
func (c *Cursor) LinesRead() int {
	return c.no
}

func (c *Cursor) read() (Line, bool) {
	for !c.done {
		text, err := c.r.ReadString('\n')
		if err != nil {
			c.done = true
			if !errors.Is(err, io.EOF) {
				c.err = err
			}
			// partial trailing line
			return Line{}, false
		}
		c.no++
		c.bytes += int64(len(text))
		if c.no < c.start {
			continue
		}
		return Line{No: c.no, Text: strings.TrimRight(text, "\r\n")}, true
	}
	return Line{}, false
}
