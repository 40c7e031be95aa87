// Package rotation persists a round-robin cursor over an ordered collection.
//
// The cursor is stored as the plain text "<index>,<count>". Each Advance
// returns the current item, bumps the count and moves to the next item once
// the count reaches the rotation interval. Selection happens before the
// step, not after: with interval 1 a fresh cursor shows item 0 first rather
// than item 1. A missing or corrupt state file behaves like a fresh one;
// persistence failures are logged and otherwise ignored.
//
// Advance performs a non-atomic read-modify-write of the state file.
// Concurrent processes sharing one file must serialize their calls.
package rotation

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// ErrMalformed reports state text that cannot be parsed.
var ErrMalformed = errors.New("rotation: malformed state")

// Store reads and writes the persisted state.
type Store interface {
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
}

// State is the persisted cursor.
type State struct {
	Index int
	Count int
}

// Parse decodes "<index>,<count>". A missing count defaults to 0.
// Negative or non-numeric fields are rejected.
func Parse(data []byte) (State, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return State{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	parts := strings.Split(text, ",")
	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return State{}, fmt.Errorf("%w: index %q", ErrMalformed, parts[0])
	}
	count := 0
	if len(parts) > 1 {
		count, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return State{}, fmt.Errorf("%w: count %q", ErrMalformed, parts[1])
		}
	}
	if idx < 0 || count < 0 {
		return State{}, fmt.Errorf("%w: negative field in %q", ErrMalformed, text)
	}
	return State{Index: idx, Count: count}, nil
}

// Format encodes s for persistence.
func Format(s State) []byte {
	return []byte(strconv.Itoa(s.Index) + "," + strconv.Itoa(s.Count))
}

// Next applies one transition for a collection of size items. interval
// values below 1 are treated as 1.
func (s State) Next(size, interval int) State {
	if interval < 1 {
		interval = 1
	}
	s.Count++
	if s.Count >= interval {
		s.Index = (s.Index + 1) % size
		s.Count = 0
	}
	return s
}

// Cursor binds a State to its file.
type Cursor struct {
	store  Store
	path   string
	logger *slog.Logger
}

// NewCursor returns a cursor persisted at path through store.
func NewCursor(store Store, path string, logger *slog.Logger) *Cursor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cursor{store: store, path: path, logger: logger}
}

// Load returns the persisted state, or the zero State when the file is
// missing or unreadable.
func (c *Cursor) Load() State {
	data, err := c.store.Read(c.path)
	if err != nil {
		c.logger.Debug("rotation: no state, starting fresh", slog.String("path", c.path))
		return State{}
	}
	s, err := Parse(data)
	if err != nil {
		c.logger.Debug("rotation: discarding corrupt state",
			slog.String("path", c.path),
			slog.String("error", err.Error()))
		return State{}
	}
	return s
}

// Advance selects the item the cursor points at for a collection of size
// items, then steps the cursor and persists it for the next call. ok is
// false for an empty collection, in which case the persisted state is left
// untouched.
func (c *Cursor) Advance(size, interval int) (index int, ok bool) {
	if size <= 0 {
		return 0, false
	}
	cur := c.Load()
	index = cur.Index % size

	next := State{Index: index, Count: cur.Count}.Next(size, interval)
	if err := c.store.Write(c.path, Format(next)); err != nil {
		c.logger.Warn("rotation: persist failed",
			slog.String("path", c.path),
			slog.String("error", err.Error()))
	}
	return index, true
}
