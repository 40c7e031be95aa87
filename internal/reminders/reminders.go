// Package reminders reads and appends the plain-text reminders list.
//
// One reminder per line. Blank lines and lines starting with '#' are
// skipped. A "[x]" or "[X]" prefix marks a reminder done, "[!]" marks it
// high priority, and "[ ]" or no prefix leaves it pending at normal
// priority.
package reminders

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Priority of a reminder.
type Priority string

// Status of a reminder.
type Status string

const (
	Normal Priority = "normal"
	High   Priority = "high"

	Pending Status = "pending"
	Done    Status = "done"
)

// ErrEmptyText is returned when appending a blank reminder.
var ErrEmptyText = errors.New("reminders: empty text")

// Reminder is one parsed line.
type Reminder struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`
}

// Prefix returns the checkbox shown for r.
func (r Reminder) Prefix() string {
	switch {
	case r.Status == Done:
		return "[x]"
	case r.Priority == High:
		return "[!]"
	default:
		return "[ ]"
	}
}

// ParseLine parses a single line. ok is false for blank and comment lines.
func ParseLine(line string) (r Reminder, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Reminder{}, false
	}
	r = Reminder{Text: line, Priority: Normal, Status: Pending}
	switch {
	case strings.HasPrefix(line, "[x]"), strings.HasPrefix(line, "[X]"):
		r.Status = Done
		r.Text = strings.TrimSpace(line[3:])
	case strings.HasPrefix(line, "[!]"):
		r.Priority = High
		r.Text = strings.TrimSpace(line[3:])
	case strings.HasPrefix(line, "[ ]"):
		r.Text = strings.TrimSpace(line[3:])
	}
	return r, true
}

// Parse reads reminders from rd in order, stopping after max items. A
// non-positive max reads everything.
func Parse(rd io.Reader, max int) ([]Reminder, error) {
	var out []Reminder
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		r, ok := ParseLine(sc.Text())
		if !ok {
			continue
		}
		out = append(out, r)
		if max > 0 && len(out) >= max {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("reminders: scan: %w", err)
	}
	return out, nil
}

// Load parses the reminders file at path.
func Load(path string, max int) ([]Reminder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reminders: open: %w", err)
	}
	defer f.Close()
	return Parse(f, max)
}

// Format renders r as a file line.
func Format(r Reminder) string {
	return r.Prefix() + " " + r.Text
}

// Append adds a pending reminder to the end of the file at path, creating
// it if needed.
func Append(path, text string, priority Priority) (Reminder, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return Reminder{}, ErrEmptyText
	}
	if priority != High {
		priority = Normal
	}
	r := Reminder{Text: text, Priority: priority, Status: Pending}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return Reminder{}, fmt.Errorf("reminders: open: %w", err)
	}
	defer f.Close()

	line := Format(r) + "\n"
	if needsNewline(f) {
		line = "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		return Reminder{}, fmt.Errorf("reminders: write: %w", err)
	}
	return r, nil
}

// needsNewline reports whether f is non-empty and lacks a trailing newline.
func needsNewline(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}
	buf := make([]byte, 1)
	if _, err := f.ReadAt(buf, info.Size()-1); err != nil {
		return false
	}
	return buf[0] != '\n'
}

// File is a reminders file read on every call.
type File struct {
	Path string
	Max  int
}

// Reminders loads the file.
func (f File) Reminders(context.Context) ([]Reminder, error) {
	return Load(f.Path, f.Max)
}
