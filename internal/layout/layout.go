// Package layout computes the fixed zone geometry of the dashboard canvas.
//
// Zones are derived arithmetically from a handful of constants and never
// overlap. Rectangles are half-open (image.Rectangle semantics), so two
// zones sharing an edge have an empty intersection.
package layout

import (
	"errors"
	"fmt"
	"image"

	"github.com/hey-codes/paperterm/internal/glyphs"
)

// ErrInvalidLayout reports zone constants that do not fit the canvas.
var ErrInvalidLayout = errors.New("layout: invalid zone geometry")

// Name identifies a logical zone.
type Name string

// Zone names, in draw order.
const (
	Time      Name = "time"
	Weather   Name = "weather"
	Calendar  Name = "calendar"
	Artwork   Name = "artwork"
	Reminders Name = "reminders"
)

// ClockInset is the offset of the block-digit clock from the top-left
// corner of the time zone.
var ClockInset = image.Pt(50, 60)

// MinTimeSize is the smallest time zone that holds the block-digit clock.
func MinTimeSize() image.Point {
	return ClockInset.Add(image.Pt(glyphs.TimeWidth(), glyphs.DigitHeight))
}

// Spec holds the design constants the layout is derived from.
type Spec struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	Margin          int `yaml:"margin"`
	TimeHeight      int `yaml:"time_height"`
	MiddleHeight    int `yaml:"middle_height"`
	RemindersHeight int `yaml:"reminders_height"`
	WeatherWidth    int `yaml:"weather_width"`
	CalendarHeight  int `yaml:"calendar_height"`
}

// DefaultSpec returns the constants of the 1236x1648 reference panel.
func DefaultSpec() Spec {
	return Spec{
		Width:           1236,
		Height:          1648,
		Margin:          30,
		TimeHeight:      320,
		MiddleHeight:    1048,
		RemindersHeight: 220,
		WeatherWidth:    350,
		CalendarHeight:  620,
	}
}

// Validate checks that the zones fit the canvas. The returned error wraps
// ErrInvalidLayout.
func (s Spec) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"width", s.Width},
		{"height", s.Height},
		{"time_height", s.TimeHeight},
		{"middle_height", s.MiddleHeight},
		{"reminders_height", s.RemindersHeight},
		{"weather_width", s.WeatherWidth},
		{"calendar_height", s.CalendarHeight},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidLayout, f.name, f.value)
		}
	}
	if s.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative, got %d", ErrInvalidLayout, s.Margin)
	}

	used := s.TimeHeight + s.MiddleHeight + s.RemindersHeight
	if avail := s.Height - 2*s.Margin; used > avail {
		return fmt.Errorf("%w: zone heights %d exceed canvas height minus margins %d", ErrInvalidLayout, used, avail)
	}
	if inner := s.Width - 2*s.Margin; s.WeatherWidth >= inner {
		return fmt.Errorf("%w: weather width %d leaves no room in content width %d", ErrInvalidLayout, s.WeatherWidth, inner)
	}
	if s.CalendarHeight >= s.MiddleHeight {
		return fmt.Errorf("%w: calendar height %d leaves no room for artwork in middle height %d", ErrInvalidLayout, s.CalendarHeight, s.MiddleHeight)
	}

	clock := MinTimeSize()
	if inner := s.Width - 2*s.Margin; inner < clock.X {
		return fmt.Errorf("%w: content width %d is narrower than the clock (%d)", ErrInvalidLayout, inner, clock.X)
	}
	if s.TimeHeight < clock.Y {
		return fmt.Errorf("%w: time height %d is shorter than the clock (%d)", ErrInvalidLayout, s.TimeHeight, clock.Y)
	}
	cal := glyphs.CalendarMinSize()
	if w := s.Width - 2*s.Margin - s.WeatherWidth; w < cal.X {
		return fmt.Errorf("%w: calendar width %d is below the minimum %d", ErrInvalidLayout, w, cal.X)
	}
	if s.CalendarHeight < cal.Y {
		return fmt.Errorf("%w: calendar height %d is below the minimum %d", ErrInvalidLayout, s.CalendarHeight, cal.Y)
	}
	return nil
}

// SmallestSpec returns the smallest spec New accepts for margin: the time
// and calendar zones at their minimum sizes and one-pixel strips for the
// artwork and reminders zones.
func SmallestSpec(margin int) Spec {
	clock := MinTimeSize()
	cal := glyphs.CalendarMinSize()
	content := max(clock.X, cal.X+1)
	return Spec{
		Width:           content + 2*margin,
		Height:          clock.Y + cal.Y + 2 + 2*margin,
		Margin:          margin,
		TimeHeight:      clock.Y,
		MiddleHeight:    cal.Y + 1,
		RemindersHeight: 1,
		WeatherWidth:    content - cal.X,
		CalendarHeight:  cal.Y,
	}
}

// Zone is a named rectangle of the canvas.
type Zone struct {
	Name Name
	Rect image.Rectangle
}

// Layout is the validated zone partition of one canvas.
type Layout struct {
	spec  Spec
	zones []Zone
}

// New validates spec and derives the zone rectangles.
func New(spec Spec) (*Layout, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	m := spec.Margin
	left, right := m, spec.Width-m
	middleTop := m + spec.TimeHeight
	middleBottom := middleTop + spec.MiddleHeight
	split := left + spec.WeatherWidth
	calendarBottom := middleTop + spec.CalendarHeight

	zones := []Zone{
		{Name: Time, Rect: image.Rect(left, m, right, middleTop)},
		{Name: Weather, Rect: image.Rect(left, middleTop, split, middleBottom)},
		{Name: Calendar, Rect: image.Rect(split, middleTop, right, calendarBottom)},
		{Name: Artwork, Rect: image.Rect(split, calendarBottom, right, middleBottom)},
		{Name: Reminders, Rect: image.Rect(left, middleBottom, right, middleBottom+spec.RemindersHeight)},
	}
	return &Layout{spec: spec, zones: zones}, nil
}

// MustNew is like New but panics on an invalid spec. Intended for tests and
// package-level defaults.
func MustNew(spec Spec) *Layout {
	l, err := New(spec)
	if err != nil {
		panic(err)
	}
	return l
}

// Spec returns the constants the layout was built from.
func (l *Layout) Spec() Spec { return l.spec }

// Bounds returns the full canvas rectangle.
func (l *Layout) Bounds() image.Rectangle {
	return image.Rect(0, 0, l.spec.Width, l.spec.Height)
}

// Zones returns all zones in draw order. The slice is a copy.
func (l *Layout) Zones() []Zone {
	out := make([]Zone, len(l.zones))
	copy(out, l.zones)
	return out
}

// Zone returns the rectangle for name. ok is false for unknown names.
func (l *Layout) Zone(name Name) (image.Rectangle, bool) {
	for _, z := range l.zones {
		if z.Name == name {
			return z.Rect, true
		}
	}
	return image.Rectangle{}, false
}
