// Package dashboard composes the dashboard image from its zones.
//
// A Compositor validates the zone layout once at construction. Each Render
// gathers weather, reminders and artwork through its sources, draws every
// zone onto a fresh white canvas in a fixed order and encodes the result as
// an 8-bit grayscale PNG. Source failures degrade the affected zone; only
// PNG encoding can fail a render.
package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hey-codes/paperterm/internal/artwork"
	"github.com/hey-codes/paperterm/internal/canvas"
	"github.com/hey-codes/paperterm/internal/checksum"
	"github.com/hey-codes/paperterm/internal/eink"
	"github.com/hey-codes/paperterm/internal/fonts"
	"github.com/hey-codes/paperterm/internal/layout"
	"github.com/hey-codes/paperterm/internal/reminders"
	"github.com/hey-codes/paperterm/internal/weather"
)

// Settings are the static rendering parameters.
type Settings struct {
	Layout         layout.Spec
	Location       *time.Location
	Format24h      bool
	RefreshMinutes int
	City           string
	Fonts          fonts.Sources
	Reduce         eink.Options // Width and Height are taken from the artwork zone
}

// DefaultSettings returns the reference panel settings.
func DefaultSettings() Settings {
	return Settings{
		Layout:         layout.DefaultSpec(),
		Location:       time.UTC,
		RefreshMinutes: 5,
		Fonts:          fonts.DefaultSources(nil),
		Reduce:         eink.DefaultOptions(0, 0),
	}
}

// ReminderSource supplies the reminders for one render.
type ReminderSource interface {
	Reminders(ctx context.Context) ([]reminders.Reminder, error)
}

// ArtworkSource picks the artwork for one render.
type ArtworkSource interface {
	Next() (artwork.Pick, bool)
}

// Deps are the data sources. A nil source disables its data; the zone is
// still drawn in its degraded form.
type Deps struct {
	Weather   weather.Source
	Reminders ReminderSource
	Artwork   ArtworkSource
	Clock     func() time.Time
	Logger    *slog.Logger
}

// Result is one encoded render.
type Result struct {
	PNG        []byte        `json:"-"`
	Checksum   string        `json:"checksum"`
	RenderedAt time.Time     `json:"rendered_at"`
	Duration   time.Duration `json:"duration_ns"`
	Artwork    string        `json:"artwork,omitempty"`
	WeatherOK  bool          `json:"weather_ok"`
	Reminders  int           `json:"reminders"`
	Trigger    string        `json:"trigger,omitempty"`
}

// Compositor draws dashboards.
type Compositor struct {
	settings Settings
	layout   *layout.Layout
	deps     Deps
	logger   *slog.Logger
}

// New validates the layout and returns a compositor. A layout error wraps
// layout.ErrInvalidLayout.
func New(s Settings, d Deps) (*Compositor, error) {
	l, err := layout.New(s.Layout)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if s.Location == nil {
		s.Location = time.UTC
	}
	if s.Fonts == nil {
		s.Fonts = fonts.DefaultSources(nil)
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compositor{settings: s, layout: l, deps: d, logger: logger}, nil
}

// Layout returns the validated zone layout.
func (c *Compositor) Layout() *layout.Layout { return c.layout }

// scene is the data gathered for one render.
type scene struct {
	now       time.Time
	report    *weather.Report
	reminders []reminders.Reminder
	art       *image.Gray
	artName   string
}

// Render draws one dashboard.
func (c *Compositor) Render(ctx context.Context) (*Result, error) {
	start := c.deps.Clock()
	sc := c.gather(ctx, start)

	img := canvas.New(c.settings.Layout.Width, c.settings.Layout.Height)
	fc := fonts.NewCascade(c.settings.Fonts, c.logger)
	defer fc.Close()

	for _, z := range c.layout.Zones() {
		c.drawZone(img, fc, z, sc)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("dashboard: encode png: %w", err)
	}

	data := buf.Bytes()
	return &Result{
		PNG:        data,
		Checksum:   checksum.Sum(data),
		RenderedAt: start,
		Duration:   c.deps.Clock().Sub(start),
		Artwork:    sc.artName,
		WeatherOK:  sc.report != nil,
		Reminders:  len(sc.reminders),
	}, nil
}

func (c *Compositor) gather(ctx context.Context, start time.Time) scene {
	sc := scene{now: start.In(c.settings.Location)}

	if c.deps.Weather != nil {
		r, err := c.deps.Weather.Fetch(ctx)
		if err != nil {
			c.logger.Warn("dashboard: weather unavailable", slog.String("error", err.Error()))
		} else {
			sc.report = r
		}
	}

	if c.deps.Reminders != nil {
		list, err := c.deps.Reminders.Reminders(ctx)
		if err != nil {
			c.logger.Warn("dashboard: reminders unavailable", slog.String("error", err.Error()))
		}
		sc.reminders = list
	}

	if c.deps.Artwork != nil {
		if pick, ok := c.deps.Artwork.Next(); ok {
			r, _ := c.layout.Zone(layout.Artwork)
			opts := c.settings.Reduce
			opts.Width, opts.Height = r.Dx(), r.Dy()
			img, err := eink.ReduceFile(pick.Abs, opts)
			if err != nil {
				c.logger.Warn("dashboard: artwork reduction failed",
					slog.String("path", pick.File.Path),
					slog.String("error", err.Error()))
			} else {
				sc.art, sc.artName = img, pick.File.Path
			}
		}
	}
	return sc
}

func (c *Compositor) drawZone(dst *image.Gray, fc *fonts.Cascade, z layout.Zone, sc scene) {
	switch z.Name {
	case layout.Time:
		drawTime(dst, z.Rect, fc, sc.now, c.settings.Format24h, c.settings.RefreshMinutes)
	case layout.Weather:
		drawWeather(dst, z.Rect, fc, sc.report, c.settings.City)
	case layout.Calendar:
		drawCalendar(dst, z.Rect, fc, sc.now)
	case layout.Artwork:
		drawArtwork(dst, z.Rect, fc, sc.art)
	case layout.Reminders:
		drawReminders(dst, z.Rect, fc, sc.reminders, sc.now)
	}
}
