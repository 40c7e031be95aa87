package dashboard

import (
	"fmt"
	"image"
	"strings"
	"time"

	"golang.org/x/image/font"

	"github.com/hey-codes/paperterm/internal/artwork"
	"github.com/hey-codes/paperterm/internal/canvas"
	"github.com/hey-codes/paperterm/internal/fonts"
	"github.com/hey-codes/paperterm/internal/glyphs"
	"github.com/hey-codes/paperterm/internal/layout"
	"github.com/hey-codes/paperterm/internal/reminders"
	"github.com/hey-codes/paperterm/internal/weather"
)

// Every zone renderer keeps its ink inside the rectangle it is given; text
// is truncated to fit rather than clipped.

const (
	zonePad        = 10
	weatherSpacing = 20
	iconLineGap    = 2

	reminderColumns   = 2
	reminderPerColumn = 3
	reminderLineH     = 50
	reminderItemsY    = 45
	reminderMaxChars  = 35
	reminderColumnX   = 588
	reminderColumnW   = 558
)

// textIn draws s at (x, y) truncated to end before r.Max.X-zonePad. Lines
// that would start left of r or cross its bottom are skipped.
func textIn(dst *image.Gray, face font.Face, r image.Rectangle, x, y int, s string, v uint8) {
	_, h := fonts.Measure(face, s)
	if x < r.Min.X || y < r.Min.Y || y+h > r.Max.Y {
		return
	}
	s = fonts.Truncate(face, s, r.Max.X-zonePad-x)
	if s == "" {
		return
	}
	canvas.Text(dst, face, x, y, s, v)
}

// centeredIn draws s horizontally centered in r with its top at y and
// returns the y just below the line.
func centeredIn(dst *image.Gray, face font.Face, r image.Rectangle, y int, s string, v uint8) int {
	s = fonts.Truncate(face, s, r.Dx()-2*zonePad)
	w, h := fonts.Measure(face, s)
	if s != "" && y >= r.Min.Y && y+h <= r.Max.Y {
		canvas.Text(dst, face, r.Min.X+(r.Dx()-w)/2, y, s, v)
	}
	return y + h
}

func drawTime(dst *image.Gray, r image.Rectangle, fc *fonts.Cascade, now time.Time, format24h bool, refreshMinutes int) {
	x, y := r.Min.X+layout.ClockInset.X, r.Min.Y+layout.ClockInset.Y
	res := glyphs.TimeResult{Width: glyphs.TimeWidth()}
	res.Text, res.Meridiem = glyphs.Clock(now.Hour(), now.Minute(), !format24h)
	if clock := layout.MinTimeSize(); r.Dx() >= clock.X && r.Dy() >= clock.Y {
		res = glyphs.DrawTime(dst, x, y, now.Hour(), now.Minute(), !format24h, canvas.Black)
	}

	if res.Meridiem != "" {
		textIn(dst, fc.Resolve(fonts.Bold, 48), r, x+res.Width+30, y+30, res.Meridiem, canvas.Black)
	}
	textIn(dst, fc.Resolve(fonts.Regular, 36), r, x+res.Width+150, y+35, now.Format("Monday, Jan 2"), canvas.Dark)

	if refreshMinutes > 0 {
		face := fc.Resolve(fonts.Regular, 24)
		s := fmt.Sprintf("every %dmin", refreshMinutes)
		w, _ := fonts.Measure(face, s)
		textIn(dst, face, r, r.Max.X-w-20, r.Max.Y-50, s, canvas.Medium)
	}
}

func drawWeather(dst *image.Gray, r image.Rectangle, fc *fonts.Cascade, rep *weather.Report, city string) {
	top := r.Min.Y + zonePad
	if city != "" {
		top = centeredIn(dst, fc.Resolve(fonts.Regular, 24), r, top, city, canvas.Dark) + weatherSpacing
	}

	if rep == nil {
		face := fc.Resolve(fonts.Regular, 36)
		_, h := fonts.Measure(face, "Weather")
		y := r.Min.Y + (r.Dy()-2*h)/2
		y = centeredIn(dst, face, r, y, "Weather", canvas.Medium)
		centeredIn(dst, face, r, y, "unavailable", canvas.Medium)
		return
	}

	mono := fc.Resolve(fonts.Mono, 16)
	large := fc.Resolve(fonts.Bold, 72)
	medium := fc.Resolve(fonts.Regular, 36)
	small := fc.Resolve(fonts.Regular, 24)
	tiny := fc.Resolve(fonts.Mono, 18)

	high, low := rep.High, rep.Low
	if !rep.HasRange {
		high, low = rep.Current.Temperature, rep.Current.Temperature
	}
	icon := weather.Art(weather.IconFor(rep.Current.Description))
	lines := []struct {
		face font.Face
		text string
		ink  uint8
		gap  int
	}{
		{large, fmt.Sprintf("%d%s", rep.Current.Temperature, rep.Unit), canvas.Black, weatherSpacing},
		{medium, rep.Current.Description, canvas.Black, weatherSpacing},
		{small, fmt.Sprintf("H:%d%s L:%d%s", high, rep.Unit, low, rep.Unit), canvas.Medium, weatherSpacing},
		{small, fmt.Sprintf("Humidity %d%%", rep.Current.Humidity), canvas.Dark, iconLineGap},
		{small, fmt.Sprintf("Wind %d mph", rep.Current.WindSpeed), canvas.Dark, weatherSpacing},
	}
	hours := rep.Hourly
	if len(hours) > 6 {
		hours = hours[:6]
	}

	_, monoH := fonts.Measure(mono, "M")
	_, tinyH := fonts.Measure(tiny, "M")
	total := len(icon)*(monoH+iconLineGap) + weatherSpacing
	for _, l := range lines {
		_, h := fonts.Measure(l.face, l.text)
		total += h + l.gap
	}
	total += len(hours) * (tinyH + iconLineGap)

	y := max(r.Min.Y+(r.Dy()-total)/2, top)
	iconW := 0
	for _, l := range icon {
		w, _ := fonts.Measure(mono, l)
		iconW = max(iconW, w)
	}
	iconX := r.Min.X + (r.Dx()-iconW)/2
	for _, l := range icon {
		textIn(dst, mono, r, max(iconX, r.Min.X+zonePad), y, strings.TrimRight(l, " "), canvas.Black)
		y += monoH + iconLineGap
	}
	y += weatherSpacing

	for _, l := range lines {
		y = centeredIn(dst, l.face, r, y, l.text, l.ink) + l.gap
	}
	for _, h := range hours {
		s := fmt.Sprintf("%-5s %3d%s %s", h.Label, h.Temperature, rep.Unit, h.Description)
		y = centeredIn(dst, tiny, r, y, s, canvas.Dark) + iconLineGap
	}
}

func drawCalendar(dst *image.Gray, r image.Rectangle, fc *fonts.Cascade, now time.Time) {
	glyphs.DrawCalendar(dst, r, glyphs.CalendarOptions{
		Year:   now.Year(),
		Month:  now.Month(),
		Today:  now.Day(),
		Header: fc.Resolve(fonts.Mono, 28),
		Days:   fc.Resolve(fonts.Mono, 32),
		Ink:    canvas.Black,
		Paper:  canvas.White,
	})
}

func drawArtwork(dst *image.Gray, r image.Rectangle, fc *fonts.Cascade, art *image.Gray) {
	if art == nil || art.Bounds().Size() != r.Size() {
		art = artwork.Placeholder(r.Dx(), r.Dy(), fc.Resolve(fonts.Regular, 28), "No artwork available")
	}
	canvas.Paste(dst, art, r.Min)
}

func reminderInk(rem reminders.Reminder) uint8 {
	switch {
	case rem.Status == reminders.Done:
		return canvas.Medium
	case rem.Priority == reminders.High:
		return canvas.Black
	default:
		return canvas.Dark
	}
}

func drawReminders(dst *image.Gray, r image.Rectangle, fc *fonts.Cascade, list []reminders.Reminder, now time.Time) {
	canvas.Outline(dst, r, 2, canvas.Dark)
	title := fc.Resolve(fonts.Mono, 16)
	centeredIn(dst, title, r, r.Min.Y+zonePad, "[ REMINDERS ]", canvas.Black)

	face := fc.Resolve(fonts.Mono, 28)
	itemsY := r.Min.Y + reminderItemsY
	for col := 0; col < reminderColumns; col++ {
		x := r.Min.X + 20 + col*reminderColumnX
		colRect := image.Rect(x, r.Min.Y, min(x+reminderColumnW, r.Max.X), r.Max.Y)
		for row := 0; row < reminderPerColumn; row++ {
			i := col*reminderPerColumn + row
			if i >= len(list) {
				break
			}
			text := fonts.TruncateChars(list[i].Prefix()+" "+list[i].Text, reminderMaxChars)
			textIn(dst, face, colRect, x, itemsY+row*reminderLineH, text, reminderInk(list[i]))
		}
	}
	if len(list) == 0 {
		textIn(dst, face, r, r.Min.X+20, itemsY, "[ ] No reminders set", canvas.Medium)
	}

	ts := fc.Resolve(fonts.Mono, 18)
	stamp := now.Format("15:04")
	w, _ := fonts.Measure(ts, stamp)
	textIn(dst, ts, r, r.Max.X-w-zonePad, r.Max.Y-40, stamp, canvas.Light)
}
