package glyphs

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/font"

	"github.com/hey-codes/paperterm/internal/canvas"
	"github.com/hey-codes/paperterm/internal/fonts"
)

// Calendar geometry in pixels.
const (
	calHeaderHeight = 50
	calDOWHeight    = 40
	calBorder       = 2
	cursorPadding   = 8
	calMinCell      = 20
)

// CalendarMinSize is the smallest rectangle DrawCalendar lays out in full:
// the header, the weekday row and six week rows of at least calMinCell.
func CalendarMinSize() image.Point {
	return image.Pt(
		7*calMinCell+2*calBorder,
		calHeaderHeight+calBorder+calDOWHeight+6*calMinCell+calBorder,
	)
}

// Weekdays are the column labels, Sunday first.
var Weekdays = [7]string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// MonthGrid returns the month as 6 Sunday-first weeks. Cells outside the
// month are 0. month is normalized the way time.Date does.
func MonthGrid(year int, month time.Month) [6][7]int {
	var grid [6][7]int
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	for d := 1; d <= DaysIn(first.Year(), first.Month()); d++ {
		i := offset + d - 1
		grid[i/7][i%7] = d
	}
	return grid
}

// DaysIn returns the number of days in month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// CalendarOptions configures DrawCalendar.
type CalendarOptions struct {
	Year   int
	Month  time.Month
	Today  int // day to highlight; 0 or out of range for none
	Header font.Face
	Days   font.Face
	Ink    uint8
	Paper  uint8
}

// DrawCalendar draws a bordered month view filling r: a "MONTH YEAR"
// header, the weekday row and six week rows. Today's cell is drawn
// inverted. It returns the inverted cursor rectangle, if any. A rectangle
// smaller than CalendarMinSize gets the border only, and labels that do
// not fit their cell are left out.
func DrawCalendar(dst *image.Gray, r image.Rectangle, o CalendarOptions) (cursor image.Rectangle, ok bool) {
	inner := r.Inset(calBorder)
	canvas.Outline(dst, r, calBorder, o.Ink)
	if need := CalendarMinSize(); r.Dx() < need.X || r.Dy() < need.Y {
		return image.Rectangle{}, false
	}

	header := image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, r.Min.Y+calHeaderHeight)
	title := fmt.Sprintf("%s %d", strings.ToUpper(o.Month.String()), o.Year)
	title = fonts.Truncate(o.Header, title, header.Dx()-2*cursorPadding)
	canvas.TextFit(dst, o.Header, header, title, o.Ink)

	sepY := r.Min.Y + calHeaderHeight
	canvas.HLine(dst, r.Min.X, r.Max.X, sepY, calBorder, o.Ink)

	colW := inner.Dx() / 7
	dowTop := sepY + calBorder
	for i, label := range Weekdays {
		cell := image.Rect(inner.Min.X+i*colW, dowTop, inner.Min.X+(i+1)*colW, dowTop+calDOWHeight)
		canvas.TextFit(dst, o.Header, cell, label, o.Ink)
	}

	gridTop := dowTop + calDOWHeight
	rowH := (inner.Max.Y - gridTop) / 6
	if rowH <= 0 {
		return image.Rectangle{}, false
	}
	days := DaysIn(o.Year, o.Month)
	grid := MonthGrid(o.Year, o.Month)
	for row, week := range grid {
		for col, day := range week {
			if day == 0 {
				continue
			}
			cell := image.Rect(
				inner.Min.X+col*colW, gridTop+row*rowH,
				inner.Min.X+(col+1)*colW, gridTop+(row+1)*rowH,
			)
			text := strconv.Itoa(day)
			if day != o.Today || o.Today < 1 || o.Today > days {
				canvas.TextFit(dst, o.Days, cell, text, o.Ink)
				continue
			}
			ok = true
			w, h := fonts.Measure(o.Days, text)
			if w > cell.Dx() || h > cell.Dy() {
				cursor = cell
				canvas.Fill(dst, cursor, o.Ink)
				continue
			}
			tx := cell.Min.X + (cell.Dx()-w)/2
			ty := cell.Min.Y + (cell.Dy()-h)/2
			cursor = image.Rect(tx-cursorPadding, ty-cursorPadding, tx+w+cursorPadding, ty+h+cursorPadding).Intersect(inner)
			canvas.Fill(dst, cursor, o.Ink)
			canvas.Text(dst, o.Days, tx, ty, text, o.Paper)
		}
	}
	return cursor, ok
}
