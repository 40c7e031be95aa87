package glyphs

import (
	"fmt"
	"image"
)

// TimeResult describes a drawn clock.
type TimeResult struct {
	Width    int
	Text     string // "HH:MM" as displayed
	Meridiem string // "AM", "PM", or "" in 24-hour mode
}

// TimeWidth is the width of a drawn "HH:MM": four digits, the gap after
// each hour digit but the last, the colon, and the gap between minutes.
func TimeWidth() int {
	return 4*DigitWidth + 2*DigitGap + ColonWidth
}

// Clock formats hour and minute for display. In 12-hour mode hour 0 shows
// as 12 AM and hour 12 as 12 PM. Out-of-range values wrap.
func Clock(hour, minute int, twelveHour bool) (text, meridiem string) {
	hour = ((hour % 24) + 24) % 24
	minute = ((minute % 60) + 60) % 60
	display := hour
	if twelveHour {
		switch {
		case hour == 0:
			display, meridiem = 12, "AM"
		case hour < 12:
			meridiem = "AM"
		case hour == 12:
			meridiem = "PM"
		default:
			display, meridiem = hour-12, "PM"
		}
	}
	return fmt.Sprintf("%02d:%02d", display, minute), meridiem
}

// DrawTime draws HH:MM in block digits with the top-left corner at (x, y).
func DrawTime(dst *image.Gray, x, y, hour, minute int, twelveHour bool, ink uint8) TimeResult {
	text, meridiem := Clock(hour, minute, twelveHour)

	cur := x
	for i, ch := range text {
		if ch == ':' {
			cur += DrawColon(dst, cur, y, ink)
			continue
		}
		w, _ := DrawDigit(dst, int(ch-'0'), cur, y, ink)
		cur += w
		// A gap follows the first digit of each pair only.
		if i == 0 || i == 3 {
			cur += DigitGap
		}
	}
	return TimeResult{Width: cur - x, Text: text, Meridiem: meridiem}
}
