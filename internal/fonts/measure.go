package fonts

import (
	"unicode/utf8"

	"golang.org/x/image/font"
)

const ellipsis = "..."

// Measure returns the advance width of s and the line height of face in
// pixels.
func Measure(face font.Face, s string) (w, h int) {
	m := face.Metrics()
	return font.MeasureString(face, s).Ceil(), (m.Ascent + m.Descent).Ceil()
}

// Ascent returns the distance from the top of a line to its baseline.
func Ascent(face font.Face) int {
	return face.Metrics().Ascent.Ceil()
}

// Truncate shortens s so that it fits into maxWidth pixels, appending an
// ellipsis when characters were removed. If not even the ellipsis fits, an
// empty string is returned.
func Truncate(face font.Face, s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if w, _ := Measure(face, s); w <= maxWidth {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n >= 0; n-- {
		candidate := string(runes[:n]) + ellipsis
		if w, _ := Measure(face, candidate); w <= maxWidth {
			return candidate
		}
	}
	return ""
}

// TruncateChars caps s at max runes, replacing the tail with an ellipsis.
func TruncateChars(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:max-len(ellipsis)]) + ellipsis
}
