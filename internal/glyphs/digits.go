// Package glyphs draws the fixed-pattern block digits and the month grid.
package glyphs

import (
	"errors"
	"fmt"
	"image"

	"github.com/hey-codes/paperterm/internal/canvas"
)

// Block digit geometry in pixels.
const (
	Cols        = 5
	Rows        = 7
	CellWidth   = 16
	CellHeight  = 14
	DigitWidth  = Cols * CellWidth // 80
	DigitHeight = 100
	DigitGap    = 20
	ColonWidth  = 20
	dotSize     = CellHeight
)

// ErrInvalidDigit is returned when drawing anything other than 0-9.
var ErrInvalidDigit = errors.New("glyphs: invalid digit")

// Pattern is one digit's cell grid, row-major, true = filled.
type Pattern [Rows][Cols]bool

// DigitPatterns holds the patterns for 0-9.
var DigitPatterns = parsePatterns(digitArt)

var digitArt = [10][Rows]string{
	{ // 0
		".###.",
		"#...#",
		"#...#",
		"#...#",
		"#...#",
		"#...#",
		".###.",
	},
	{ // 1
		"..#..",
		".##..",
		"..#..",
		"..#..",
		"..#..",
		"..#..",
		".###.",
	},
	{ // 2
		".###.",
		"#...#",
		"....#",
		"..##.",
		".#...",
		"#....",
		"#####",
	},
	{ // 3
		".###.",
		"#...#",
		"....#",
		"..##.",
		"....#",
		"#...#",
		".###.",
	},
	{ // 4
		"#...#",
		"#...#",
		"#...#",
		"#####",
		"....#",
		"....#",
		"....#",
	},
	{ // 5
		"#####",
		"#....",
		"#....",
		"####.",
		"....#",
		"....#",
		"####.",
	},
	{ // 6
		".###.",
		"#....",
		"#....",
		"####.",
		"#...#",
		"#...#",
		".###.",
	},
	{ // 7
		"#####",
		"....#",
		"...#.",
		"..#..",
		"..#..",
		"..#..",
		"..#..",
	},
	{ // 8
		".###.",
		"#...#",
		"#...#",
		".###.",
		"#...#",
		"#...#",
		".###.",
	},
	{ // 9
		".###.",
		"#...#",
		"#...#",
		".####",
		"....#",
		"....#",
		".###.",
	},
}

func parsePatterns(art [10][Rows]string) [10]Pattern {
	var out [10]Pattern
	for d, rows := range art {
		for r, line := range rows {
			for c := 0; c < Cols; c++ {
				out[d][r][c] = line[c] == '#'
			}
		}
	}
	return out
}

// DrawDigit draws digit d with its top-left corner at (x, y) and returns the
// width consumed.
func DrawDigit(dst *image.Gray, d, x, y int, ink uint8) (int, error) {
	if d < 0 || d > 9 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDigit, d)
	}
	for r, row := range DigitPatterns[d] {
		for c, on := range row {
			if !on {
				continue
			}
			cx, cy := x+c*CellWidth, y+r*CellHeight
			canvas.Fill(dst, image.Rect(cx, cy, cx+CellWidth, cy+CellHeight), ink)
		}
	}
	return DigitWidth, nil
}

// DrawColon draws the two colon dots (grid rows 2 and 5) centered in a
// ColonWidth-wide slot at x and returns the width consumed.
func DrawColon(dst *image.Gray, x, y int, ink uint8) int {
	dx := x + (ColonWidth-dotSize)/2
	for _, row := range []int{1, 4} {
		dy := y + row*CellHeight + (CellHeight-dotSize)/2
		canvas.Fill(dst, image.Rect(dx, dy, dx+dotSize, dy+dotSize), ink)
	}
	return ColonWidth
}
