// Package fonts resolves logical text styles to rasterizing font faces.
//
// A Cascade tries an ordered list of font files per style and falls back to
// the Go fonts embedded in golang.org/x/image, so Resolve always returns a
// usable face. Faces are memoized per (style, size) for the lifetime of the
// cascade, which is meant to be one render.
package fonts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Style is a logical font family.
type Style string

// Supported styles.
const (
	Regular Style = "regular"
	Bold    Style = "bold"
	Mono    Style = "mono"
)

// Sources maps each style to its candidate font files, most preferred first.
type Sources map[Style][]string

// DefaultDirs are searched in order for the default font files.
var DefaultDirs = []string{
	"fonts/",
	"/usr/share/fonts/truetype/dejavu/",
	"/System/Library/Fonts/",
	"/Library/Fonts/",
}

// DefaultFiles lists preferred file names per style.
var DefaultFiles = map[Style][]string{
	Regular: {"DejaVuSans.ttf", "Helvetica.ttf", "Arial.ttf"},
	Bold:    {"DejaVuSans-Bold.ttf", "Helvetica-Bold.ttf", "Arial Bold.ttf"},
	Mono:    {"DejaVuSansMono.ttf", "Menlo.ttc", "Courier New.ttf"},
}

// Candidates expands dirs × files into one ordered path list. Directories
// take precedence: every file is tried in the first directory before the
// second directory is considered.
func Candidates(dirs, files []string) []string {
	out := make([]string, 0, len(dirs)*len(files))
	for _, d := range dirs {
		for _, f := range files {
			out = append(out, filepath.Join(d, f))
		}
	}
	return out
}

// DefaultSources builds Sources from dirs and DefaultFiles. A nil dirs
// slice means DefaultDirs.
func DefaultSources(dirs []string) Sources {
	if dirs == nil {
		dirs = DefaultDirs
	}
	src := make(Sources, len(DefaultFiles))
	for style, files := range DefaultFiles {
		src[style] = Candidates(dirs, files)
	}
	return src
}

type faceKey struct {
	style Style
	size  int
}

// Cascade resolves and caches font faces. It is not safe for concurrent use.
type Cascade struct {
	sources Sources
	logger  *slog.Logger

	parsed map[Style]*opentype.Font
	faces  map[faceKey]font.Face
}

// NewCascade creates a cascade over sources. A nil logger discards output.
func NewCascade(sources Sources, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cascade{
		sources: sources,
		logger:  logger,
		parsed:  make(map[Style]*opentype.Font),
		faces:   make(map[faceKey]font.Face),
	}
}

// Resolve returns a face for style at size pixels. It never returns nil:
// when no candidate file loads, the embedded Go font for the style is used,
// and if even that fails a fixed 7x13 bitmap face is returned.
func (c *Cascade) Resolve(style Style, size int) font.Face {
	if size <= 0 {
		size = 1
	}
	key := faceKey{style: style, size: size}
	if f, ok := c.faces[key]; ok {
		return f
	}

	face := c.load(style, size)
	c.faces[key] = face
	return face
}

func (c *Cascade) load(style Style, size int) font.Face {
	f, ok := c.parsed[style]
	if !ok {
		f = c.parseFirst(style)
		c.parsed[style] = f
	}
	if f != nil {
		face, err := newFace(f, size)
		if err == nil {
			return face
		}
		c.logger.Warn("fonts: face creation failed",
			slog.String("style", string(style)),
			slog.Int("size", size),
			slog.String("error", err.Error()))
	}
	return basicfont.Face7x13
}

// parseFirst walks the candidate list for style and returns the first font
// that parses, falling back to the embedded Go font.
func (c *Cascade) parseFirst(style Style) *opentype.Font {
	for _, path := range c.sources[style] {
		f, err := parseFile(path)
		if err != nil {
			continue
		}
		c.logger.Debug("fonts: resolved", slog.String("style", string(style)), slog.String("path", path))
		return f
	}

	f, err := opentype.Parse(builtin(style))
	if err != nil {
		c.logger.Warn("fonts: builtin parse failed", slog.String("style", string(style)), slog.String("error", err.Error()))
		return nil
	}
	c.logger.Debug("fonts: using builtin", slog.String("style", string(style)))
	return f
}

// Close releases every cached face. The cascade must not be used afterwards.
func (c *Cascade) Close() error {
	for k, f := range c.faces {
		_ = f.Close()
		delete(c.faces, k)
	}
	return nil
}

func parseFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".ttc" || ext == ".otc" {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("fonts: parse collection %s: %w", path, err)
		}
		return coll.Font(0)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fonts: parse %s: %w", path, err)
	}
	return f, nil
}

func newFace(f *opentype.Font, size int) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func builtin(style Style) []byte {
	switch style {
	case Bold:
		return gobold.TTF
	case Mono:
		return gomono.TTF
	default:
		return goregular.TTF
	}
}
