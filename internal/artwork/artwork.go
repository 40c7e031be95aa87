// Package artwork lists artwork files, picks one per render through the
// persisted rotation cursor, and draws the placeholder panel shown when no
// artwork is available.
package artwork

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/hey-codes/paperterm/internal/models"
	"github.com/hey-codes/paperterm/internal/rotation"
	"github.com/hey-codes/paperterm/internal/storage"
)

// Catalog lists the artwork under a storage root, optionally limited to
// category subdirectories.
type Catalog struct {
	store      storage.Provider
	categories []string
}

// NewCatalog returns a catalog over store. An empty categories list means
// every image below the root.
func NewCatalog(store storage.Provider, categories []string) *Catalog {
	return &Catalog{store: store, categories: categories}
}

// Files returns the catalog's images sorted by path.
func (c *Catalog) Files() ([]models.ImageFile, error) {
	if len(c.categories) == 0 {
		files, err := c.store.List("")
		if err != nil {
			return nil, fmt.Errorf("artwork: list: %w", err)
		}
		return files, nil
	}

	seen := make(map[string]struct{})
	var out []models.ImageFile
	for _, cat := range c.categories {
		files, err := c.store.List(cat)
		if err != nil {
			return nil, fmt.Errorf("artwork: list category %q: %w", cat, err)
		}
		for _, f := range files {
			if _, dup := seen[f.Path]; dup {
				continue
			}
			seen[f.Path] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Pick is a selected artwork file.
type Pick struct {
	File models.ImageFile
	Abs  string // absolute file name
}

// Selector rotates through a catalog.
type Selector struct {
	catalog  *Catalog
	store    storage.Provider
	cursor   *rotation.Cursor
	interval int
	logger   *slog.Logger
}

// NewSelector returns a selector that moves to the next file every
// interval selections.
func NewSelector(catalog *Catalog, store storage.Provider, cursor *rotation.Cursor, interval int, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Selector{catalog: catalog, store: store, cursor: cursor, interval: interval, logger: logger}
}

// Next advances the rotation and returns the selected file. ok is false
// when the catalog is empty or cannot be listed.
func (s *Selector) Next() (Pick, bool) {
	files, err := s.catalog.Files()
	if err != nil {
		s.logger.Warn("artwork: listing failed", slog.String("error", err.Error()))
		return Pick{}, false
	}
	idx, ok := s.cursor.Advance(len(files), s.interval)
	if !ok {
		s.logger.Debug("artwork: catalog empty")
		return Pick{}, false
	}
	f := files[idx]
	abs, err := s.store.Abs(f.Path)
	if err != nil {
		s.logger.Warn("artwork: resolve failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		return Pick{}, false
	}
	s.logger.Debug("artwork: selected", slog.String("path", f.Path), slog.Int("index", idx), slog.Int("of", len(files)))
	return Pick{File: f, Abs: abs}, true
}
