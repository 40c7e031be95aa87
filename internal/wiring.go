package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hey-codes/paperterm/internal/artwork"
	"github.com/hey-codes/paperterm/internal/control"
	"github.com/hey-codes/paperterm/internal/dashboard"
	"github.com/hey-codes/paperterm/internal/history"
	"github.com/hey-codes/paperterm/internal/reminders"
	"github.com/hey-codes/paperterm/internal/rotation"
	"github.com/hey-codes/paperterm/internal/storage"
	"github.com/hey-codes/paperterm/internal/weather"
)

// components are the long-lived objects shared by every command.
type components struct {
	cfg     *Config
	logger  *slog.Logger
	db      *history.DB
	dash    *dashboard.Service
	control *control.Service
	art     *storage.FS // nil when artwork is disabled or its directory is missing
	catalog *artwork.Catalog
}

func (c *components) Close() error {
	return c.db.Close()
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// build opens the history database and wires the dashboard service.
func build(app *application) (*components, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("output_path", cfg.Output.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("timezone", cfg.Time.Timezone),
		slog.Bool("weather", cfg.Weather.Enabled),
		slog.Bool("artwork", cfg.Artwork.Enabled),
		slog.Bool("reminders", cfg.Reminders.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := history.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}

	c := &components{cfg: cfg, logger: logger, db: db}
	c.art, c.catalog = openArtwork(cfg, logger)
	comp, err := c.compositor(cfg, c.art, c.catalog)
	if err != nil {
		db.Close()
		return nil, err
	}

	c.dash = dashboard.NewService(comp, dashboard.ServiceConfig{
		OutputPath: cfg.Output.Path,
		Recorder:   db,
		Logger:     logger,
	})

	var remFile reminders.File
	if cfg.Reminders.Enabled {
		remFile = reminders.File{Path: cfg.Reminders.File, Max: cfg.Reminders.MaxItems}
	}
	c.control = control.NewService(control.Config{
		Renderer:  c.dash,
		History:   db,
		Reminders: remFile,
	})
	return c, nil
}

// openArtwork opens the artwork directory. Both results are nil when
// artwork is disabled or the directory is unusable.
func openArtwork(cfg *Config, logger *slog.Logger) (*storage.FS, *artwork.Catalog) {
	if !cfg.Artwork.Enabled {
		return nil, nil
	}
	store, err := storage.NewFS(cfg.Artwork.Dir)
	if err != nil {
		logger.Warn("artwork directory unavailable, using placeholder",
			slog.String("dir", cfg.Artwork.Dir),
			slog.String("error", err.Error()))
		return nil, nil
	}
	return store, artwork.NewCatalog(store, cfg.Artwork.Categories)
}

// compositor builds a compositor and its data sources from cfg. A nil art
// store leaves the artwork zone on its placeholder.
func (c *components) compositor(cfg *Config, art *storage.FS, catalog *artwork.Catalog) (*dashboard.Compositor, error) {
	logger := c.logger
	deps := dashboard.Deps{Logger: logger}

	if cfg.Weather.Enabled {
		q := cfg.Weather.Query()
		live := weather.NewClient(q,
			weather.WithBaseURL(cfg.Weather.BaseURL),
			weather.WithTimeout(cfg.Weather.Timeout))
		deps.Weather = weather.NewCached(live, c.db, q.Key(), cfg.Weather.CacheTTL, logger)
	}

	if cfg.Reminders.Enabled {
		deps.Reminders = reminders.File{Path: cfg.Reminders.File, Max: cfg.Reminders.MaxItems}
	}

	if art != nil {
		cursor := rotation.NewCursor(storage.Local{}, cfg.Artwork.StateFile, logger)
		deps.Artwork = artwork.NewSelector(catalog, art, cursor, cfg.Artwork.RotationInterval, logger)
	}

	comp, err := dashboard.New(dashboard.Settings{
		Layout:         cfg.LayoutSpec(),
		Location:       cfg.Time.Location(),
		Format24h:      cfg.Time.Format24h,
		RefreshMinutes: cfg.RefreshRate,
		City:           cfg.Weather.City,
		Fonts:          cfg.Fonts.Sources(),
		Reduce:         cfg.Artwork.ReduceOptions(),
	}, deps)
	if err != nil {
		return nil, fmt.Errorf("init compositor: %w", err)
	}
	return comp, nil
}
