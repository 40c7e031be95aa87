// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hey-codes/paperterm/internal/api"
	"github.com/hey-codes/paperterm/internal/checksum"
	"github.com/hey-codes/paperterm/internal/dashboard"
	"github.com/hey-codes/paperterm/internal/mcpserver"
	"github.com/hey-codes/paperterm/internal/sse"
	"github.com/hey-codes/paperterm/internal/storage"
	"github.com/hey-codes/paperterm/internal/watcher"
	pkgconfig "github.com/hey-codes/paperterm/pkg/config"
)

func apply(opts []Option) *application {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// RenderOnce renders a single dashboard to the configured output path.
func RenderOnce(ctx context.Context, opts ...Option) (*dashboard.Result, error) {
	c, err := build(apply(opts))
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.dash.Render(ctx, dashboard.TriggerCLI)
}

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	app := apply(opts)
	if app.logOutput == nil {
		app.logOutput = os.Stderr
	}
	c, err := build(app)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := mcpserver.New(mcpserver.Config{
		Control: c.control,
		Catalog: c.catalog,
		Artwork: artworkStore(c.art),
		Version: app.version,
	})
	c.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

// artworkStore avoids handing a typed nil *storage.FS to an interface.
func artworkStore(fs *storage.FS) mcpserver.ArtworkStore {
	if fs == nil {
		return nil
	}
	return fs
}

// renderEvent is the SSE payload for a finished render.
type renderEvent struct {
	Checksum   string    `json:"checksum"`
	ETag       string    `json:"etag"`
	RenderedAt time.Time `json:"rendered_at"`
	Trigger    string    `json:"trigger"`
	Artwork    string    `json:"artwork,omitempty"`
	WeatherOK  bool      `json:"weather_ok"`
	Reminders  int       `json:"reminders"`
}

// Run starts the dashboard server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := apply(opts)
	c, err := build(app)
	if err != nil {
		return err
	}
	defer c.Close()

	cfg := c.cfg
	logger := c.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	c.dash.Subscribe(func(r *dashboard.Result) {
		broker.PublishRender(renderEvent{
			Checksum:   r.Checksum,
			ETag:       checksum.ETag(r.Checksum),
			RenderedAt: r.RenderedAt,
			Trigger:    r.Trigger,
			Artwork:    r.Artwork,
			WeatherOK:  r.WeatherOK,
			Reminders:  r.Reminders,
		})
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	apiRouter := api.NewRouter(c.control, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)
	api.Mount(r, c.control, apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Renders requested by the watcher are coalesced: one pending request
	// is enough to pick up every change made before it runs.
	requests := make(chan string, 1)
	request := func(trigger string) {
		select {
		case requests <- trigger:
		default:
		}
	}

	// Scheduler: initial render, then one per refresh interval.
	g.Go(func() error {
		interval := time.Duration(cfg.RefreshRate) * time.Minute
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		render := func(trigger string) {
			if _, err := c.dash.Render(gCtx, trigger); err != nil {
				logger.Error("render failed", slog.String("trigger", trigger), slog.String("error", err.Error()))
			}
		}
		render(dashboard.TriggerSchedule)
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				render(dashboard.TriggerSchedule)
			case trigger := <-requests:
				render(trigger)
			}
		}
	})

	if cfg.App.Watch {
		w := watcher.New(c.watchTargets(app.configPath), watcher.DefaultDebounce, logger)
		g.Go(func() error {
			return w.Run(gCtx, func(source, path string) {
				broker.PublishChange(source, path)
				if source == watcher.SourceConfig {
					c.reload(app.configPath)
				}
				request(dashboard.TriggerWatch)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup context so the scheduler and watcher
// stop once the HTTP server has shut down.
var errShutdown = errors.New("shutdown")

func (c *components) watchTargets(configPath string) []watcher.Target {
	var targets []watcher.Target
	if c.cfg.Reminders.Enabled {
		targets = append(targets, watcher.Target{Source: watcher.SourceReminders, Path: c.cfg.Reminders.File})
	}
	if c.art != nil {
		targets = append(targets, watcher.Target{
			Source: watcher.SourceArtwork,
			Path:   c.art.Root(),
			Dir:    true,
			Match:  storage.IsImage,
		})
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			targets = append(targets, watcher.Target{Source: watcher.SourceConfig, Path: configPath})
		}
	}
	return targets
}

// reload re-reads the config file and swaps in a new compositor, which
// also moves /api/status to the new zone layout. HTTP, auth, SQLite,
// reminders-file and watcher-target changes still need a restart.
func (c *components) reload(path string) {
	next := NewDefaultConfig()
	if err := pkgconfig.Load(path, next); err != nil {
		c.logger.Warn("config reload rejected, keeping current settings", slog.String("error", err.Error()))
		return
	}
	art, catalog := openArtwork(next, c.logger)
	comp, err := c.compositor(next, art, catalog)
	if err != nil {
		c.logger.Warn("config reload rejected, keeping current settings", slog.String("error", err.Error()))
		return
	}
	c.dash.SetCompositor(comp)
	c.logger.Info("Configuration reloaded", slog.String("path", path))
}
