package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hey-codes/paperterm/internal/checksum"
	"github.com/hey-codes/paperterm/internal/history"
	"github.com/hey-codes/paperterm/internal/layout"
	"github.com/hey-codes/paperterm/internal/models"
	"github.com/hey-codes/paperterm/internal/storage"
)

// Render triggers recorded with each result.
const (
	TriggerCLI      = "cli"
	TriggerSchedule = "schedule"
	TriggerWatch    = "watch"
	TriggerAPI      = "api"
	TriggerMCP      = "mcp"
)

// Listener is called after every successful render, outside the render
// lock.
type Listener func(*Result)

// ServiceConfig wires the optional collaborators of a Service.
type ServiceConfig struct {
	OutputPath string           // written atomically after each render; empty to skip
	Recorder   history.Recorder // nil to skip history
	Logger     *slog.Logger
}

// Service owns a Compositor. Renders are serialized, so the rotation state
// file is never raced within one process.
type Service struct {
	comp     atomic.Pointer[Compositor]
	output   string
	recorder history.Recorder
	logger   *slog.Logger

	renderMu sync.Mutex

	mu        sync.RWMutex
	latest    *Result
	listeners []Listener
}

// NewService creates a new dashboard service.
func NewService(comp *Compositor, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{output: cfg.OutputPath, recorder: cfg.Recorder, logger: logger}
	s.comp.Store(comp)
	return s
}

// Subscribe registers fn for render notifications.
func (s *Service) Subscribe(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// SetCompositor replaces the compositor used by subsequent renders. A
// render in progress finishes with the old one.
func (s *Service) SetCompositor(comp *Compositor) {
	s.comp.Store(comp)
}

// Layout returns the zone layout of the current compositor.
func (s *Service) Layout() *layout.Layout {
	return s.comp.Load().Layout()
}

// Latest returns the most recent result, if any.
func (s *Service) Latest() (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Render draws a dashboard, persists it and notifies listeners. Output and
// history failures are logged; only a compositor error is returned.
func (s *Service) Render(ctx context.Context, trigger string) (*Result, error) {
	s.renderMu.Lock()
	res, err := s.comp.Load().Render(ctx)
	if err != nil {
		s.renderMu.Unlock()
		s.logger.Error("dashboard: render failed", slog.String("trigger", trigger), slog.String("error", err.Error()))
		return nil, err
	}
	res.Trigger = trigger

	if s.output != "" {
		if err := storage.WriteFile(s.output, res.PNG); err != nil {
			s.logger.Error("dashboard: write output failed", slog.String("path", s.output), slog.String("error", err.Error()))
		}
	}
	if s.recorder != nil {
		if _, err := s.recorder.Record(context.WithoutCancel(ctx), toRecord(res)); err != nil {
			s.logger.Warn("dashboard: record history failed", slog.String("error", err.Error()))
		}
	}

	s.mu.Lock()
	s.latest = res
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	s.renderMu.Unlock()

	s.logger.Info("dashboard: rendered",
		slog.String("trigger", trigger),
		slog.String("checksum", checksum.Short(res.Checksum)),
		slog.Duration("duration", res.Duration),
		slog.String("artwork", res.Artwork),
		slog.Bool("weather", res.WeatherOK),
		slog.Int("reminders", res.Reminders))

	for _, fn := range listeners {
		fn(res)
	}
	return res, nil
}

func toRecord(r *Result) models.RenderRecord {
	return models.RenderRecord{
		RenderedAt: r.RenderedAt,
		Duration:   r.Duration,
		Checksum:   r.Checksum,
		Artwork:    r.Artwork,
		WeatherOK:  r.WeatherOK,
		Reminders:  r.Reminders,
		Trigger:    r.Trigger,
	}
}
