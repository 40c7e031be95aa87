// Package control is the operation layer shared by the HTTP API and the MCP
// server: trigger renders, report status, read and append reminders.
package control

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hey-codes/paperterm/internal/apperr"
	"github.com/hey-codes/paperterm/internal/dashboard"
	"github.com/hey-codes/paperterm/internal/history"
	"github.com/hey-codes/paperterm/internal/layout"
	"github.com/hey-codes/paperterm/internal/models"
	"github.com/hey-codes/paperterm/internal/reminders"
)

// Renderer is the part of dashboard.Service the control layer needs.
type Renderer interface {
	Render(ctx context.Context, trigger string) (*dashboard.Result, error)
	Latest() (*dashboard.Result, bool)
	Layout() *layout.Layout
}

var _ Renderer = (*dashboard.Service)(nil)

// ZoneInfo describes one zone rectangle.
type ZoneInfo struct {
	Name string `json:"name"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"width"`
	H    int    `json:"height"`
}

// Status is the dashboard state reported to clients.
type Status struct {
	Latest  *dashboard.Result     `json:"latest,omitempty"`
	Renders int                   `json:"renders"`
	Recent  []models.RenderRecord `json:"recent"`
	Zones   []ZoneInfo            `json:"zones,omitempty"`
}

// Config wires a Service.
type Config struct {
	Renderer  Renderer
	History   history.Recorder // optional
	Reminders reminders.File   // empty Path disables reminder operations
}

// Service coordinates renders, history and the reminders file.
type Service struct {
	renderer  Renderer
	history   history.Recorder
	reminders reminders.File
}

// NewService creates a new control service.
func NewService(cfg Config) *Service {
	return &Service{
		renderer:  cfg.Renderer,
		history:   cfg.History,
		reminders: cfg.Reminders,
	}
}

// Render draws a new dashboard now.
func (s *Service) Render(ctx context.Context, trigger string) (*dashboard.Result, error) {
	res, err := s.renderer.Render(ctx, trigger)
	if err != nil {
		return nil, fmt.Errorf("control: render: %w", err)
	}
	return res, nil
}

// Latest returns the most recent render or apperr.ErrUnavailable.
func (s *Service) Latest() (*dashboard.Result, error) {
	res, ok := s.renderer.Latest()
	if !ok {
		return nil, apperr.ErrUnavailable
	}
	return res, nil
}

// Status reports the latest render, the render count and up to recent
// history rows.
func (s *Service) Status(ctx context.Context, recent int) (*Status, error) {
	st := &Status{Recent: []models.RenderRecord{}}
	if res, ok := s.renderer.Latest(); ok {
		st.Latest = res
	}
	if s.history != nil {
		n, err := s.history.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("control: count renders: %w", err)
		}
		st.Renders = n
		if recent > 0 {
			rows, err := s.history.List(ctx, recent)
			if err != nil {
				return nil, fmt.Errorf("control: list renders: %w", err)
			}
			if len(rows) > 0 {
				st.Recent = rows
			}
		}
	}
	if l := s.renderer.Layout(); l != nil {
		for _, z := range l.Zones() {
			st.Zones = append(st.Zones, ZoneInfo{
				Name: string(z.Name),
				X:    z.Rect.Min.X,
				Y:    z.Rect.Min.Y,
				W:    z.Rect.Dx(),
				H:    z.Rect.Dy(),
			})
		}
	}
	return st, nil
}

// ListReminders returns the reminders as the dashboard shows them. A
// missing file yields an empty list.
func (s *Service) ListReminders(ctx context.Context) ([]reminders.Reminder, error) {
	if s.reminders.Path == "" {
		return nil, apperr.ErrUnavailable
	}
	list, err := s.reminders.Reminders(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []reminders.Reminder{}, nil
		}
		return nil, err
	}
	if list == nil {
		list = []reminders.Reminder{}
	}
	return list, nil
}

// ParsePriority maps "high" and "normal" (or empty) to a Priority.
func ParsePriority(s string) (reminders.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(reminders.Normal):
		return reminders.Normal, nil
	case string(reminders.High):
		return reminders.High, nil
	default:
		return "", fmt.Errorf("%w: priority %q", apperr.ErrInvalidInput, s)
	}
}

// AddReminder appends a pending reminder to the file.
func (s *Service) AddReminder(_ context.Context, text, priority string) (reminders.Reminder, error) {
	if s.reminders.Path == "" {
		return reminders.Reminder{}, apperr.ErrUnavailable
	}
	p, err := ParsePriority(priority)
	if err != nil {
		return reminders.Reminder{}, err
	}
	r, err := reminders.Append(s.reminders.Path, text, p)
	if err != nil {
		if errors.Is(err, reminders.ErrEmptyText) {
			return reminders.Reminder{}, fmt.Errorf("%w: text is required", apperr.ErrInvalidInput)
		}
		return reminders.Reminder{}, err
	}
	return r, nil
}
