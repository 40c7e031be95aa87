package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hey-codes/paperterm/internal/control"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *control.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/status", h.Status)
	r.Post("/render", h.Render)

	r.Get("/reminders", h.ListReminders)
	r.Post("/reminders", h.AddReminder)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// Mount attaches the unauthenticated endpoints the e-reader polls and the
// API subrouter under /api.
func Mount(root chi.Router, svc *control.Service, api chi.Router) {
	h := NewHandler(svc)
	root.Get("/health/live", h.Live)
	root.Get("/health/ready", h.Ready)
	root.Get("/dashboard.png", h.DashboardPNG)
	root.Mount("/api", api)
}
