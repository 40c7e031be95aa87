package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hey-codes/paperterm/internal/apperr"
	"github.com/hey-codes/paperterm/internal/checksum"
	"github.com/hey-codes/paperterm/internal/control"
	"github.com/hey-codes/paperterm/internal/dashboard"
)

const defaultRecent = 10

// Handler holds API route handlers.
type Handler struct {
	svc *control.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *control.Service) *Handler {
	return &Handler{svc: svc}
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. The service is ready once a dashboard
// has been rendered.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	if _, err := h.svc.Latest(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DashboardPNG handles GET /dashboard.png.
//
//	@Summary		Latest dashboard image
//	@Tags			dashboard
//	@Produce		png
//	@Param			If-None-Match	header	string	false	"ETag of a cached copy"
//	@Success		200
//	@Success		304
//	@Failure		503	{object}	errResponse
//	@Router			/dashboard.png [get]
func (h *Handler) DashboardPNG(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Latest()
	if err != nil {
		w.Header().Set("Retry-After", "5")
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no dashboard rendered yet"))
		return
	}

	etag := checksum.ETag(res.Checksum)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Last-Modified", res.RenderedAt.UTC().Format(http.TimeFormat))
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PNG)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(res.PNG)
	}
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// Status handles GET /api/status.
//
//	@Summary		Dashboard status and render history
//	@Tags			dashboard
//	@Produce		json
//	@Param			recent	query		int	false	"Number of history rows"
//	@Success		200		{object}	control.Status
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	recent := defaultRecent
	if v := r.URL.Query().Get("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("recent must be a non-negative integer"))
			return
		}
		recent = n
	}
	st, err := h.svc.Status(r.Context(), recent)
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Render handles POST /api/render.
//
//	@Summary		Render the dashboard now
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	dashboard.Result
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Render(r.Context(), dashboard.TriggerAPI)
	if err != nil {
		slog.Error("render failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("render failed"))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListReminders handles GET /api/reminders.
//
//	@Summary		List reminders
//	@Tags			reminders
//	@Produce		json
//	@Success		200	{object}	ReminderListResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reminders [get]
func (h *Handler) ListReminders(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListReminders(r.Context())
	if err != nil {
		writeServiceError(w, "list reminders", err)
		return
	}
	writeJSON(w, http.StatusOK, ReminderListResponse{Reminders: list})
}

// AddReminder handles POST /api/reminders.
//
//	@Summary		Append a reminder
//	@Tags			reminders
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddReminderRequest	true	"Reminder to add"
//	@Success		201		{object}	reminders.Reminder
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reminders [post]
func (h *Handler) AddReminder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req AddReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	rem, err := h.svc.AddReminder(r.Context(), req.Text, req.Priority)
	if err != nil {
		writeServiceError(w, "add reminder", err)
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrUnavailable):
		writeJSON(w, http.StatusNotFound, errorBody("reminders are disabled"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
