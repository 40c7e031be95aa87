package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hey-codes/paperterm/internal/control"
	"github.com/hey-codes/paperterm/internal/dashboard"
	"github.com/hey-codes/paperterm/internal/reminders"
	"github.com/hey-codes/paperterm/internal/testutil"
)

type testEnv struct {
	svc       *control.Service
	router    http.Handler
	reminders string
}

// newTestEnv builds the full route tree over a real compositor and a temp
// SQLite database. An empty token disables auth.
func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	comp, err := dashboard.New(dashboard.DefaultSettings(), dashboard.Deps{})
	if err != nil {
		t.Fatalf("dashboard.New: %v", err)
	}
	db := testutil.TestDB(t)
	dash := dashboard.NewService(comp, dashboard.ServiceConfig{Recorder: db})
	path := filepath.Join(t.TempDir(), "reminders.txt")
	svc := control.NewService(control.Config{
		Renderer:  dash,
		History:   db,
		Reminders: reminders.File{Path: path, Max: 6},
	})

	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	root := chi.NewRouter()
	Mount(root, svc, NewRouter(svc, token != "", token, sseHandler))
	return &testEnv{svc: svc, router: root, reminders: path}
}

func (e *testEnv) do(t *testing.T, method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t, "secret")
	if w := env.do(t, http.MethodGet, "/health/live", nil, nil); w.Code != http.StatusOK {
		t.Errorf("live = %d", w.Code)
	}
}

func TestDashboardPNG_UnavailableBeforeFirstRender(t *testing.T) {
	env := newTestEnv(t, "")
	w := env.do(t, http.MethodGet, "/dashboard.png", nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/health/ready", nil, nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready = %d, want 503", w.Code)
	}
}

func TestRenderThenServePNG(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodPost, "/api/render", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("render = %d, body = %s", w.Code, w.Body.String())
	}
	var res dashboard.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Trigger != dashboard.TriggerAPI || res.Checksum == "" {
		t.Errorf("result = %+v", res)
	}

	w = env.do(t, http.MethodGet, "/dashboard.png", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("png = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
	etag := w.Header().Get("ETag")
	if etag != `"`+res.Checksum+`"` {
		t.Errorf("ETag = %q", etag)
	}

	w = env.do(t, http.MethodGet, "/dashboard.png", nil, map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified || w.Body.Len() != 0 {
		t.Errorf("conditional get = %d with %d bytes", w.Code, w.Body.Len())
	}
	w = env.do(t, http.MethodGet, "/dashboard.png", nil, map[string]string{"If-None-Match": `"stale"`})
	if w.Code != http.StatusOK {
		t.Errorf("stale etag = %d, want 200", w.Code)
	}
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(t, http.MethodPost, "/api/render", nil, nil)

	w := env.do(t, http.MethodGet, "/api/status?recent=5", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var st control.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Renders != 1 || len(st.Recent) != 1 || st.Latest == nil || len(st.Zones) != 5 {
		t.Errorf("status = %+v", st)
	}

	if w := env.do(t, http.MethodGet, "/api/status?recent=-1", nil, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad recent = %d, want 400", w.Code)
	}
}

func TestReminders_AddAndList(t *testing.T) {
	env := newTestEnv(t, "")

	body, _ := json.Marshal(AddReminderRequest{Text: "Pick up prescription", Priority: "high"})
	w := env.do(t, http.MethodPost, "/api/reminders", body, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("add = %d, body = %s", w.Code, w.Body.String())
	}

	data, err := os.ReadFile(env.reminders)
	if err != nil || string(data) != "[!] Pick up prescription\n" {
		t.Errorf("file = %q, %v", data, err)
	}

	w = env.do(t, http.MethodGet, "/api/reminders", nil, nil)
	var resp ReminderListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Reminders) != 1 || resp.Reminders[0].Priority != reminders.High {
		t.Errorf("reminders = %+v", resp.Reminders)
	}
}

func TestAddReminder_BadRequests(t *testing.T) {
	env := newTestEnv(t, "")
	for name, body := range map[string][]byte{
		"invalid json":     []byte("{"),
		"empty text":       []byte(`{"text":"  "}`),
		"unknown priority": []byte(`{"text":"x","priority":"urgent"}`),
	} {
		if w := env.do(t, http.MethodPost, "/api/reminders", body, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t, "secret123")
	cases := []struct {
		name   string
		target string
		header map[string]string
		want   int
	}{
		{"missing token", "/api/status", nil, http.StatusUnauthorized},
		{"wrong token", "/api/status", map[string]string{"Authorization": "Bearer wrong"}, http.StatusUnauthorized},
		{"wrong scheme", "/api/status", map[string]string{"Authorization": "Basic secret123"}, http.StatusUnauthorized},
		{"valid token", "/api/status", map[string]string{"Authorization": "Bearer secret123"}, http.StatusOK},
		{"sse protected", "/api/events", nil, http.StatusUnauthorized},
		{"sse valid", "/api/events", map[string]string{"Authorization": "Bearer secret123"}, http.StatusOK},
		{"png is public", "/dashboard.png", nil, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := env.do(t, http.MethodGet, tc.target, nil, tc.header); w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	env := newTestEnv(t, "")
	if w := env.do(t, http.MethodGet, "/api/reminders", nil, nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}
