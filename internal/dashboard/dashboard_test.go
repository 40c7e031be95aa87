package dashboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hey-codes/paperterm/internal/artwork"
	"github.com/hey-codes/paperterm/internal/canvas"
	"github.com/hey-codes/paperterm/internal/fonts"
	"github.com/hey-codes/paperterm/internal/layout"
	"github.com/hey-codes/paperterm/internal/reminders"
	"github.com/hey-codes/paperterm/internal/rotation"
	"github.com/hey-codes/paperterm/internal/storage"
	"github.com/hey-codes/paperterm/internal/testutil"
	"github.com/hey-codes/paperterm/internal/weather"
)

var fixedNow = time.Date(2026, time.February, 14, 13, 5, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type stubWeather struct {
	r   *weather.Report
	err error
}

func (s stubWeather) Fetch(context.Context) (*weather.Report, error) { return s.r, s.err }

type stubReminders []reminders.Reminder

func (s stubReminders) Reminders(context.Context) ([]reminders.Reminder, error) { return s, nil }

type failingReminders struct{}

func (failingReminders) Reminders(context.Context) ([]reminders.Reminder, error) {
	return nil, os.ErrNotExist
}

func sampleReport() *weather.Report {
	hours := make([]weather.Hour, 12)
	for i := range hours {
		hours[i] = weather.Hour{Label: "11pm", Temperature: 100 + i, Description: "Thunderstorm w/ Hail"}
	}
	return &weather.Report{
		Current:  weather.Current{Temperature: -12, Humidity: 100, WindSpeed: 45, Description: "Thunderstorm w/ Hail"},
		Unit:     "°F",
		High:     104,
		Low:      -20,
		HasRange: true,
		Hourly:   hours,
	}
}

func longReminders() stubReminders {
	long := strings.Repeat("water the extremely thirsty ficus ", 4)
	return stubReminders{
		{Text: long, Priority: reminders.High, Status: reminders.Pending},
		{Text: long, Priority: reminders.Normal, Status: reminders.Done},
		{Text: long, Priority: reminders.Normal, Status: reminders.Pending},
		{Text: long, Priority: reminders.High, Status: reminders.Done},
		{Text: long, Priority: reminders.Normal, Status: reminders.Pending},
		{Text: long, Priority: reminders.Normal, Status: reminders.Pending},
	}
}

func newCompositor(t *testing.T, s Settings, d Deps) *Compositor {
	t.Helper()
	if d.Clock == nil {
		d.Clock = clock
	}
	c, err := New(s, d)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func TestNew_RejectsInvalidLayout(t *testing.T) {
	s := DefaultSettings()
	s.Layout.TimeHeight = 1000
	_, err := New(s, Deps{})
	if !errors.Is(err, layout.ErrInvalidLayout) {
		t.Fatalf("err = %v, want ErrInvalidLayout", err)
	}
}

func TestRender_NoSources(t *testing.T) {
	c := newCompositor(t, DefaultSettings(), Deps{})
	res, err := c.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := decode(t, res.PNG)
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("decoded %T, want *image.Gray", img)
	}
	if b := img.Bounds(); b.Dx() != 1236 || b.Dy() != 1648 {
		t.Errorf("bounds = %v", b)
	}
	if res.WeatherOK || res.Reminders != 0 || res.Artwork != "" {
		t.Errorf("result = %+v", res)
	}
	if len(res.Checksum) != 64 || !res.RenderedAt.Equal(fixedNow) {
		t.Errorf("checksum %q rendered_at %v", res.Checksum, res.RenderedAt)
	}
}

func TestRender_AllSources(t *testing.T) {
	_, store := testutil.TestArtwork(t, "nature/a.png", "nature/b.jpg")
	state := filepath.Join(t.TempDir(), ".artwork_state")
	sel := artwork.NewSelector(artwork.NewCatalog(store, nil), store,
		rotation.NewCursor(storage.Local{}, state, nil), 1, nil)

	s := DefaultSettings()
	s.City = "Dallas"
	c := newCompositor(t, s, Deps{
		Weather:   stubWeather{r: sampleReport()},
		Reminders: longReminders(),
		Artwork:   sel,
	})

	res, err := c.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.WeatherOK || res.Reminders != 6 || res.Artwork != "nature/a.png" {
		t.Errorf("result = %+v", res)
	}

	res2, err := c.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res2.Artwork != "nature/b.jpg" {
		t.Errorf("second render artwork = %q", res2.Artwork)
	}
}

func TestRender_Deterministic(t *testing.T) {
	d := Deps{Weather: stubWeather{r: sampleReport()}, Reminders: longReminders()}
	a, err := newCompositor(t, DefaultSettings(), d).Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := newCompositor(t, DefaultSettings(), d).Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.Checksum != b.Checksum {
		t.Error("identical inputs produced different images")
	}
}

func TestRender_DegradesOnSourceFailures(t *testing.T) {
	dir, store := testutil.TestArtwork(t)
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	sel := artwork.NewSelector(artwork.NewCatalog(store, nil), store,
		rotation.NewCursor(storage.Local{}, filepath.Join(t.TempDir(), "s"), nil), 1, nil)

	c := newCompositor(t, DefaultSettings(), Deps{
		Weather:   stubWeather{err: errors.New("offline")},
		Reminders: failingReminders{},
		Artwork:   sel,
	})
	res, err := c.Render(context.Background())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.WeatherOK || res.Reminders != 0 || res.Artwork != "" {
		t.Errorf("result = %+v", res)
	}

	img := decode(t, res.PNG).(*image.Gray)
	r, _ := c.Layout().Zone(layout.Artwork)
	if v := img.GrayAt(r.Min.X+2, r.Min.Y+2).Y; v != canvas.Light {
		t.Errorf("artwork zone corner = %d, want placeholder gray %d", v, canvas.Light)
	}
}

func TestZones_StayInsideTheirRectangles(t *testing.T) {
	_, store := testutil.TestArtwork(t, "a.png")
	sel := artwork.NewSelector(artwork.NewCatalog(store, nil), store,
		rotation.NewCursor(storage.Local{}, filepath.Join(t.TempDir(), "s"), nil), 1, nil)

	s := DefaultSettings()
	s.City = strings.Repeat("Llanfairpwllgwyngyll ", 5)
	s.RefreshMinutes = 1440
	c := newCompositor(t, s, Deps{
		Weather:   stubWeather{r: sampleReport()},
		Reminders: longReminders(),
		Artwork:   sel,
	})
	sc := c.gather(context.Background(), time.Date(2026, time.September, 30, 23, 59, 0, 0, time.UTC))
	if sc.art == nil {
		t.Fatal("artwork not reduced")
	}

	fc := fonts.NewCascade(nil, nil)
	defer fc.Close()

	for _, format24h := range []bool{false, true} {
		c.settings.Format24h = format24h
		for _, z := range c.Layout().Zones() {
			img := canvas.New(1236, 1648)
			c.drawZone(img, fc, z, sc)
			ink, ok := canvas.InkBounds(img, canvas.White)
			if !ok {
				t.Errorf("%s: nothing drawn", z.Name)
				continue
			}
			if !ink.In(z.Rect) {
				t.Errorf("%s (24h=%v): ink %v escapes zone %v", z.Name, format24h, ink, z.Rect)
			}
		}
	}

	empty := scene{now: fixedNow}
	for _, z := range c.Layout().Zones() {
		img := canvas.New(1236, 1648)
		c.drawZone(img, fc, z, empty)
		if ink, ok := canvas.InkBounds(img, canvas.White); ok && !ink.In(z.Rect) {
			t.Errorf("%s (degraded): ink %v escapes zone %v", z.Name, ink, z.Rect)
		}
	}
}

func TestZones_StayInsideSmallestLayout(t *testing.T) {
	_, store := testutil.TestArtwork(t, "a.png")
	sel := artwork.NewSelector(artwork.NewCatalog(store, nil), store,
		rotation.NewCursor(storage.Local{}, filepath.Join(t.TempDir(), "s"), nil), 1, nil)

	s := DefaultSettings()
	s.Layout = layout.SmallestSpec(10)
	s.City = "Dallas"
	s.RefreshMinutes = 1440
	c := newCompositor(t, s, Deps{
		Weather:   stubWeather{r: sampleReport()},
		Reminders: longReminders(),
		Artwork:   sel,
	})

	fc := fonts.NewCascade(nil, nil)
	defer fc.Close()

	bounds := c.Layout().Bounds()
	full := c.gather(context.Background(), time.Date(2026, time.September, 30, 23, 59, 0, 0, time.UTC))
	for _, sc := range []scene{full, {now: fixedNow}} {
		for _, format24h := range []bool{false, true} {
			c.settings.Format24h = format24h
			for _, z := range c.Layout().Zones() {
				img := canvas.New(bounds.Dx(), bounds.Dy())
				c.drawZone(img, fc, z, sc)
				if ink, ok := canvas.InkBounds(img, canvas.White); ok && !ink.In(z.Rect) {
					t.Errorf("%s (24h=%v): ink %v escapes zone %v", z.Name, format24h, ink, z.Rect)
				}
			}
		}
	}

	img := canvas.New(bounds.Dx(), bounds.Dy())
	for _, z := range c.Layout().Zones() {
		if z.Name == layout.Time {
			c.drawZone(img, fc, z, full)
		}
	}
	if _, ok := canvas.InkBounds(img, canvas.White); !ok {
		t.Error("clock not drawn at its minimum zone size")
	}
}

func TestService_RenderPersistsAndNotifies(t *testing.T) {
	db := testutil.TestDB(t)
	out := filepath.Join(t.TempDir(), "output", "dashboard.png")
	svc := NewService(newCompositor(t, DefaultSettings(), Deps{}), ServiceConfig{OutputPath: out, Recorder: db})

	if _, ok := svc.Latest(); ok {
		t.Fatal("Latest before first render should be empty")
	}

	var mu sync.Mutex
	var seen []string
	svc.Subscribe(func(r *Result) {
		mu.Lock()
		seen = append(seen, r.Trigger)
		mu.Unlock()
	})

	res, err := svc.Render(context.Background(), TriggerCLI)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !bytes.Equal(data, res.PNG) {
		t.Error("output file differs from result")
	}
	latest, ok := svc.Latest()
	if !ok || latest != res || latest.Trigger != TriggerCLI {
		t.Errorf("Latest = %+v, %v", latest, ok)
	}

	last, err := db.Last(context.Background())
	if err != nil || last.Checksum != res.Checksum || last.Trigger != TriggerCLI {
		t.Errorf("history = %+v, %v", last, err)
	}
	if len(seen) != 1 || seen[0] != TriggerCLI {
		t.Errorf("listener saw %v", seen)
	}
}

func TestService_ConcurrentRendersAreSerialized(t *testing.T) {
	_, store := testutil.TestArtwork(t, "1.png", "2.png", "3.png")
	state := filepath.Join(t.TempDir(), "state")
	sel := artwork.NewSelector(artwork.NewCatalog(store, nil), store,
		rotation.NewCursor(storage.Local{}, state, nil), 1, nil)
	svc := NewService(newCompositor(t, DefaultSettings(), Deps{Artwork: sel}), ServiceConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Render(context.Background(), TriggerAPI); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(state)
	if err != nil {
		t.Fatal(err)
	}
	// Six serialized advances over three files wrap back to the start.
	if got := strings.TrimSpace(string(data)); got != "0,0" {
		t.Errorf("rotation state = %q, want %q", got, "0,0")
	}
}
