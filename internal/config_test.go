package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hey-codes/paperterm/internal/fonts"
	"github.com/hey-codes/paperterm/internal/layout"
	pkgconfig "github.com/hey-codes/paperterm/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.LayoutSpec() != layout.DefaultSpec() {
		t.Errorf("layout spec = %+v", cfg.LayoutSpec())
	}
}

func TestConfig_Invalid(t *testing.T) {
	cases := map[string]func(*Config){
		"port":            func(c *Config) { c.App.HTTP.Port = 70000 },
		"refresh rate":    func(c *Config) { c.RefreshRate = 0 },
		"gray levels":     func(c *Config) { c.Artwork.GrayLevels = 300 },
		"contrast":        func(c *Config) { c.Artwork.Contrast = 0 },
		"timezone":        func(c *Config) { c.Time.Timezone = "Mars/Olympus_Mons" },
		"unit":            func(c *Config) { c.Weather.Unit = "kelvin" },
		"latitude":        func(c *Config) { c.Weather.Latitude = 91 },
		"weather timeout": func(c *Config) { c.Weather.Timeout = time.Millisecond },
		"reminders max":   func(c *Config) { c.Reminders.MaxItems = 0 },
		"output path":     func(c *Config) { c.Output.Path = "" },
		"display":         func(c *Config) { c.Display.Width = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_LayoutOverflowRejected(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Layout.MiddleHeight = 2000
	if err := cfg.Validate(); !errors.Is(err, layout.ErrInvalidLayout) {
		t.Fatalf("err = %v, want ErrInvalidLayout", err)
	}
}

func TestConfig_DisabledSectionsSkipValidation(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Weather.Enabled = false
	cfg.Weather.Unit = "kelvin"
	cfg.Artwork.Enabled = false
	cfg.Artwork.GrayLevels = 0
	cfg.Reminders.Enabled = false
	cfg.Reminders.File = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled sections should not be validated: %v", err)
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	t.Setenv("PAPERTERM_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
refresh_rate: 10
time:
  timezone: America/Chicago
  format_24h: true
weather:
  unit: celsius
  city: Dallas
  timeout: 5s
  cache_ttl: 30m
artwork:
  categories: [nature, city]
  gray_levels: 4
auth:
  mode: token
  token: ${PAPERTERM_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshRate != 10 || !cfg.Time.Format24h || cfg.Time.Location().String() != "America/Chicago" {
		t.Errorf("time/refresh = %+v, %d", cfg.Time, cfg.RefreshRate)
	}
	if cfg.Weather.Unit != "celsius" || cfg.Weather.Timeout != 5*time.Second || cfg.Weather.CacheTTL != 30*time.Minute {
		t.Errorf("weather = %+v", cfg.Weather)
	}
	if !cfg.Weather.Enabled || cfg.Weather.ForecastHours != 12 {
		t.Error("unset keys should keep their defaults")
	}
	if len(cfg.Artwork.Categories) != 2 || cfg.Artwork.GrayLevels != 4 {
		t.Errorf("artwork = %+v", cfg.Artwork)
	}
	if !cfg.Auth.AuthEnabled() || cfg.Auth.Token != "s3cret" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}

func TestFontsConfig_ExplicitFilesFirst(t *testing.T) {
	fc := FontsConfig{Dirs: []string{"/opt/fonts"}, Bold: []string{"/custom/Bold.ttf"}}
	src := fc.Sources()
	if src[fonts.Bold][0] != "/custom/Bold.ttf" {
		t.Errorf("bold candidates = %v", src[fonts.Bold])
	}
	if !strings.HasPrefix(src[fonts.Regular][0], filepath.FromSlash("/opt/fonts")) {
		t.Errorf("regular candidates = %v", src[fonts.Regular])
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}
