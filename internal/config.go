package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/hey-codes/paperterm/internal/eink"
	"github.com/hey-codes/paperterm/internal/fonts"
	"github.com/hey-codes/paperterm/internal/layout"
	"github.com/hey-codes/paperterm/internal/weather"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Display     DisplayConfig     `yaml:"display"`
	Layout      LayoutConfig      `yaml:"layout"`
	Output      OutputConfig      `yaml:"output"`
	RefreshRate int               `yaml:"refresh_rate"` // minutes
	Time        TimeConfig        `yaml:"time"`
	Weather     WeatherConfig     `yaml:"weather"`
	Artwork     ArtworkConfig     `yaml:"artwork"`
	Reminders   RemindersConfig   `yaml:"reminders"`
	Fonts       FontsConfig       `yaml:"fonts"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	Auth        AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.RefreshRate, validation.Required, validation.Min(1), validation.Max(1440)),
	); err != nil {
		return err
	}
	for _, v := range []validation.Validatable{
		&c.Display, &c.Output, &c.Time, &c.Weather, &c.Artwork, &c.Reminders, &c.SQLite,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if err := c.LayoutSpec().Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// LayoutSpec combines the display and layout sections.
func (c *Config) LayoutSpec() layout.Spec {
	return layout.Spec{
		Width:           c.Display.Width,
		Height:          c.Display.Height,
		Margin:          c.Display.Margin,
		TimeHeight:      c.Layout.TimeHeight,
		MiddleHeight:    c.Layout.MiddleHeight,
		RemindersHeight: c.Layout.RemindersHeight,
		WeatherWidth:    c.Layout.WeatherWidth,
		CalendarHeight:  c.Layout.CalendarHeight,
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// Watch re-renders when the reminders file, artwork directory or
	// config file change.
	Watch bool `yaml:"watch"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DisplayConfig is the panel resolution.
type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Margin int `yaml:"margin"`
}

// Validate validates the display configuration.
func (c *DisplayConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(1), validation.Max(8192)),
		validation.Field(&c.Height, validation.Required, validation.Min(1), validation.Max(8192)),
		validation.Field(&c.Margin, validation.Min(0)),
	)
}

// LayoutConfig holds the zone size constants. Geometry is checked by
// layout.Spec.Validate.
type LayoutConfig struct {
	TimeHeight      int `yaml:"time_height"`
	MiddleHeight    int `yaml:"middle_height"`
	RemindersHeight int `yaml:"reminders_height"`
	WeatherWidth    int `yaml:"weather_width"`
	CalendarHeight  int `yaml:"calendar_height"`
}

// OutputConfig is where rendered dashboards are written.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TimeConfig controls the clock and calendar zones.
type TimeConfig struct {
	Timezone  string `yaml:"timezone"`
	Format24h bool   `yaml:"format_24h"`
}

// Validate validates the time configuration.
func (c *TimeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.Required, validation.By(func(any) error {
			_, err := time.LoadLocation(c.Timezone)
			return err
		})),
	)
}

// Location resolves Timezone. Call after Validate.
func (c *TimeConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WeatherConfig selects the forecast location and caching.
type WeatherConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Latitude      float64       `yaml:"latitude"`
	Longitude     float64       `yaml:"longitude"`
	Unit          string        `yaml:"unit"`
	ForecastHours int           `yaml:"forecast_hours"`
	City          string        `yaml:"city"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

// Validate validates the weather configuration.
func (c *WeatherConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&c.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&c.Unit, validation.Required, validation.In(weather.Fahrenheit, weather.Celsius)),
		validation.Field(&c.ForecastHours, validation.Min(0), validation.Max(384)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
	)
}

// Query returns the forecast query for c.
func (c *WeatherConfig) Query() weather.Query {
	return weather.Query{
		Latitude:      c.Latitude,
		Longitude:     c.Longitude,
		Unit:          c.Unit,
		ForecastHours: c.ForecastHours,
	}
}

// ArtworkConfig controls artwork rotation and e-ink reduction.
type ArtworkConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Dir              string   `yaml:"dir"`
	Categories       []string `yaml:"categories"`
	RotationInterval int      `yaml:"rotation_interval"`
	StateFile        string   `yaml:"state_file"`
	Contrast         float64  `yaml:"contrast"`
	Dither           bool     `yaml:"dither"`
	GrayLevels       int      `yaml:"gray_levels"`
}

// Validate validates the artwork configuration.
func (c *ArtworkConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.StateFile, validation.Required),
		validation.Field(&c.RotationInterval, validation.Min(1)),
		validation.Field(&c.Contrast, validation.Required, validation.Min(0.1), validation.Max(5.0)),
		validation.Field(&c.GrayLevels, validation.Required, validation.Min(2), validation.Max(256)),
	)
}

// ReduceOptions returns the reduction options. Width and Height are set
// by the compositor from the artwork zone.
func (c *ArtworkConfig) ReduceOptions() eink.Options {
	return eink.Options{Contrast: c.Contrast, Dither: c.Dither, GrayLevels: c.GrayLevels}
}

// RemindersConfig locates the reminders file.
type RemindersConfig struct {
	Enabled  bool   `yaml:"enabled"`
	File     string `yaml:"file"`
	MaxItems int    `yaml:"max_items"`
}

// Validate validates the reminders configuration.
func (c *RemindersConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.File, validation.Required),
		validation.Field(&c.MaxItems, validation.Required, validation.Min(1)),
	)
}

// FontsConfig overrides font lookup. Explicit files are tried before the
// default file names in Dirs.
type FontsConfig struct {
	Dirs    []string `yaml:"dirs"`
	Regular []string `yaml:"regular"`
	Bold    []string `yaml:"bold"`
	Mono    []string `yaml:"mono"`
}

// Sources builds the font cascade candidates.
func (c *FontsConfig) Sources() fonts.Sources {
	var dirs []string
	if len(c.Dirs) > 0 {
		dirs = c.Dirs
	}
	src := fonts.DefaultSources(dirs)
	for style, files := range map[fonts.Style][]string{
		fonts.Regular: c.Regular,
		fonts.Bold:    c.Bold,
		fonts.Mono:    c.Mono,
	} {
		if len(files) > 0 {
			src[style] = append(append([]string(nil), files...), src[style]...)
		}
	}
	return src
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for a home LAN.
//   - "token": Bearer token authentication on /api; Token must be non-empty.
//
// /dashboard.png and /health stay public so the e-reader can poll them.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return errors.New("auth: mode is \"token\" but token is empty")
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	spec := layout.DefaultSpec()
	reduce := eink.DefaultOptions(0, 0)
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Watch: true,
		},
		Display: DisplayConfig{
			Width:  spec.Width,
			Height: spec.Height,
			Margin: spec.Margin,
		},
		Layout: LayoutConfig{
			TimeHeight:      spec.TimeHeight,
			MiddleHeight:    spec.MiddleHeight,
			RemindersHeight: spec.RemindersHeight,
			WeatherWidth:    spec.WeatherWidth,
			CalendarHeight:  spec.CalendarHeight,
		},
		Output: OutputConfig{
			Path: "output/dashboard.png",
		},
		RefreshRate: 5,
		Time: TimeConfig{
			Timezone: "UTC",
		},
		Weather: WeatherConfig{
			Enabled:       true,
			Latitude:      32.7767,
			Longitude:     -96.7970,
			Unit:          weather.Fahrenheit,
			ForecastHours: 12,
			BaseURL:       weather.DefaultBaseURL,
			Timeout:       30 * time.Second,
			CacheTTL:      time.Hour,
		},
		Artwork: ArtworkConfig{
			Enabled:          true,
			Dir:              "artwork",
			RotationInterval: 1,
			StateFile:        "output/.artwork_state",
			Contrast:         reduce.Contrast,
			Dither:           reduce.Dither,
			GrayLevels:       reduce.GrayLevels,
		},
		Reminders: RemindersConfig{
			Enabled:  true,
			File:     "reminders.txt",
			MaxItems: 6,
		},
		SQLite: SQLiteConfig{
			Path: "output/paperterm.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
