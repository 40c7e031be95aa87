// Package weather fetches current conditions and a short forecast from the
// Open-Meteo API and maps them to descriptions and ASCII icons.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	defaultTimeout      = 30 * time.Second
	maxResponseBodySize = 1 << 20
	hourLayout          = "2006-01-02T15:04"
)

// Temperature units.
const (
	Fahrenheit = "fahrenheit"
	Celsius    = "celsius"
)

// Current holds the present conditions.
type Current struct {
	Temperature int    `json:"temperature"`
	Humidity    int    `json:"humidity"`
	WindSpeed   int    `json:"wind_speed"` // mph
	Code        int    `json:"weather_code"`
	Description string `json:"description"`
}

// Hour is one forecast entry.
type Hour struct {
	Time        time.Time `json:"time"`
	Label       string    `json:"label"` // "3pm"
	Temperature int       `json:"temperature"`
	Code        int       `json:"weather_code"`
	Description string    `json:"description"`
}

// Report is a decoded forecast.
type Report struct {
	Current   Current   `json:"current"`
	Unit      string    `json:"unit"` // "°F" or "°C"
	High      int       `json:"high"`
	Low       int       `json:"low"`
	HasRange  bool      `json:"has_range"`
	Hourly    []Hour    `json:"hourly"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Query selects the location and forecast shape.
type Query struct {
	Latitude      float64
	Longitude     float64
	Unit          string // Fahrenheit or Celsius
	ForecastHours int
}

// Key identifies q for caching.
func (q Query) Key() string {
	return fmt.Sprintf("%.4f,%.4f,%s,%d", q.Latitude, q.Longitude, q.unit(), q.ForecastHours)
}

func (q Query) unit() string {
	if q.Unit == Celsius {
		return Celsius
	}
	return Fahrenheit
}

// Source produces weather reports.
type Source interface {
	Fetch(ctx context.Context) (*Report, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := "weather: unexpected status " + strconv.Itoa(e.StatusCode)
	if b := strings.TrimSpace(e.Body); b != "" {
		msg += ": " + b
	}
	return msg
}

// Client queries Open-Meteo for one location.
type Client struct {
	baseURL string
	query   Query
	http    *http.Client
	now     func() time.Time
}

// ClientOption mutates the client during construction.
type ClientOption func(*Client)

// WithBaseURL overrides the forecast endpoint (useful for tests).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient installs a custom http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithClock overrides the clock used for FetchedAt.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient builds a client for q.
func NewClient(q Query, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		query:   q,
		http:    &http.Client{Timeout: defaultTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	return c
}

// Query returns the client's query.
func (c *Client) Query() Query { return c.query }

// URL returns the full request URL.
func (c *Client) URL() string {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(c.query.Latitude, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(c.query.Longitude, 'f', -1, 64))
	v.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m")
	v.Set("hourly", "temperature_2m,weather_code")
	v.Set("temperature_unit", c.query.unit())
	v.Set("wind_speed_unit", "mph")
	v.Set("forecast_hours", strconv.Itoa(c.query.ForecastHours))
	v.Set("timezone", "auto")
	return c.baseURL + "?" + v.Encode()
}

// Fetch performs the request and decodes the report.
func (c *Client) Fetch(ctx context.Context) (*Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("weather: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	r, err := Decode(raw, c.query)
	if err != nil {
		return nil, err
	}
	r.FetchedAt = c.now()
	return r, nil
}

type apiResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		Code        int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		Code        []int     `json:"weather_code"`
	} `json:"hourly"`
}

// Decode parses an Open-Meteo forecast body. Missing current fields
// decode as zero; hourly entries are capped at q.ForecastHours.
func Decode(body []byte, q Query) (*Report, error) {
	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("weather: decode: %w", err)
	}

	r := &Report{
		Current: Current{
			Temperature: round(api.Current.Temperature),
			Humidity:    round(api.Current.Humidity),
			WindSpeed:   round(api.Current.WindSpeed),
			Code:        api.Current.Code,
			Description: Describe(api.Current.Code),
		},
		Unit: "°F",
	}
	if q.unit() == Celsius {
		r.Unit = "°C"
	}

	h := api.Hourly
	n := min(len(h.Time), len(h.Temperature), len(h.Code))
	if q.ForecastHours > 0 {
		n = min(n, q.ForecastHours)
	}
	limit := len(h.Temperature)
	if q.ForecastHours > 0 {
		limit = min(limit, q.ForecastHours)
	}
	temps := h.Temperature[:limit]
	for i := 0; i < n; i++ {
		ts, err := time.Parse(hourLayout, h.Time[i])
		if err != nil {
			return nil, fmt.Errorf("weather: decode hour %q: %w", h.Time[i], err)
		}
		r.Hourly = append(r.Hourly, Hour{
			Time:        ts,
			Label:       strings.ToLower(ts.Format("3PM")),
			Temperature: round(h.Temperature[i]),
			Code:        h.Code[i],
			Description: Describe(h.Code[i]),
		})
	}

	if len(temps) > 0 {
		hi, lo := temps[0], temps[0]
		for _, t := range temps[1:] {
			hi = math.Max(hi, t)
			lo = math.Min(lo, t)
		}
		r.High, r.Low, r.HasRange = round(hi), round(lo), true
	}
	return r, nil
}

func round(v float64) int { return int(math.Round(v)) }
