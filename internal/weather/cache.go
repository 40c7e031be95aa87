package weather

import (
	"context"
	"log/slog"
	"time"
)

// Cache persists reports between runs.
type Cache interface {
	SaveWeather(ctx context.Context, key string, r *Report) error
	// LoadWeather returns the newest report for key not older than maxAge.
	LoadWeather(ctx context.Context, key string, maxAge time.Duration) (*Report, error)
}

// Cached wraps a Source, storing every live report and serving the
// cached one when the live fetch fails.
type Cached struct {
	live   Source
	cache  Cache
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached returns a Source that falls back to cache entries younger
// than ttl.
func NewCached(live Source, cache Cache, key string, ttl time.Duration, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cached{live: live, cache: cache, key: key, ttl: ttl, logger: logger}
}

// Fetch implements Source.
func (c *Cached) Fetch(ctx context.Context) (*Report, error) {
	r, err := c.live.Fetch(ctx)
	if err == nil {
		if serr := c.cache.SaveWeather(ctx, c.key, r); serr != nil {
			c.logger.Warn("weather: cache save failed", slog.String("error", serr.Error()))
		}
		return r, nil
	}

	cached, cerr := c.cache.LoadWeather(context.WithoutCancel(ctx), c.key, c.ttl)
	if cerr != nil || cached == nil {
		return nil, err
	}
	c.logger.Warn("weather: live fetch failed, using cached report",
		slog.String("error", err.Error()),
		slog.Time("fetched_at", cached.FetchedAt))
	return cached, nil
}
