package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hey-codes/paperterm/internal/models"
	"github.com/hey-codes/paperterm/internal/weather"
)

var (
	// ErrNoRenders is returned by Last when nothing has been recorded.
	ErrNoRenders = errors.New("history: no renders recorded")
	// ErrCacheMiss is returned when no fresh weather report is cached.
	ErrCacheMiss = errors.New("history: weather cache miss")
)

// Recorder stores render history. Consumers depend on this interface
// rather than *DB.
type Recorder interface {
	Record(ctx context.Context, r models.RenderRecord) (int64, error)
	Last(ctx context.Context) (*models.RenderRecord, error)
	List(ctx context.Context, limit int) ([]models.RenderRecord, error)
	Count(ctx context.Context) (int, error)
}

// Verify *DB satisfies Recorder and weather.Cache at compile time.
var (
	_ Recorder      = (*DB)(nil)
	_ weather.Cache = (*DB)(nil)
)

// Record inserts r and returns its row id.
func (db *DB) Record(ctx context.Context, r models.RenderRecord) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO renders (rendered_at, duration_ns, checksum, artwork, weather_ok, reminders, source)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.RenderedAt.UTC(), int64(r.Duration), r.Checksum, r.Artwork, r.WeatherOK, r.Reminders, r.Trigger)
	if err != nil {
		return 0, fmt.Errorf("history: insert render: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: last insert id: %w", err)
	}
	return id, nil
}

// Last returns the most recent render.
func (db *DB) Last(ctx context.Context) (*models.RenderRecord, error) {
	recs, err := db.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNoRenders
	}
	return &recs[0], nil
}

// List returns up to limit renders, newest first.
func (db *DB) List(ctx context.Context, limit int) ([]models.RenderRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, rendered_at, duration_ns, checksum, artwork, weather_ok, reminders, source
		FROM renders ORDER BY rendered_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list renders: %w", err)
	}
	defer rows.Close()

	var out []models.RenderRecord
	for rows.Next() {
		var (
			r   models.RenderRecord
			dur int64
		)
		if err := rows.Scan(&r.ID, &r.RenderedAt, &dur, &r.Checksum, &r.Artwork, &r.WeatherOK, &r.Reminders, &r.Trigger); err != nil {
			return nil, fmt.Errorf("history: scan render: %w", err)
		}
		r.Duration = time.Duration(dur)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of recorded renders.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM renders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: count renders: %w", err)
	}
	return n, nil
}

// SaveWeather caches r under key, replacing any previous entry.
func (db *DB) SaveWeather(ctx context.Context, key string, r *weather.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("history: encode weather: %w", err)
	}
	fetched := r.FetchedAt
	if fetched.IsZero() {
		fetched = db.now()
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO weather_cache (key, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload    = excluded.payload,
			fetched_at = excluded.fetched_at
	`, key, string(payload), fetched.UnixMilli())
	if err != nil {
		return fmt.Errorf("history: save weather: %w", err)
	}
	return nil
}

// LoadWeather returns the cached report for key if it is younger than
// maxAge. A non-positive maxAge accepts any age.
func (db *DB) LoadWeather(ctx context.Context, key string, maxAge time.Duration) (*weather.Report, error) {
	var (
		payload string
		fetched int64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM weather_cache WHERE key = ?`, key,
	).Scan(&payload, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("history: load weather: %w", err)
	}
	if maxAge > 0 && db.now().Sub(time.UnixMilli(fetched)) > maxAge {
		return nil, fmt.Errorf("%w: entry older than %s", ErrCacheMiss, maxAge)
	}

	var r weather.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("history: decode weather: %w", err)
	}
	return &r, nil
}
