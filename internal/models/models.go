// Package models defines the domain types shared across paperterm packages.
package models

import "time"

// ImageFile is an artwork file found under the artwork root.
type ImageFile struct {
	Path      string    `json:"path"` // relative to the artwork root, slash-separated
	Category  string    `json:"category,omitempty"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RenderRecord summarizes one completed dashboard render.
type RenderRecord struct {
	ID         int64         `json:"id"`
	RenderedAt time.Time     `json:"rendered_at"`
	Duration   time.Duration `json:"duration_ns"`
	Checksum   string        `json:"checksum"`
	Artwork    string        `json:"artwork,omitempty"`
	WeatherOK  bool          `json:"weather_ok"`
	Reminders  int           `json:"reminders"`
	Trigger    string        `json:"trigger"` // "cli", "schedule", "watch", "api", "mcp"
}
