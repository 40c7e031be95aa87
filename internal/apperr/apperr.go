// Package apperr holds errors shared by the HTTP and MCP surfaces.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidInput = errors.New("invalid input")
)
