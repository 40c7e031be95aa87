// Package storage provides file access for artwork, rotation state and
// rendered output.
package storage

import "github.com/hey-codes/paperterm/internal/models"

// Provider is the interface for artwork directory operations.
type Provider interface {
	// List returns every image file under dir (relative to the root).
	List(dir string) ([]models.ImageFile, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Abs resolves path (relative to the root) to an absolute file name.
	Abs(path string) (string, error)
}

// Verify *FS satisfies Provider at compile time.
var _ Provider = (*FS)(nil)
