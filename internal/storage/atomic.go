package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// tmpPattern names in-flight temp files; they never match IsImage.
const tmpPattern = ".paperterm-tmp-*"

// WriteFile atomically writes content to path: tmp file → fsync → rename.
// Parent directories are created as needed.
func WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Local reads and writes plain file-system paths. Writes are atomic.
type Local struct{}

// Read returns the contents of path.
func (Local) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Write atomically replaces path with content.
func (Local) Write(path string, content []byte) error {
	return WriteFile(path, content)
}
