// Package fsops handles reading, hashing, and atomically writing target files.
package fsops

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File holds a loaded source file with its content and metadata.
type File struct {
	Path  string
	Raw   string
	Lines []string
	Hash  string
}

// Load reads a file and computes its SHA-256 hash.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fsops.Load: %w", err)
	}
	raw := string(data)
	return &File{
		Path:  path,
		Raw:   raw,
		Lines: strings.Split(raw, "\n"),
		Hash:  Hash(data),
	}, nil
}

// Hash returns the sha256-prefixed digest of data. Phases compare hashes to
// decide whether a file was actually modified.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", h)
}

// WriteAtomic writes data to path through a temp file in the same directory
// followed by a rename, so a reader in a later phase never observes a
// half-written file.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("fsops.WriteAtomic: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("fsops.WriteAtomic: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fsops.WriteAtomic: close: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("fsops.WriteAtomic: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("fsops.WriteAtomic: rename: %w", err)
	}
	return nil
}
