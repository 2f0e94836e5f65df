// Package sandbox enforces that fixer writes stay inside the target directory.
package sandbox

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot indicates a path escapes the sandbox root. The loop treats
// this as a fatal adapter error, not a recoverable fix failure.
var ErrOutsideRoot = errors.New("sandbox: path outside target directory")

// Root confines file operations to one directory tree.
type Root struct {
	dir string
}

// New resolves dir to an absolute path and returns a sandbox root.
func New(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("sandbox.New: %w", err)
	}
	return &Root{dir: abs}, nil
}

// Dir returns the absolute sandbox root.
func (r *Root) Dir() string { return r.dir }

// Check returns the absolute form of path if it lies within the root,
// or ErrOutsideRoot. Relative paths are resolved against the root.
func (r *Root) Check(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.dir, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(r.dir, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return abs, nil
}
