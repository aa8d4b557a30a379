// Package workdir manages the worker's per-payload Working Directory
// (spec.md §2), the worker-side analogue of the orchestrator's Blob Store.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Dir roots every payload's working directory under a single base path.
type Dir struct {
	root string
}

// New returns a Dir rooted at root, creating it if necessary. root is
// resolved to an absolute path so every loc this Dir hands out satisfies
// spec.md §3.2's "Absolute path" invariant regardless of the process's
// working directory or whether root was configured as a relative path
// (the worker is started with workdir.New("./work")).
func New(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workdir: resolving %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("workdir: creating base path %s: %w", abs, err)
	}
	return &Dir{root: abs}, nil
}

// Create allocates a fresh per-payload directory and returns its absolute path.
func (d *Dir) Create() (string, error) {
	dir := filepath.Join(d.root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("workdir: creating payload dir: %w", err)
	}
	return dir, nil
}

// Remove deletes loc and everything under it. Safe to call on a
// non-existent path.
func (d *Dir) Remove(loc string) error {
	if loc == "" {
		return nil
	}
	return os.RemoveAll(loc)
}
