// Package blob manages the orchestrator's per-job directories under
// DATA_PATH, named by a random UUID per spec.md §6.4.
package blob

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store roots all job directories at a single DATA_PATH.
type Store struct {
	root string
}

// New returns a Store rooted at root, creating it if necessary. root is
// resolved to an absolute path so every Loc this Store hands out satisfies
// spec.md §3.1's "Absolute path" invariant regardless of the process's
// working directory or whether root was configured as a relative path
// (spec.md §6.3's DATA_PATH default is "./data").
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blob: resolving %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blob: creating data path %s: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

// Create allocates a fresh per-job directory and returns its absolute path.
func (s *Store) Create() (string, error) {
	dir := filepath.Join(s.root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("blob: creating job dir: %w", err)
	}
	return dir, nil
}

// Remove deletes loc and everything under it. Safe to call on a
// non-existent path.
func (s *Store) Remove(loc string) error {
	if loc == "" {
		return nil
	}
	return os.RemoveAll(loc)
}
