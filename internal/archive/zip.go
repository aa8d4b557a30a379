// Package archive builds and extracts the single-file ZIP bundles exchanged
// by both the orchestrator's /download and the worker's /retrieve.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ArchiveName is the fixed filename every result archive is written under,
// so repeated retrieval/download overwrites cleanly (spec.md §4.3).
const ArchiveName = "result.zip"

// Dir zips every regular file directly or transitively under dir (excluding
// a file named ArchiveName, so a prior archive is never included in itself)
// into dest. Files are stored with paths relative to dir.
func Dir(dir, dest string) (err error) {
	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("archive: create temp: %w", err)
	}
	defer func() {
		f.Close()
		if err != nil {
			os.Remove(tmp)
		}
	}()

	zw := zip.NewWriter(f)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		if rel == ArchiveName {
			return nil
		}
		return addFile(zw, path, rel)
	})
	if walkErr != nil {
		zw.Close()
		return fmt.Errorf("archive: walking %s: %w", dir, walkErr)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: closing zip: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("archive: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("archive: close: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("archive: rename into place: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, rel string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(filepath.ToSlash(rel))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
