package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDir_RoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "run.sh"), []byte("#!/bin/bash\necho hi > out.txt\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "out.txt"), []byte("hi\n"), 0o644))

	dest := filepath.Join(src, ArchiveName)
	require.NoError(t, Dir(src, dest))

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	require.True(t, names["run.sh"])
	require.True(t, names["out.txt"])
	require.False(t, names[ArchiveName], "the archive must not contain itself")
}

func TestDir_EmptyDirProducesValidArchive(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(src, ArchiveName)
	require.NoError(t, Dir(src, dest))

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()
	require.Empty(t, zr.File)
}
