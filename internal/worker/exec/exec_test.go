package exec

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_SuccessfulExit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/bash\necho hi > out.txt\nexit 0\n"), 0o755))

	result, err := Run(context.Background(), dir, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.False(t, result.TimedOut)

	data, readErr := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, readErr)
	require.Equal(t, "hi\n", string(data))
}

func TestRun_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/bash\nexit 7\n"), 0o755))

	result, err := Run(context.Background(), dir, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, 7, result.ExitCode)
}

func TestRun_Timeout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/bash\nsleep 5\n"), 0o755))

	result, err := Run(context.Background(), dir, 200*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	require.True(t, result.TimedOut)
}

func TestRun_CapturesOutputFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.sh"), []byte("#!/bin/bash\necho stdout-line\necho stderr-line >&2\n"), 0o755))

	_, err := Run(context.Background(), dir, 5*time.Second)
	require.NoError(t, err)

	data, readErr := os.ReadFile(filepath.Join(dir, "output.log"))
	require.NoError(t, readErr)
	require.Contains(t, string(data), "stdout-line")
	require.Contains(t, string(data), "stderr-line")
}
