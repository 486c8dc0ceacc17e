package cleanup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunRemovesTsbuildinfoFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsconfig.tsbuildinfo"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg", "pkg.tsbuildinfo"), []byte("y"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.ts"), []byte("z"), 0o644))

	count, err := Run(dir)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = os.Stat(filepath.Join(dir, "keep.ts"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "tsconfig.tsbuildinfo"))
	require.True(t, os.IsNotExist(err))
}

func TestRunMissingDirIsNotError(t *testing.T) {
	count, err := Run(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestRunSkipsPermissionDeniedFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	sub := filepath.Join(dir, "locked")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	target := filepath.Join(sub, "tsconfig.tsbuildinfo")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	require.NoError(t, os.Chmod(sub, 0o555))
	t.Cleanup(func() { _ = os.Chmod(sub, 0o755) })

	count, err := Run(dir)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
