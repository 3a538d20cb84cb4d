package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)
	require.NotNil(t, paths)

	assert.True(t, filepath.IsAbs(paths.ExecutableDir))
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "exports"), paths.ExportsDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
}

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	paths := NewPaths(base, PathsConfig{DataDir: abs, ExportsDir: "out"})

	assert.Equal(t, abs, paths.DataDir, "absolute directories are kept")
	assert.Equal(t, filepath.Join(base, "out"), paths.ExportsDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir, "empty falls back to default")
}

func TestEnsureDirectories(t *testing.T) {
	paths := NewPaths(t.TempDir(), PathsConfig{})
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ExportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPathHelperMethods(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(base, PathsConfig{})

	assert.Equal(t, filepath.Join(base, "data", "COA_UAE.xlsx"), paths.GetDataPath("COA_UAE.xlsx"))
	assert.Equal(t, filepath.Join(base, "exports", "final.csv"), paths.GetExportPath("final.csv"))
	assert.Equal(t, filepath.Join(base, "logs", "app.log"), paths.GetLogPath("app.log"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "missing.txt")))
}
