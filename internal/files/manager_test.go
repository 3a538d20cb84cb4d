package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finora/internal/config"
)

func newTestManager(t *testing.T) (*Manager, *config.Paths) {
	base := t.TempDir()
	paths := &config.Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, "data"),
		ExportsDir:    filepath.Join(base, "exports"),
		LogsDir:       filepath.Join(base, "logs"),
	}
	return NewManager(paths), paths
}

func TestManager_Resolve(t *testing.T) {
	m, paths := newTestManager(t)

	tests := []struct {
		in   string
		want string
	}{
		{"summary.csv", filepath.Join(paths.ExportsDir, "summary.csv")},
		{"exports/summary.csv", filepath.Join(paths.ExportsDir, "summary.csv")},
		{"data/COA_UAE.xlsx", filepath.Join(paths.DataDir, "COA_UAE.xlsx")},
		{"logs/app.log", filepath.Join(paths.LogsDir, "app.log")},
		{"nested/out.xlsx", filepath.Join(paths.ExportsDir, "nested", "out.xlsx")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Resolve(tt.in), tt.in)
	}

	abs := filepath.Join(t.TempDir(), "x.csv")
	assert.Equal(t, abs, m.Resolve(abs))
}

func TestManager_CreateAndExists(t *testing.T) {
	m, paths := newTestManager(t)

	w, full, err := m.Create("nested/report.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("a,b\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, filepath.Join(paths.ExportsDir, "nested", "report.csv"), full)
	assert.True(t, m.FileExists("nested/report.csv"))
	assert.False(t, m.FileExists("missing.csv"))

	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestManager_EnsureDirectory(t *testing.T) {
	m, paths := newTestManager(t)

	require.NoError(t, m.EnsureDirectory("data/"))
	require.NoError(t, m.EnsureDirectory("data/"), "existing directory is fine")

	info, err := os.Stat(paths.DataDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
