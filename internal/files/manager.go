package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"finora/internal/config"
)

// Manager resolves and creates files under the application directories
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	fullPath := m.resolvePath(path)

	slog.Debug("Ensuring directory exists",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return os.MkdirAll(fullPath, 0755)
}

// Create opens a new file for writing, creating parent directories. Bare
// names land in the exports directory.
func (m *Manager) Create(path string) (io.WriteCloser, string, error) {
	fullPath := m.resolvePath(path)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file: %w", err)
	}

	slog.Info("Creating file",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return f, fullPath, nil
}

// Resolve returns the absolute location of path.
func (m *Manager) Resolve(path string) string {
	return filepath.Clean(m.resolvePath(path))
}

// resolvePath resolves a path relative to the appropriate base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	slashed := filepath.ToSlash(path)
	switch {
	case strings.HasPrefix(slashed, "data/"):
		return m.paths.GetDataPath(strings.TrimPrefix(slashed, "data/"))
	case strings.HasPrefix(slashed, "logs/"):
		return m.paths.GetLogPath(strings.TrimPrefix(slashed, "logs/"))
	case strings.HasPrefix(slashed, "exports/"):
		return m.paths.GetExportPath(strings.TrimPrefix(slashed, "exports/"))
	default:
		return m.paths.GetExportPath(path)
	}
}
