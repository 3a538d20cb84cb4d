package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"finora/internal/dataprocessing"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds spreadsheet files on disk
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindSpreadsheets lists every file in dir the parser can read, sorted by
// name. Relative directories are resolved against the base path.
func (d *Discovery) FindSpreadsheets(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := dataprocessing.DetectFormat(entry.Name()); err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// Missing returns the catalog names that have no matching discovered file.
func Missing(catalog []string, found []FileInfo) []string {
	present := make(map[string]struct{}, len(found))
	for _, f := range found {
		present[f.Name] = struct{}{}
	}
	var missing []string
	for _, name := range catalog {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
