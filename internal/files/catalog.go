package files

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"finora/internal/config"
	"finora/internal/dataprocessing"
	apierrors "finora/internal/errors"
	"finora/pkg/contracts/domain"
)

// probeConcurrency bounds how many files are checked at once.
const probeConcurrency = 4

// Catalog is the fixed list of files the viewer can open. The first entry is
// the default selection; one entry may be marked as the master dataset.
type Catalog struct {
	files   []string
	master  string
	fetcher Fetcher
	logger  *slog.Logger
}

// ProbeResult is the availability of one catalog entry.
type ProbeResult struct {
	Name      string        `json:"name"`
	Available bool          `json:"available"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
}

// NewCatalog creates a catalog over files served by fetcher.
func NewCatalog(files []string, master string, fetcher Fetcher, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		files:   append([]string{}, files...),
		master:  master,
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "catalog")),
	}
}

// Files returns the catalog file names in order.
func (c *Catalog) Files() []string {
	return append([]string{}, c.files...)
}

// Entries describes every catalog file for the file picker.
func (c *Catalog) Entries() []domain.FileEntry {
	entries := make([]domain.FileEntry, 0, len(c.files))
	for i, name := range c.files {
		format, _ := dataprocessing.DetectFormat(name)
		entries = append(entries, domain.FileEntry{
			Name:        name,
			DisplayName: DisplayName(name),
			Format:      string(format),
			Master:      c.IsMaster(name),
			Default:     i == 0,
		})
	}
	return entries
}

// Default returns the file selected when none is requested.
func (c *Catalog) Default() string {
	if len(c.files) == 0 {
		return ""
	}
	return c.files[0]
}

// Master returns the master dataset file name.
func (c *Catalog) Master() string {
	return c.master
}

// IsMaster reports whether name is the master dataset.
func (c *Catalog) IsMaster(name string) bool {
	return c.master != "" && name == c.master
}

// Resolve maps a requested name to a catalog entry. An empty name selects the
// default file.
func (c *Catalog) Resolve(name string) (string, error) {
	if name == "" {
		name = c.Default()
	}
	for _, f := range c.files {
		if f == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotInCatalog, name)
}

// Fetch returns the raw bytes of a catalog file. Failures are reported as
// network AppErrors carrying the user-visible load message.
func (c *Catalog) Fetch(ctx context.Context, name string) ([]byte, error) {
	resolved, err := c.Resolve(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := c.fetcher.Fetch(ctx, resolved)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WarnContext(ctx, "Fetch failed",
			slog.String("file", resolved),
			slog.String("source", c.fetcher.Source()),
			slog.String("error", err.Error()))
		return nil, apierrors.NewNetworkError(config.ErrMsgLoadFailed, err).WithContext("file", resolved)
	}

	c.logger.DebugContext(ctx, "Fetched file",
		slog.String("file", resolved),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)))
	return data, nil
}

// Probe checks every catalog entry concurrently. The returned slice follows
// catalog order; unavailable is the number of entries that failed.
func (c *Catalog) Probe(ctx context.Context) (results []ProbeResult, unavailable int, err error) {
	results = make([]ProbeResult, len(c.files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)

	for i, name := range c.files {
		i, name := i, name
		g.Go(func() error {
			start := time.Now()
			statErr := c.fetcher.Stat(gctx, name)
			results[i] = ProbeResult{
				Name:      name,
				Available: statErr == nil,
				Latency:   time.Since(start),
			}
			if statErr != nil {
				results[i].Error = statErr.Error()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	for _, r := range results {
		if !r.Available {
			unavailable++
		}
	}
	if unavailable > 0 {
		c.logger.WarnContext(ctx, "Catalog probe found unavailable files",
			slog.Int("unavailable", unavailable),
			slog.Int("total", len(results)))
	}
	return results, unavailable, nil
}

// Source describes where catalog files come from.
func (c *Catalog) Source() string {
	return c.fetcher.Source()
}

// DisplayName strips the extension and turns underscores into spaces:
// "COA_Japan_faulty.xlsx" becomes "COA Japan faulty".
func DisplayName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(base, "_", " ")
}
