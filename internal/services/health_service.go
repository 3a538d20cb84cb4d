package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"finora/internal/config"
	"finora/internal/files"
)

// CatalogProber reports catalog availability. *files.Catalog implements it.
type CatalogProber interface {
	Probe(ctx context.Context) ([]files.ProbeResult, int, error)
	Source() string
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	paths     *config.Paths
	catalog   CatalogProber
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string              `json:"status"`
	Message string              `json:"message,omitempty"`
	Uptime  string              `json:"uptime,omitempty"`
	Files   []files.ProbeResult `json:"files,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime, buildID string, paths *config.Paths, catalog CatalogProber, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "health_service"))

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		paths:     paths,
		catalog:   catalog,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck probes every catalog file and the local data directory.
// The service is ready when all catalog files can be reached.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["catalog"] = hs.checkCatalogHealth(ctx)
	status.Services["data"] = hs.checkDataHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready")
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}
	if hs.catalog != nil {
		result["source"] = hs.catalog.Source()
	}

	return result
}

func (hs *HealthService) checkCatalogHealth(ctx context.Context) ServiceHealth {
	if hs.catalog == nil {
		return ServiceHealth{Status: "not_ready", Message: "catalog not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, config.ProbeTimeout)
	defer cancel()

	results, unavailable, err := hs.catalog.Probe(ctx)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Catalog probe failed: %v", err),
		}
	}
	if unavailable > 0 {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("%d of %d files unavailable", unavailable, len(results)),
			Files:   results,
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d files available from %s", len(results), hs.catalog.Source()),
		Uptime:  time.Since(hs.startTime).String(),
		Files:   results,
	}
}

// checkDataHealth only applies when local paths are configured; the viewer
// itself never writes to disk.
func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{Status: "ready", Message: "No local data directory"}
	}

	if _, err := os.Stat(hs.paths.DataDir); os.IsNotExist(err) {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data directory not found: %s", hs.paths.DataDir),
		}
	}

	return ServiceHealth{Status: "ready", Message: "Data directory is accessible"}
}
