package http

import (
	"context"
	"io"

	"finora/internal/services"
	"finora/pkg/contracts/domain"
)

// DatasetService defines the dataset operations the handlers depend on
type DatasetService interface {
	ListFiles(ctx context.Context) services.FileList
	GetView(ctx context.Context, name string, filters domain.Filters) (*domain.TableView, error)
	GetColumnValues(ctx context.Context, name, column string) ([]string, error)
	GetMasterReport(ctx context.Context, filters domain.Filters, policy string) (*domain.MasterReport, error)
	Export(ctx context.Context, req services.ExportRequest, w io.Writer) (string, error)
}

// HealthService defines the health operations the handlers depend on
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
