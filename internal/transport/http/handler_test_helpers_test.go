package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "finora/internal/errors"
	appmiddleware "finora/internal/middleware"
	"finora/internal/services"
	"finora/internal/shared/testutil"
	"finora/pkg/contracts/domain"
)

// MockDatasetService is a mock implementation of DatasetService
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) ListFiles(ctx context.Context) services.FileList {
	return m.Called().Get(0).(services.FileList)
}

func (m *MockDatasetService) GetView(ctx context.Context, name string, filters domain.Filters) (*domain.TableView, error) {
	args := m.Called(name, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TableView), args.Error(1)
}

func (m *MockDatasetService) GetColumnValues(ctx context.Context, name, column string) ([]string, error) {
	args := m.Called(name, column)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDatasetService) GetMasterReport(ctx context.Context, filters domain.Filters, policy string) (*domain.MasterReport, error) {
	args := m.Called(filters, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MasterReport), args.Error(1)
}

func (m *MockDatasetService) Export(ctx context.Context, req services.ExportRequest, w io.Writer) (string, error) {
	args := m.Called(req)
	if body, ok := args.Get(1).(string); ok && body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.String(0), args.Error(2)
}

type handlerDeps struct {
	logger       *slog.Logger
	records      *testutil.BufferedSlogHandler
	validator    *appmiddleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
}

func newHandlerDeps(t *testing.T) handlerDeps {
	t.Helper()
	logger, records := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return handlerDeps{
		logger:       logger,
		records:      records,
		validator:    appmiddleware.NewValidationMiddleware(logger, errorHandler),
		errorHandler: errorHandler,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
