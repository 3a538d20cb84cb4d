package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finora/internal/config"
	"finora/internal/shared/testutil"
)

func newTestApplication(t *testing.T, mutate ...func(*config.Config)) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.ExecutableDir = t.TempDir()
	cfg.Catalog.SourceDir = testutil.WriteCatalog(t)
	cfg.Catalog.Files = []string{"COA_UAE.xlsx", "COA_PAK.csv", "master_data.xlsx"}
	cfg.Security.RateLimit.Enabled = false
	cfg.Server.Port = 0
	for _, m := range mutate {
		m(cfg)
	}

	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func serve(app *Application, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestNew_CreatesDirectories(t *testing.T) {
	app := newTestApplication(t)

	assert.DirExists(t, app.Paths.DataDir)
	assert.DirExists(t, app.Paths.ExportsDir)
	assert.DirExists(t, app.Paths.LogsDir)
	assert.NotNil(t, app.Metrics)
	assert.Len(t, BuildID, 12)
}

func TestRouter_Files(t *testing.T) {
	app := newTestApplication(t)

	rec := serve(app, http.MethodGet, "/api/files", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Default string `json:"default"`
			Master  string `json:"master"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "COA_UAE.xlsx", resp.Data.Default)
	assert.Equal(t, "master_data.xlsx", resp.Data.Master)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_View(t *testing.T) {
	app := newTestApplication(t)

	rec := serve(app, http.MethodGet, "/api/files/COA_UAE.xlsx?filter.Category=Assets", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			TotalRows int `json:"total_rows"`
			ShownRows int `json:"shown_rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.TotalRows)
	assert.Equal(t, 2, resp.Data.ShownRows)
	assert.Contains(t, rec.Body.String(), "Cash at bank")
	assert.NotContains(t, rec.Body.String(), "Forex_Rate")

	rec = serve(app, http.MethodPost, "/api/files/COA_PAK.csv/view", `{"filters":{"Account Code":["P301"]}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Utilities")
}

func TestRouter_Errors(t *testing.T) {
	app := newTestApplication(t)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"unknown file", http.MethodGet, "/api/files/COA_MARS.xlsx", http.StatusNotFound, "FILE_NOT_FOUND"},
		{"unknown summary", http.MethodGet, "/api/master/summary/region/export.csv", http.StatusNotFound, "SUMMARY_NOT_FOUND"},
		{"bad format", http.MethodGet, "/api/files/COA_UAE.xlsx/export.pdf", http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown route", http.MethodGet, "/api/nothing", http.StatusNotFound, ""},
		{"wrong method", http.MethodDelete, "/api/files", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt.method, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"trace_id"`)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), `"error_code":"`+tt.wantCode+`"`)
			}
		})
	}
}

func TestRouter_MasterSummary(t *testing.T) {
	app := newTestApplication(t)

	rec := serve(app, http.MethodPost, "/api/master/summary", `{"filters":{"country":["UAE"]},"policy":"first_seen"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"policy":"first_seen"`)
	assert.Contains(t, rec.Body.String(), `"filtered_rows":2`)

	rec = serve(app, http.MethodGet, "/api/master/summary/final/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="final_summary.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app := newTestApplication(t)

	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/health/live", "").Code)
	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/health/ready", "").Code)

	rec := serve(app, http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), BuildID)

	rec = serve(app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_ReadinessWithMissingFile(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Catalog.Files = append(cfg.Catalog.Files, "COA_SAUDI.xlsx")
	})

	rec := serve(app, http.MethodGet, "/api/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "COA_SAUDI.xlsx")
}

func TestRouter_RateLimit(t *testing.T) {
	app := newTestApplication(t, func(cfg *config.Config) {
		cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	})

	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(app, http.MethodGet, "/api/health", "").Code)
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/health/live", app.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, app.Stop(context.Background()))
	assert.NoError(t, ctx.Err())
}
