package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finora/internal/config"
	"finora/internal/files"
	"finora/internal/shared/testutil"
)

type mockProber struct {
	mock.Mock
}

func (m *mockProber) Probe(ctx context.Context) ([]files.ProbeResult, int, error) {
	args := m.Called(ctx)
	results, _ := args.Get(0).([]files.ProbeResult)
	return results, args.Int(1), args.Error(2)
}

func (m *mockProber) Source() string {
	return m.Called().String(0)
}

func TestHealthService_HealthAndLiveness(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.2.3", "", "", nil, nil, logger)

	health := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name        string
		results     []files.ProbeResult
		unavailable int
		err         error
		want        string
	}{
		{
			name:    "all files reachable",
			results: []files.ProbeResult{{Name: "COA_UAE.xlsx", Available: true}},
			want:    "ready",
		},
		{
			name: "one file missing",
			results: []files.ProbeResult{
				{Name: "COA_UAE.xlsx", Available: true},
				{Name: "COA_PAK.csv", Error: "status 404"},
			},
			unavailable: 1,
			want:        "not_ready",
		},
		{
			name: "probe error",
			err:  errors.New("deadline exceeded"),
			want: "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := new(mockProber)
			prober.On("Probe", mock.Anything).Return(tt.results, tt.unavailable, tt.err)
			prober.On("Source").Return("dir:/data").Maybe()

			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.0.0", "", "", nil, prober, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)

			catalog, ok := status.Services["catalog"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.want, catalog.Status)
			prober.AssertExpectations(t)
		})
	}
}

func TestHealthService_ReadinessWithCatalog(t *testing.T) {
	dir := testutil.WriteCatalog(t)
	logger, _ := testutil.NewTestLogger(t)
	catalog := files.NewCatalog([]string{"COA_UAE.xlsx", "missing.xlsx"}, "", files.NewDirFetcher(dir), logger)
	paths := &config.Paths{DataDir: dir}

	hs := NewHealthService("1.0.0", "", "", paths, catalog, logger)
	status := hs.ReadinessCheck(context.Background())

	assert.Equal(t, "not_ready", status.Status)
	catalogHealth := status.Services["catalog"].(ServiceHealth)
	require.Len(t, catalogHealth.Files, 2)
	assert.True(t, catalogHealth.Files[0].Available)
	assert.False(t, catalogHealth.Files[1].Available)
	assert.Equal(t, "ready", status.Services["data"].(ServiceHealth).Status)
}

func TestHealthService_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	prober := new(mockProber)
	prober.On("Source").Return("https://files.example.com/coa/")

	hs := NewHealthService("2.0.0", "2026-01-01T00:00:00Z", "abc123", nil, prober, logger)
	info := hs.Version()

	assert.Equal(t, "2.0.0", info["version"])
	assert.Equal(t, "abc123", info["build_id"])
	assert.Equal(t, "https://files.example.com/coa/", info["source"])
}
