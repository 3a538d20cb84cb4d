package files

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "finora/internal/errors"
	"finora/internal/shared/testutil"
)

var testFiles = []string{"master_data.xlsx", "COA_UAE.xlsx", "COA_PAK.csv"}

func newTestCatalog(t *testing.T, dir string) *Catalog {
	logger, _ := testutil.NewTestLogger(t)
	return NewCatalog(testFiles, "master_data.xlsx", NewDirFetcher(dir), logger)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"master_data.xlsx", "master data"},
		{"COA_Japan_faulty.xlsx", "COA Japan faulty"},
		{"COA_PAK.csv", "COA PAK"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.in), tt.in)
	}
}

func TestCatalog_Entries(t *testing.T) {
	c := newTestCatalog(t, t.TempDir())

	entries := c.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, "master_data.xlsx", entries[0].Name)
	assert.True(t, entries[0].Default)
	assert.True(t, entries[0].Master)
	assert.Equal(t, "workbook", entries[0].Format)

	assert.False(t, entries[1].Default)
	assert.False(t, entries[1].Master)
	assert.Equal(t, "COA UAE", entries[1].DisplayName)
	assert.Equal(t, "delimited", entries[2].Format)
}

func TestCatalog_Resolve(t *testing.T) {
	c := newTestCatalog(t, t.TempDir())

	name, err := c.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "master_data.xlsx", name)

	name, err = c.Resolve("COA_UAE.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "COA_UAE.xlsx", name)

	_, err = c.Resolve("../etc/passwd")
	assert.ErrorIs(t, err, ErrNotInCatalog)

	_, err = c.Resolve("coa_uae.xlsx")
	assert.ErrorIs(t, err, ErrNotInCatalog, "names are matched exactly")
}

func TestCatalog_EmptyDefault(t *testing.T) {
	c := NewCatalog(nil, "", NewDirFetcher(t.TempDir()), nil)
	assert.Equal(t, "", c.Default())
	assert.False(t, c.IsMaster(""))
	_, err := c.Resolve("")
	assert.ErrorIs(t, err, ErrNotInCatalog)
}

func TestCatalog_FetchFromDirectory(t *testing.T) {
	dir := testutil.WriteCatalog(t)
	c := newTestCatalog(t, dir)

	data, err := c.Fetch(context.Background(), "COA_PAK.csv")
	require.NoError(t, err)
	assert.Contains(t, string(data), "P300\tRent\tExpenses")

	assert.Equal(t, dir, c.Source())
}

func TestCatalog_FetchMissingFile(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	c := NewCatalog([]string{"COA_SAUDI.xlsx"}, "", NewDirFetcher(t.TempDir()), logger)

	_, err := c.Fetch(context.Background(), "COA_SAUDI.xlsx")
	require.Error(t, err)

	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNetwork))
	assert.ErrorIs(t, err, ErrFetchFailed)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Failed to load file", appErr.Message)
	assert.Equal(t, "COA_SAUDI.xlsx", appErr.Context["file"])
	assert.True(t, logs.ContainsMessage("Fetch failed"))
}

func TestCatalog_FetchCancelled(t *testing.T) {
	c := newTestCatalog(t, testutil.WriteCatalog(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, "COA_PAK.csv")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalog_Probe(t *testing.T) {
	dir := testutil.WriteCatalog(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "COA_UAE.xlsx")))
	c := newTestCatalog(t, dir)

	results, unavailable, err := c.Probe(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1, unavailable)

	assert.Equal(t, "master_data.xlsx", results[0].Name)
	assert.True(t, results[0].Available)
	assert.False(t, results[1].Available)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Available)
}

func TestCatalog_ProbeOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/COA_UAE.xlsx" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger, _ := testutil.NewTestLogger(t)
	c := NewCatalog(testFiles, "master_data.xlsx", NewHTTPFetcher(srv.URL, 0), logger)

	results, unavailable, err := c.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, unavailable)
	assert.False(t, results[1].Available)
}
