package testutil

import (
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("file loaded", slog.String("file", "COA_UAE.xlsx"))
		logger.Error("load failed", slog.Int("status", 502))

		assert.Equal(t, 2, handler.Count())
		assert.True(t, handler.ContainsMessage("file loaded"))
		assert.True(t, handler.ContainsAttr("file", "COA_UAE.xlsx"))
		assert.True(t, handler.ContainsAttr("status", int64(502)))
	})

	t.Run("derived loggers share records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "catalog")).Warn("probe failed")

		AssertLogContains(t, handler, slog.LevelWarn, "probe failed")
		AssertLogAttr(t, handler, "component", "catalog")
	})

	t.Run("filters by level and clears", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)

		handler.Clear()
		assert.Zero(t, handler.Count())
		AssertNoErrors(t, handler)
	})

	t.Run("concurrent logging", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("concurrent log", slog.Int("goroutine", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
	})
}

func TestWriteCatalog(t *testing.T) {
	dir := WriteCatalog(t)

	f, err := excelize.OpenFile(filepath.Join(dir, "master_data.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, len(MasterRows)+1)
	assert.Equal(t, "Country", rows[0][0])
	assert.Equal(t, "PAK", rows[4][0])
}
