package validation

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finora/internal/shared/testutil"
)

func newValidator(t *testing.T) *FileValidator {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewFileValidator(logger)
}

func TestFileValidator_ValidateSourceDirectory(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantCount     int
		wantErr       bool
		errorContains string
	}{
		{
			name:      "catalog directory",
			setupFunc: testutil.WriteCatalog,
			wantCount: 3,
		},
		{
			name: "empty directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantCount: 0,
		},
		{
			name: "ignores lock files and other extensions",
			setupFunc: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "~$COA_UAE.xlsx"), []byte("lock"), 0644))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "COA_PAK.csv"), []byte("a,b\n1,2\n"), 0644))
				return dir
			},
			wantCount: 1,
		},
		{
			name: "missing directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "path is a file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file.csv")
				require.NoError(t, os.WriteFile(path, []byte("a"), 0644))
				return path
			},
			wantErr:       true,
			errorContains: "is not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setupFunc(t)
			count, err := newValidator(t).ValidateSourceDirectory(dir)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := newValidator(t)

	dir := filepath.Join(t.TempDir(), "exports", "nested")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(blocker, "sub")))
}

func TestFileValidator_ValidateContent(t *testing.T) {
	dir := testutil.WriteCatalog(t)
	workbook, err := os.ReadFile(filepath.Join(dir, "COA_UAE.xlsx"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr error
	}{
		{name: "workbook", file: "COA_UAE.xlsx", data: workbook},
		{name: "csv", file: "COA_PAK.csv", data: []byte("a\tb\n1\t2\n")},
		{name: "empty", file: "COA_PAK.csv", data: nil, wantErr: ErrEmptyFile},
		{name: "lock file", file: "~$COA_UAE.xlsx", data: workbook, wantErr: ErrTempFile},
		{name: "not a zip", file: "broken.xlsx", data: []byte("not a zip"), wantErr: ErrNotWorkbook},
		{name: "legacy xls content", file: "old.xlsx", data: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1}, wantErr: ErrLegacyFormat},
		{name: "workbook named csv", file: "COA_PAK.csv", data: workbook, wantErr: ErrBinaryContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator(t).ValidateContent(tt.file, tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileValidator_MaxSize(t *testing.T) {
	v := newValidator(t).WithMaxSize(16)
	data := bytes.Repeat([]byte("a,b\n"), 10)

	assert.ErrorIs(t, v.ValidateContent("big.csv", data), ErrFileTooLarge)
	assert.NoError(t, v.WithMaxSize(0).ValidateContent("big.csv", data))
}
