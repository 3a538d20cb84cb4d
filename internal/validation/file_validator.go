package validation

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"finora/internal/dataprocessing"
)

// DefaultMaxFileSize bounds a single catalog file.
const DefaultMaxFileSize = 50 << 20

// sniffLen is how much of a delimited file is checked for binary content.
const sniffLen = 8 << 10

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrTempFile      = errors.New("temporary office file")
	ErrNotWorkbook   = errors.New("content is not an xlsx workbook")
	ErrLegacyFormat  = errors.New("legacy .xls workbooks are not supported")
	ErrBinaryContent = errors.New("delimited file contains binary data")
)

// FileValidator checks catalog directories and spreadsheet content before
// anything is parsed or written.
type FileValidator struct {
	logger  *slog.Logger
	maxSize int64
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:  logger.With(slog.String("component", "file_validator")),
		maxSize: DefaultMaxFileSize,
	}
}

// WithMaxSize overrides the size limit. Zero or less disables it.
func (v *FileValidator) WithMaxSize(n int64) *FileValidator {
	v.maxSize = n
	return v
}

// ValidateSourceDirectory checks that dir exists and reports how many
// readable spreadsheets it holds. An empty directory is not an error.
func (v *FileValidator) ValidateSourceDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Source directory does not exist",
			slog.String("directory", dir))
		return 0, fmt.Errorf("source directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat source directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Source path is not a directory",
			slog.String("path", dir))
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	count, err := v.CountSpreadsheets(dir)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		v.logger.Warn("No spreadsheets found",
			slog.String("directory", dir))
		return 0, nil
	}

	v.logger.Info("Source directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", count))
	return count, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// CountSpreadsheets counts the files in dir the parser can read, skipping
// office lock files.
func (v *FileValidator) CountSpreadsheets(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		v.logger.Error("Failed to count files",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to count files: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || isTempFile(entry.Name()) {
			continue
		}
		if _, err := dataprocessing.DetectFormat(entry.Name()); err == nil {
			count++
		}
	}

	v.logger.Debug("Files counted",
		slog.String("directory", dir),
		slog.Int("count", count))
	return count, nil
}

// ValidateContent checks fetched bytes against what their file name
// promises: a zip container for .xlsx, text for delimited files.
func (v *FileValidator) ValidateContent(name string, data []byte) error {
	if isTempFile(name) {
		return fmt.Errorf("%w: %s", ErrTempFile, name)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	if v.maxSize > 0 && int64(len(data)) > v.maxSize {
		v.logger.Warn("File exceeds size limit",
			slog.String("file", name),
			slog.Int("size", len(data)),
			slog.Int64("max_size", v.maxSize))
		return fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, name, len(data))
	}

	format, err := dataprocessing.DetectFormat(name)
	if err != nil {
		return err
	}

	switch format {
	case dataprocessing.FormatWorkbook:
		if bytes.HasPrefix(data, oleMagic) {
			return fmt.Errorf("%w: %s", ErrLegacyFormat, name)
		}
		if !bytes.HasPrefix(data, zipMagic) {
			return fmt.Errorf("%w: %s", ErrNotWorkbook, name)
		}
	case dataprocessing.FormatDelimited:
		head := data
		if len(head) > sniffLen {
			head = head[:sniffLen]
		}
		if bytes.IndexByte(head, 0) >= 0 {
			return fmt.Errorf("%w: %s", ErrBinaryContent, name)
		}
	}

	v.logger.Debug("File content validated",
		slog.String("file", name),
		slog.Int("size", len(data)))
	return nil
}

func isTempFile(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "~$")
}
