package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"finora/internal/config"
	"finora/internal/dataprocessing"
	apierrors "finora/internal/errors"
	"finora/internal/exporter"
	"finora/internal/files"
	"finora/internal/infrastructure"
	"finora/internal/validation"
	"finora/pkg/contracts/domain"
)

// DatasetOptions configures how catalog files are presented.
type DatasetOptions struct {
	HiddenColumns   []string
	CurrencyColumns []string
	// MaxFileSize bounds fetched files. Zero means validation.DefaultMaxFileSize.
	MaxFileSize int64
	Metrics     *infrastructure.BusinessMetrics
}

// FileList is the catalog as shown in the file picker.
type FileList struct {
	Files   []domain.FileEntry `json:"files"`
	Default string             `json:"default"`
	Master  string             `json:"master,omitempty"`
}

// ExportRequest selects what to export. A non-empty Summary exports that
// master summary; otherwise the filtered view of File is exported.
type ExportRequest struct {
	File    string
	Summary string
	Format  exporter.Format
	Filters domain.Filters
	Policy  string
	BOM     bool
	Raw     bool
}

// Toggle is one change to a column's filter selection: Value flips a single
// entry, All flips the column between everything and nothing.
type Toggle struct {
	Column string
	Value  string
	All    bool
}

// DatasetService runs the load → filter → aggregate → present pipeline. Every
// call loads its table afresh; nothing is cached between calls.
type DatasetService struct {
	catalog   *files.Catalog
	analyzer  *dataprocessing.MasterAnalyzer
	validator *validation.FileValidator
	opts      DatasetOptions
	logger    *slog.Logger
}

// NewDatasetService creates a dataset service over catalog.
func NewDatasetService(catalog *files.Catalog, opts DatasetOptions, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset_service"))

	logger.Info("DatasetService initialized",
		slog.String("source", catalog.Source()),
		slog.Int("files", len(catalog.Files())),
		slog.String("master", catalog.Master()))

	validator := validation.NewFileValidator(logger)
	if opts.MaxFileSize > 0 {
		validator.WithMaxSize(opts.MaxFileSize)
	}

	return &DatasetService{
		catalog:   catalog,
		analyzer:  dataprocessing.NewMasterAnalyzer().WithLogger(logger),
		validator: validator,
		opts:      opts,
		logger:    logger,
	}
}

// ListFiles returns the catalog entries.
func (s *DatasetService) ListFiles(ctx context.Context) FileList {
	return FileList{
		Files:   s.catalog.Entries(),
		Default: s.catalog.Default(),
		Master:  s.catalog.Master(),
	}
}

// Load fetches and parses a catalog file. An empty name loads the default
// file. Fetch failures surface as network AppErrors and unreadable or empty
// files as parsing AppErrors, each carrying the message shown to users.
func (s *DatasetService) Load(ctx context.Context, name string) (*domain.Table, error) {
	resolved, err := s.catalog.Resolve(name)
	if err != nil {
		return nil, err
	}

	ctx, span := infrastructure.StartSpan(ctx, "dataset.load", attribute.String("dataset.file", resolved))
	defer span.End()

	start := time.Now()
	table, err := s.load(ctx, resolved)
	infrastructure.RecordDatasetLoad(ctx, s.opts.Metrics, resolved, table.Len(), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "Loaded dataset",
		slog.String("file", resolved),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}

func (s *DatasetService) load(ctx context.Context, name string) (*domain.Table, error) {
	data, err := s.catalog.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateContent(name, data); err != nil {
		s.logger.WarnContext(ctx, "Rejected file content",
			slog.String("file", name),
			slog.String("error", err.Error()))
		return nil, apierrors.NewParsingError(loadMessage(err), err).WithContext("file", name)
	}

	table, err := dataprocessing.ParseBytes(name, data, dataprocessing.ParseOptions{
		NormalizeHeaders: s.catalog.IsMaster(name),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Parse failed",
			slog.String("file", name),
			slog.String("error", err.Error()))
		return nil, apierrors.NewParsingError(loadMessage(err), err).WithContext("file", name)
	}
	return table, nil
}

// loadMessage picks the user-visible message for a file that could not be
// turned into a table.
func loadMessage(err error) string {
	if errors.Is(err, dataprocessing.ErrNoRows) ||
		errors.Is(err, dataprocessing.ErrNoHeader) ||
		errors.Is(err, validation.ErrEmptyFile) {
		return config.ErrMsgNoRows
	}
	return config.ErrMsgLoadFailed
}

// GetView loads name and renders it with filters applied.
func (s *DatasetService) GetView(ctx context.Context, name string, filters domain.Filters) (*domain.TableView, error) {
	table, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	view := dataprocessing.BuildView(table, filters, s.viewOptions(table))
	infrastructure.RecordFilter(ctx, s.opts.Metrics, table.Name, view.TotalRows, view.ShownRows)
	return view, nil
}

// GetColumnValues returns the sorted unique non-blank values of column.
func (s *DatasetService) GetColumnValues(ctx context.Context, name, column string) ([]string, error) {
	table, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if !table.HasColumn(column) {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	return dataprocessing.UniqueValues(table, column, s.match(table)), nil
}

// ApplyToggles applies toggles in order to filters against the domains of
// name's columns and returns the resulting selection. filters is not
// modified. The master dataset compares values case-insensitively.
func (s *DatasetService) ApplyToggles(ctx context.Context, name string, filters domain.Filters, toggles []Toggle) (domain.Filters, error) {
	if len(toggles) == 0 {
		return filters, nil
	}

	table, err := s.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	match := s.match(table)
	out := filters
	for _, t := range toggles {
		if !table.HasColumn(t.Column) {
			return nil, apierrors.NewAppError(apierrors.ErrTypeValidation,
				fmt.Sprintf("unknown column %q", t.Column), ErrColumnNotFound).WithContext("file", table.Name)
		}
		values := dataprocessing.UniqueValues(table, t.Column, match)
		if t.All {
			out = dataprocessing.ToggleAll(out, t.Column, values, match)
		} else {
			out = dataprocessing.ToggleValue(out, t.Column, t.Value, values, match)
		}
	}
	return out, nil
}

// GetMasterReport loads the master dataset and builds its filter panel and
// summaries.
func (s *DatasetService) GetMasterReport(ctx context.Context, filters domain.Filters, policy string) (*domain.MasterReport, error) {
	p, err := dataprocessing.ParsePolicy(policy)
	if err != nil {
		return nil, apierrors.NewAppValidationError(err.Error())
	}

	master := s.catalog.Master()
	if master == "" {
		return nil, ErrNoMasterDataset
	}

	table, err := s.Load(ctx, master)
	if err != nil {
		return nil, err
	}

	report, err := s.analyzer.Analyze(table, filters, p)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrNoRows) {
			return nil, apierrors.NewParsingError(config.ErrMsgNoRows, err).WithContext("file", master)
		}
		return nil, err
	}

	infrastructure.RecordFilter(ctx, s.opts.Metrics, master, report.TotalRows, report.FilteredRows)
	infrastructure.RecordSummary(ctx, s.opts.Metrics, report.Policy)
	return report, nil
}

// GetSummary returns one summary of the master report.
func (s *DatasetService) GetSummary(ctx context.Context, id string, filters domain.Filters, policy string) (*domain.Summary, error) {
	if _, ok := dataprocessing.LookupSummary(id); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSummary, id)
	}
	report, err := s.GetMasterReport(ctx, filters, policy)
	if err != nil {
		return nil, err
	}
	return report.Summary(id), nil
}

// Export writes the requested view or summary to w and returns the suggested
// download file name.
func (s *DatasetService) Export(ctx context.Context, req ExportRequest, w io.Writer) (string, error) {
	var (
		view     *domain.TableView
		fileName string
		target   = "view"
	)

	if req.Summary != "" {
		summary, err := s.GetSummary(ctx, req.Summary, req.Filters, req.Policy)
		if err != nil {
			return "", err
		}
		view = &summary.View
		fileName = req.Format.FileName(summary.ID + "_summary")
		target = "summary"
	} else {
		resolved, err := s.catalog.Resolve(req.File)
		if err != nil {
			return "", err
		}
		view, err = s.GetView(ctx, resolved, req.Filters)
		if err != nil {
			return "", err
		}
		fileName = req.Format.FileName(resolved)
	}

	err := exporter.Write(w, view, req.Format, exporter.Options{
		BOMPrefix: req.BOM,
		Raw:       req.Raw,
		SheetName: view.Title,
	})
	if err != nil {
		return "", fmt.Errorf("export %s: %w", fileName, err)
	}

	infrastructure.RecordExport(ctx, s.opts.Metrics, target, string(req.Format))
	s.logger.InfoContext(ctx, "Export written",
		slog.String("target", target),
		slog.String("file_name", fileName),
		slog.Int("rows", view.ShownRows))
	return fileName, nil
}

func (s *DatasetService) viewOptions(table *domain.Table) dataprocessing.ViewOptions {
	return dataprocessing.ViewOptions{
		Title:           files.DisplayName(table.Name),
		HiddenColumns:   s.opts.HiddenColumns,
		CurrencyColumns: s.opts.CurrencyColumns,
		Match:           s.match(table),
	}
}

func (s *DatasetService) match(table *domain.Table) dataprocessing.MatchOptions {
	if s.catalog.IsMaster(table.Name) {
		return dataprocessing.MasterMatch
	}
	return dataprocessing.MatchOptions{}
}
