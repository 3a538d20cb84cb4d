// Command coasummary prints a catalog spreadsheet or the master summaries in
// the terminal, optionally exporting the result as CSV or XLSX.
//
//	coasummary -file COA_UAE.xlsx -filter Category=Assets
//	coasummary -summary final -filter country=UAE -filter country=KSA
//	coasummary -summary group -export group.xlsx
//	coasummary -file COA_UAE.xlsx -toggle Category=Expenses
//	coasummary -list
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"finora/internal/config"
	"finora/internal/dataprocessing"
	apierrors "finora/internal/errors"
	"finora/internal/exporter"
	"finora/internal/files"
	"finora/internal/infrastructure"
	"finora/internal/services"
	"finora/internal/validation"
	"finora/pkg/contracts"
	"finora/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	summaryAll  = "all"
	summaryNone = "none"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	totalsColor  = color.New(color.FgGreen, color.Bold)
	titleColor   = color.New(color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	captionColor = color.New(color.Faint)
)

// filterFlag collects repeated -filter col=value arguments. "col=" alone
// selects nothing in col.
type filterFlag struct {
	filters domain.Filters
}

func (f *filterFlag) String() string {
	if f == nil || len(f.filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(f.filters))
	for _, col := range f.filters.Columns() {
		parts = append(parts, fmt.Sprintf("%s=%s", col, strings.Join(f.filters[col], "|")))
	}
	return strings.Join(parts, " ")
}

func (f *filterFlag) Set(s string) error {
	col, value, ok := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if !ok || col == "" {
		return fmt.Errorf("filter must look like column=value, got %q", s)
	}
	if f.filters == nil {
		f.filters = domain.Filters{}
	}
	if _, seen := f.filters[col]; !seen {
		f.filters[col] = []string{}
	}
	if value != "" {
		f.filters[col] = append(f.filters[col], value)
	}
	return nil
}

// toggleFlag collects repeated -toggle arguments in order. "col=value" flips
// one value of col's selection, a bare "col" flips between all and nothing.
type toggleFlag struct {
	toggles []services.Toggle
}

func (f *toggleFlag) String() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, len(f.toggles))
	for _, t := range f.toggles {
		if t.All {
			parts = append(parts, t.Column)
			continue
		}
		parts = append(parts, t.Column+"="+t.Value)
	}
	return strings.Join(parts, " ")
}

func (f *toggleFlag) Set(s string) error {
	col, value, hasValue := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if col == "" {
		return fmt.Errorf("toggle must look like column=value or column, got %q", s)
	}
	if hasValue && value == "" {
		return fmt.Errorf("toggle %q names no value; use %q to flip the whole column", s, col)
	}
	f.toggles = append(f.toggles, services.Toggle{Column: col, Value: value, All: !hasValue})
	return nil
}

type options struct {
	configPath string
	source     string
	file       string
	summary    string
	policy     string
	export     string
	filters    filterFlag
	toggles    toggleFlag
	limit      int
	bom        bool
	raw        bool
	list       bool
	verbose    bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("coasummary", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (defaults to config.yaml lookup)")
	fs.StringVar(&opts.source, "source", "", "directory holding the catalog files (overrides config)")
	fs.StringVar(&opts.file, "file", "", "catalog file to open (defaults to the first catalog entry)")
	fs.StringVar(&opts.summary, "summary", "", "master summary to show: subsidiary, group, final, all or none")
	fs.StringVar(&opts.policy, "policy", string(dataprocessing.PolicyFirstSeen), "conflict policy: first_seen or blank_on_conflict")
	fs.StringVar(&opts.export, "export", "", "write the result to a .csv or .xlsx file (bare names go to the exports directory)")
	fs.Var(&opts.filters, "filter", "column=value restriction, repeatable; column= selects nothing")
	fs.Var(&opts.toggles, "toggle", "column=value flips one value, column alone flips all or nothing; repeatable, applied after -filter")
	fs.IntVar(&opts.limit, "limit", 20, "maximum rows printed per table (0 prints all)")
	fs.BoolVar(&opts.bom, "bom", false, "prefix CSV exports with a UTF-8 BOM")
	fs.BoolVar(&opts.raw, "raw", false, "write CSV currency cells as plain numbers")
	fs.BoolVar(&opts.list, "list", false, "list catalog files and exit")
	fs.BoolVar(&opts.verbose, "v", false, "log at the configured level instead of warnings only")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.limit < 0 {
		return nil, fmt.Errorf("limit must not be negative")
	}
	if _, err := dataprocessing.ParsePolicy(opts.policy); err != nil {
		return nil, err
	}
	switch opts.summary {
	case "", summaryAll, summaryNone:
	default:
		if _, ok := dataprocessing.LookupSummary(opts.summary); !ok {
			return nil, fmt.Errorf("unknown summary %q", opts.summary)
		}
	}
	return opts, nil
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		errorColor.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		errorColor.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	logCfg := cfg.Logging
	if !opts.verbose {
		logCfg.Level = "warn"
	}
	logger := infrastructure.NewLogger(logCfg, stderr)
	slog.SetDefault(logger)

	catalog := newCatalog(cfg, logger)

	if opts.list {
		return listCatalog(cfg, catalog, stdout, stderr)
	}

	svc := services.NewDatasetService(catalog, services.DatasetOptions{
		HiddenColumns:   cfg.Catalog.HiddenColumns,
		CurrencyColumns: cfg.Catalog.CurrencyColumns,
		MaxFileSize:     cfg.Catalog.MaxFileSize,
	}, logger)

	name, err := catalog.Resolve(opts.file)
	if err != nil {
		errorColor.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	if len(opts.toggles.toggles) > 0 {
		filters, err := svc.ApplyToggles(ctx, name, opts.filters.filters, opts.toggles.toggles)
		if err != nil {
			errorColor.Fprintf(stderr, "error: %s\n", userMessage(err))
			return exitCode(err)
		}
		opts.filters.filters = filters
	}

	summary := opts.summary
	if summary == "" && catalog.IsMaster(name) {
		summary = summaryAll
	}
	if summary != "" && summary != summaryNone && !catalog.IsMaster(name) {
		errorColor.Fprintf(stderr, "error: summaries are only available for %s\n", catalog.Master())
		return exitUsage
	}
	if summary == summaryNone {
		summary = ""
	}

	if summary != "" {
		err = printMaster(ctx, svc, summary, opts, stdout)
	} else {
		err = printView(ctx, svc, name, opts, stdout)
	}
	if err != nil {
		errorColor.Fprintf(stderr, "error: %s\n", userMessage(err))
		return exitCode(err)
	}

	if opts.export != "" {
		if summary == summaryAll {
			errorColor.Fprintln(stderr, "error: choose one summary to export with -summary")
			return exitUsage
		}
		path, err := export(ctx, svc, cfg, services.ExportRequest{
			File:    name,
			Summary: summary,
			Filters: opts.filters.filters,
			Policy:  opts.policy,
			BOM:     opts.bom,
			Raw:     opts.raw,
		}, opts.export)
		if err != nil {
			errorColor.Fprintf(stderr, "error: export failed: %s\n", userMessage(err))
			return exitError
		}
		totalsColor.Fprintf(stdout, "exported %s\n", path)
	}

	return exitOK
}

func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.source != "" {
		cfg.Catalog.SourceDir = opts.source
		cfg.Catalog.BaseURL = ""
	}
	return cfg, nil
}

func newCatalog(cfg *config.Config, logger *slog.Logger) *files.Catalog {
	var fetcher files.Fetcher
	if cfg.Catalog.BaseURL != "" {
		fetcher = files.NewHTTPFetcher(cfg.Catalog.BaseURL, cfg.Catalog.FetchTimeout)
	} else {
		fetcher = files.NewDirFetcher(cfg.GetSourceDir())
	}
	return files.NewCatalog(cfg.Catalog.Files, cfg.Catalog.MasterFile, fetcher, logger)
}

// exitCode treats validation failures as usage errors and everything else as
// runtime failures.
func exitCode(err error) int {
	if apierrors.IsType(err, apierrors.ErrTypeValidation) {
		return exitUsage
	}
	return exitError
}

// userMessage prefers the message an AppError carries for users over the
// full wrapped error chain.
func userMessage(err error) string {
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		if file, ok := appErr.Context["file"]; ok {
			return fmt.Sprintf("%s (%v)", appErr.Message, file)
		}
		return appErr.Message
	}
	return err.Error()
}

func listCatalog(cfg *config.Config, catalog *files.Catalog, stdout, stderr io.Writer) int {
	titleColor.Fprintf(stdout, "Catalog (%s)\n", catalog.Source())

	var missing map[string]bool
	if cfg.Catalog.BaseURL == "" {
		found, err := files.NewDiscovery(cfg.Paths.ExecutableDir).FindSpreadsheets(cfg.GetSourceDir())
		if err != nil {
			errorColor.Fprintf(stderr, "error: %v\n", err)
			return exitError
		}
		missing = make(map[string]bool)
		for _, name := range files.Missing(catalog.Files(), found) {
			missing[name] = true
		}
	}

	for _, entry := range catalog.Entries() {
		var marks []string
		if entry.Default {
			marks = append(marks, "default")
		}
		if entry.Master {
			marks = append(marks, "master")
		}
		line := fmt.Sprintf("  %-28s %-24s", entry.Name, entry.DisplayName)
		if len(marks) > 0 {
			line += " [" + strings.Join(marks, ", ") + "]"
		}
		if missing[entry.Name] {
			warnColor.Fprintln(stdout, line+" missing")
			continue
		}
		fmt.Fprintln(stdout, line)
	}
	return exitOK
}

func printView(ctx context.Context, svc *services.DatasetService, name string, opts *options, out io.Writer) error {
	view, err := svc.GetView(ctx, name, opts.filters.filters)
	if err != nil {
		return err
	}
	printTable(out, view, opts.limit)
	return nil
}

func printMaster(ctx context.Context, svc *services.DatasetService, summary string, opts *options, out io.Writer) error {
	report, err := svc.GetMasterReport(ctx, opts.filters.filters, opts.policy)
	if err != nil {
		return err
	}

	for _, panel := range report.Filters {
		if panel.AllSelected {
			continue
		}
		captionColor.Fprintf(out, "%s: %s\n", panel.Label, strings.Join(panel.Selected, ", "))
	}
	captionColor.Fprintf(out, "%d of %d rows match (policy %s)\n\n", report.FilteredRows, report.TotalRows, report.Policy)

	for _, s := range report.Summaries {
		if summary != summaryAll && s.ID != summary {
			continue
		}
		view := s.View
		printTable(out, &view, opts.limit)
		for col, n := range s.Conflicts {
			warnColor.Fprintf(out, "  %s differed within %d groups\n", col, n)
		}
		fmt.Fprintln(out)
	}
	return nil
}

// printTable renders a view with tabwriter. Whole lines are colored after
// alignment so escape codes never skew column widths.
func printTable(out io.Writer, view *domain.TableView, limit int) {
	if view.Title != "" {
		titleColor.Fprintln(out, view.Title)
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(view.ColumnNames(), "\t"))

	rows := view.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if len(view.Totals) > 0 && len(view.Rows) > 0 {
		fmt.Fprintln(tw, strings.Join(view.Totals, "\t"))
	}
	tw.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			headerColor.Fprintln(out, line)
		case len(view.Totals) > 0 && len(view.Rows) > 0 && i == len(lines)-1:
			totalsColor.Fprintln(out, line)
		default:
			fmt.Fprintln(out, line)
		}
	}

	if len(rows) < len(view.Rows) {
		captionColor.Fprintf(out, "... %d more rows\n", len(view.Rows)-len(rows))
	}
	if view.Caption != "" {
		captionColor.Fprintln(out, view.Caption)
	}
}

func export(ctx context.Context, svc *services.DatasetService, cfg *config.Config, req services.ExportRequest, target string) (string, error) {
	format, err := exporter.ParseFormat(filepath.Ext(target))
	if err != nil {
		return "", err
	}
	req.Format = format

	// Render fully before touching the target so a failed load leaves no file.
	var buf bytes.Buffer
	if _, err := svc.Export(ctx, req, &buf); err != nil {
		return "", err
	}

	manager := files.NewManager(cfg.ResolvedPaths())
	if err := validation.NewFileValidator(slog.Default()).ValidateOutputDirectory(filepath.Dir(manager.Resolve(target))); err != nil {
		return "", err
	}

	f, path, err := manager.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
