package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Finora"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (FINORA_SERVER_PORT, ...).
	EnvPrefix = "FINORA"

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultExportsDir = "exports"
	DefaultLogsDir    = "logs"

	// Catalog
	DefaultMasterFile = "master_data.xlsx"

	// Network Timeouts
	DefaultHTTPTimeout = 30 * time.Second
	ProbeTimeout       = 10 * time.Second

	// User-visible load errors
	ErrMsgLoadFailed = "Failed to load file"
	ErrMsgNoRows     = "No rows found in file"

	// API Endpoints
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)

// DefaultCatalogFiles is the built-in file list; the first entry is selected
// when no file is requested.
var DefaultCatalogFiles = []string{
	"master_data.xlsx",
	"COA_PAK.xlsx",
	"COA_Japan_faulty.xlsx",
	"COA_SAUDI.xlsx",
	"COA_UAE.xlsx",
}
