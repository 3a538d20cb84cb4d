package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Catalog   CatalogConfig   `yaml:"catalog" envconfig:"CATALOG"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"45s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ExportsDir    string `yaml:"exports_dir" envconfig:"EXPORTS_DIR" default:"exports"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// CatalogConfig describes where spreadsheets come from and how they are shown.
type CatalogConfig struct {
	// SourceDir is read when BaseURL is empty. Defaults to the data directory.
	SourceDir string `yaml:"source_dir" envconfig:"SOURCE_DIR"`
	// BaseURL serves catalog files over HTTP as BaseURL/<name>.
	BaseURL         string        `yaml:"base_url" envconfig:"BASE_URL"`
	Files           []string      `yaml:"files" envconfig:"FILES" default:"master_data.xlsx,COA_PAK.xlsx,COA_Japan_faulty.xlsx,COA_SAUDI.xlsx,COA_UAE.xlsx"`
	MasterFile      string        `yaml:"master_file" envconfig:"MASTER_FILE" default:"master_data.xlsx"`
	HiddenColumns   []string      `yaml:"hidden_columns" envconfig:"HIDDEN_COLUMNS" default:"Forex_Rate"`
	CurrencyColumns []string      `yaml:"currency_columns" envconfig:"CURRENCY_COLUMNS" default:"local_currency_amount,global_currency_amount"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"30s"`
	MaxFileSize     int64         `yaml:"max_file_size" envconfig:"MAX_FILE_SIZE" default:"52428800"`
}

// TelemetryConfig controls tracing and metrics export.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"finora"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED" default:"false"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile loads configuration from environment variables merged over the
// YAML file at path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileConfig, err := loadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg, envSet)
		}
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envSet reports whether an environment variable was set explicitly.
func envSet(name string) bool {
	_, ok := os.LookupEnv(EnvPrefix + "_" + name)
	return ok
}

// mergeConfigs merges file config with env config. Values from the file win
// over envconfig defaults; explicitly set environment variables win over both.
func mergeConfigs(fileConfig, envConfig Config, isSet func(string) bool) Config {
	pickInt := func(name string, dst *int, v int) {
		if v != 0 && !isSet(name) {
			*dst = v
		}
	}
	pickInt64 := func(name string, dst *int64, v int64) {
		if v != 0 && !isSet(name) {
			*dst = v
		}
	}
	pickDur := func(name string, dst *time.Duration, v time.Duration) {
		if v != 0 && !isSet(name) {
			*dst = v
		}
	}
	pickStr := func(name string, dst *string, v string) {
		if v != "" && !isSet(name) {
			*dst = v
		}
	}
	pickList := func(name string, dst *[]string, v []string) {
		if len(v) > 0 && !isSet(name) {
			*dst = v
		}
	}

	// Server config
	pickInt("SERVER_PORT", &envConfig.Server.Port, fileConfig.Server.Port)
	pickDur("SERVER_READ_TIMEOUT", &envConfig.Server.ReadTimeout, fileConfig.Server.ReadTimeout)
	pickDur("SERVER_WRITE_TIMEOUT", &envConfig.Server.WriteTimeout, fileConfig.Server.WriteTimeout)
	pickDur("SERVER_IDLE_TIMEOUT", &envConfig.Server.IdleTimeout, fileConfig.Server.IdleTimeout)
	pickDur("SERVER_SHUTDOWN_TIMEOUT", &envConfig.Server.ShutdownTimeout, fileConfig.Server.ShutdownTimeout)
	pickDur("SERVER_REQUEST_TIMEOUT", &envConfig.Server.RequestTimeout, fileConfig.Server.RequestTimeout)

	// Security config
	pickList("SECURITY_ALLOWED_ORIGINS", &envConfig.Security.AllowedOrigins, fileConfig.Security.AllowedOrigins)

	// Logging config
	pickStr("LOGGING_LEVEL", &envConfig.Logging.Level, fileConfig.Logging.Level)
	pickStr("LOGGING_OUTPUT", &envConfig.Logging.Output, fileConfig.Logging.Output)
	pickStr("LOGGING_FILE_PATH", &envConfig.Logging.FilePath, fileConfig.Logging.FilePath)

	// Paths config
	pickStr("PATHS_DATA_DIR", &envConfig.Paths.DataDir, fileConfig.Paths.DataDir)
	pickStr("PATHS_EXPORTS_DIR", &envConfig.Paths.ExportsDir, fileConfig.Paths.ExportsDir)
	pickStr("PATHS_LOGS_DIR", &envConfig.Paths.LogsDir, fileConfig.Paths.LogsDir)

	// Catalog config
	pickStr("CATALOG_SOURCE_DIR", &envConfig.Catalog.SourceDir, fileConfig.Catalog.SourceDir)
	pickStr("CATALOG_BASE_URL", &envConfig.Catalog.BaseURL, fileConfig.Catalog.BaseURL)
	pickList("CATALOG_FILES", &envConfig.Catalog.Files, fileConfig.Catalog.Files)
	pickStr("CATALOG_MASTER_FILE", &envConfig.Catalog.MasterFile, fileConfig.Catalog.MasterFile)
	pickList("CATALOG_HIDDEN_COLUMNS", &envConfig.Catalog.HiddenColumns, fileConfig.Catalog.HiddenColumns)
	pickList("CATALOG_CURRENCY_COLUMNS", &envConfig.Catalog.CurrencyColumns, fileConfig.Catalog.CurrencyColumns)
	pickDur("CATALOG_FETCH_TIMEOUT", &envConfig.Catalog.FetchTimeout, fileConfig.Catalog.FetchTimeout)
	pickInt64("CATALOG_MAX_FILE_SIZE", &envConfig.Catalog.MaxFileSize, fileConfig.Catalog.MaxFileSize)

	// Telemetry config
	pickStr("TELEMETRY_SERVICE_NAME", &envConfig.Telemetry.ServiceName, fileConfig.Telemetry.ServiceName)
	pickStr("TELEMETRY_ENVIRONMENT", &envConfig.Telemetry.Environment, fileConfig.Telemetry.Environment)

	return envConfig
}

// resolvePaths anchors relative directories at the executable directory.
func (c *Config) resolvePaths() error {
	if c.Paths.ExecutableDir == "" {
		paths, err := GetPaths()
		if err != nil {
			return fmt.Errorf("failed to get paths: %w", err)
		}
		c.Paths.ExecutableDir = paths.ExecutableDir
	}
	return nil
}

// ResolvedPaths returns the application paths derived from this configuration.
func (c *Config) ResolvedPaths() *Paths {
	return NewPaths(c.Paths.ExecutableDir, c.Paths)
}

// GetSourceDir returns the directory catalog files are read from.
func (c *Config) GetSourceDir() string {
	if c.Catalog.SourceDir == "" {
		return c.ResolvedPaths().DataDir
	}
	return c.resolve(c.Catalog.SourceDir)
}

// GetLogFile returns the resolved log file path.
func (c *Config) GetLogFile() string {
	return c.resolve(c.Logging.FilePath)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.ExecutableDir, p)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if len(c.Catalog.Files) == 0 {
		return fmt.Errorf("catalog must list at least one file")
	}

	if c.Catalog.MasterFile != "" && !containsFile(c.Catalog.Files, c.Catalog.MasterFile) {
		return fmt.Errorf("master file %q is not in the catalog", c.Catalog.MasterFile)
	}

	if c.Catalog.MaxFileSize < 0 {
		return fmt.Errorf("catalog max file size must not be negative")
	}

	if c.Catalog.BaseURL != "" && !strings.HasPrefix(c.Catalog.BaseURL, "http://") &&
		!strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		return fmt.Errorf("catalog base url must be http or https: %s", c.Catalog.BaseURL)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

func containsFile(files []string, name string) bool {
	for _, f := range files {
		if f == name {
			return true
		}
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  45 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ExportsDir: DefaultExportsDir,
			LogsDir:    DefaultLogsDir,
		},
		Catalog: CatalogConfig{
			Files:           append([]string{}, DefaultCatalogFiles...),
			MasterFile:      DefaultMasterFile,
			HiddenColumns:   []string{"Forex_Rate"},
			CurrencyColumns: []string{"local_currency_amount", "global_currency_amount"},
			FetchTimeout:    30 * time.Second,
			MaxFileSize:     50 << 20,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "finora",
			Environment:    "development",
			MetricsEnabled: true,
		},
	}
}
