// Package config provides centralized configuration management for Finora.
// It handles loading configuration from multiple sources, validation, and
// path resolution relative to the executable.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables that are explicitly set (highest priority)
//	2. A YAML configuration file (config.yaml, configs/config.yaml or FINORA_CONFIG_FILE)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FINORA_<SECTION>_<FIELD>:
//
//	FINORA_SERVER_PORT=8080
//	FINORA_CATALOG_SOURCE_DIR=/srv/coa
//	FINORA_CATALOG_BASE_URL=https://files.example.com/coa
//	FINORA_CATALOG_FILES=master_data.xlsx,COA_UAE.xlsx
//	FINORA_LOGGING_LEVEL=debug
//
// # Catalog
//
// The catalog section names the spreadsheets offered to users. The first file
// is the default selection and MasterFile gets the summary treatment. Files
// are read from SourceDir (the data directory by default) unless BaseURL is
// set, in which case each file is fetched from BaseURL/<name>.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths := cfg.ResolvedPaths()
//
// For tests, config.Default() returns a configuration that needs no
// environment or files.
package config
