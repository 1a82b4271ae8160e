// Package config provides the explicit configuration value object for the
// riptide pipeline. It is constructed once at startup and passed to every
// component that needs storage locations or tuning; there is no process-wide
// configuration lookup.
package config

import (
	"github.com/mitchellh/mapstructure"

	"github.com/tigerroll/riptide/internal/adapter/database"
	"github.com/tigerroll/riptide/internal/adapter/storage"
	"github.com/tigerroll/riptide/internal/support/exception"
)

const moduleName = "config"

// Named database connections the pipeline resolves from configuration.
const (
	DBRefLineage = "lineage"
	DBRefRaw     = "raw"
	DBRefCurated = "curated"
	DBRefGold    = "gold"
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// PipelineConfig holds settings for the batch run itself.
type PipelineConfig struct {
	// SourcesDir is the directory holding the flat source files.
	SourcesDir string `yaml:"sources_dir"`
	// SourceSystemTag is stamped into the source_system column of every Raw row.
	SourceSystemTag string `yaml:"source_system_tag"`
	// BatchSize is the insert batch size for zone table writes.
	BatchSize int `yaml:"batch_size"`
}

// ExportConfig holds settings for the optional Gold Parquet export step.
type ExportConfig struct {
	Enabled bool `yaml:"enabled"`
	// StorageRef is the name of the storage connection to export through.
	StorageRef string `yaml:"storage_ref"`
	// OutputBaseDir is the base path within the storage target for exported files.
	OutputBaseDir string `yaml:"output_base_dir"`
}

// MetricsConfig holds settings for the Prometheus metrics endpoint.
type MetricsConfig struct {
	// ListenAddr is the address to serve /metrics on. Empty disables the endpoint.
	ListenAddr string `yaml:"listen_addr"`
}

// TracingConfig holds settings for the OTLP trace exporter.
type TracingConfig struct {
	// Endpoint is the OTLP/HTTP collector endpoint (host:port). Empty disables tracing.
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS toward the collector.
	Insecure bool `yaml:"insecure"`
}

// RiptideConfig holds all configuration under the "riptide" top-level key.
type RiptideConfig struct {
	System   SystemConfig   `yaml:"system"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Export   ExportConfig   `yaml:"export"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	// Databases holds named database connection configs ("lineage", "raw",
	// "curated", "gold"), decoded per connection on demand.
	Databases map[string]interface{} `yaml:"databases"`
	// Storages holds named storage connection configs for the export step.
	Storages map[string]interface{} `yaml:"storages"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Riptide RiptideConfig `yaml:"riptide"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Riptide: RiptideConfig{
			System: SystemConfig{
				Logging: LoggingConfig{Level: "INFO"},
			},
			Pipeline: PipelineConfig{
				SourcesDir:      "data/sources",
				SourceSystemTag: "CSV_Source",
				BatchSize:       500,
			},
			Export: ExportConfig{
				StorageRef:    "export",
				OutputBaseDir: "gold",
			},
		},
	}
}

// DatabaseConfigFor decodes the named database connection configuration.
func (c *Config) DatabaseConfigFor(name string) (database.DatabaseConfig, error) {
	var dbCfg database.DatabaseConfig
	raw, ok := c.Riptide.Databases[name]
	if !ok {
		return dbCfg, exception.NewETLErrorf(moduleName, "database configuration '%s' not found", name)
	}
	if err := mapstructure.Decode(raw, &dbCfg); err != nil {
		return dbCfg, exception.NewETLError(moduleName, "failed to decode database config '"+name+"'", err)
	}
	return dbCfg, nil
}

// StorageConfigFor decodes the named storage connection configuration.
func (c *Config) StorageConfigFor(name string) (storage.StorageConfig, error) {
	var stCfg storage.StorageConfig
	raw, ok := c.Riptide.Storages[name]
	if !ok {
		return stCfg, exception.NewETLErrorf(moduleName, "storage configuration '%s' not found", name)
	}
	if err := mapstructure.Decode(raw, &stCfg); err != nil {
		return stCfg, exception.NewETLError(moduleName, "failed to decode storage config '"+name+"'", err)
	}
	return stCfg, nil
}
