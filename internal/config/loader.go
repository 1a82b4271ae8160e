package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/riptide/internal/support/exception"
	"github.com/tigerroll/riptide/internal/support/logger"
)

// LoadConfig loads configuration from the embedded YAML bytes, expanding
// ${VAR} environment variable placeholders before parsing. A .env file, if
// present, is loaded first so its variables participate in expansion.
// This function is expected to be called once during application startup.
func LoadConfig(envFilePath string, embedded []byte) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	// Expand ${VAR} / $VAR placeholders in the raw YAML before parsing.
	expanded := os.ExpandEnv(string(embedded))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, exception.NewETLError(moduleName, "failed to unmarshal embedded config", err)
	}

	logger.SetLogLevel(cfg.Riptide.System.Logging.Level)
	return cfg, nil
}
