package source

import (
	"go.uber.org/fx"

	"github.com/tigerroll/riptide/internal/config"
)

// NewCSVSourceFromConfig builds the CSV source from the configured sources
// directory.
func NewCSVSourceFromConfig(cfg *config.Config) *CSVSource {
	return NewCSVSource(cfg.Riptide.Pipeline.SourcesDir)
}

// Module is an Fx module that provides the CSV source.
var Module = fx.Options(
	fx.Provide(NewCSVSourceFromConfig),
)
