package pipeline

import (
	"go.uber.org/fx"

	"github.com/tigerroll/riptide/internal/config"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/source"
	"github.com/tigerroll/riptide/internal/zone"
)

// NewStages builds the staged sequence in its fixed execution order. The
// export stage is appended only when exports are enabled.
func NewStages(cfg *config.Config, lineageStore *lineage.Store, zones *zone.Store, src *source.CSVSource) []Stage {
	stages := []Stage{
		NewExtractStage(lineageStore, zones, src, cfg.Riptide.Pipeline.SourceSystemTag),
		NewDimensionsStage(lineageStore, zones),
		NewFactsStage(lineageStore, zones),
		NewAggregateStage(lineageStore, zones),
	}
	if cfg.Riptide.Export.Enabled {
		stages = append(stages, NewExportStage(lineageStore, zones, cfg))
	}
	return stages
}

// Module is an Fx module that provides the pipeline stages and the
// Orchestrator.
var Module = fx.Options(
	fx.Provide(NewStages),
	fx.Provide(NewOrchestrator),
)
