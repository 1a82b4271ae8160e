package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/metrics"
	"github.com/tigerroll/riptide/internal/support/exception"
	"github.com/tigerroll/riptide/internal/support/logger"
)

// Orchestrator runs the pipeline stages in their fixed order and halts on
// the first stage that does not succeed. Stages already completed stay
// completed; their zone writes and lineage records are not rolled back.
type Orchestrator struct {
	lineage  *lineage.Store
	recorder *metrics.Recorder
	stages   []Stage
}

func NewOrchestrator(lineageStore *lineage.Store, recorder *metrics.Recorder, stages []Stage) *Orchestrator {
	return &Orchestrator{lineage: lineageStore, recorder: recorder, stages: stages}
}

// Run executes the staged sequence under one batch id. It returns the
// results of every stage that ran, and an error when the run halted early.
// The caller can correlate the results with the execution log through the
// lineage store's batch id.
func (o *Orchestrator) Run(ctx context.Context) ([]model.StageResult, error) {
	tracer := otel.Tracer("riptide/pipeline")
	ctx, runSpan := tracer.Start(ctx, "pipeline.run",
		oteltrace.WithAttributes(attribute.String("batch.id", o.lineage.BatchID())))
	defer runSpan.End()

	logger.Infof("Pipeline run started. BatchID: %s", o.lineage.BatchID())

	results := make([]model.StageResult, 0, len(o.stages))
	for _, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			runSpan.SetStatus(codes.Error, "run cancelled")
			return results, exception.NewETLError(moduleName, "pipeline run cancelled", err)
		}

		stageCtx, stageSpan := tracer.Start(ctx, "pipeline.stage",
			oteltrace.WithAttributes(
				attribute.String("stage.name", stage.Name()),
				attribute.String("stage.layer", stage.Layer()),
			))

		start := time.Now()
		result := stage.Run(stageCtx)
		duration := time.Since(start)

		o.recorder.RecordStage(stageCtx, result, duration)
		results = append(results, result)

		if !result.Success() {
			stageSpan.RecordError(result.Err)
			stageSpan.SetStatus(codes.Error, "stage failed")
			stageSpan.End()
			runSpan.SetStatus(codes.Error, "run halted")
			logger.Errorf("Pipeline run halted at stage '%s'.", stage.Name())
			return results, exception.NewETLError(moduleName,
				"pipeline run halted at stage '"+stage.Name()+"'", result.Err)
		}
		stageSpan.SetStatus(codes.Ok, "")
		stageSpan.End()
	}

	logger.Infof("Pipeline run completed. BatchID: %s, Stages: %d", o.lineage.BatchID(), len(results))
	return results, nil
}
