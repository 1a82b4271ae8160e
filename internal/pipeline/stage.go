// Package pipeline implements the medallion run: extraction into Raw,
// dimension and fact loads into Curated, aggregation into Gold, the optional
// Parquet export, and the orchestrator that sequences them. Every stage runs
// under the audit harness so each execution is logged and watermarked.
package pipeline

import (
	"context"
	"time"

	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/support/logger"
)

const moduleName = "pipeline"

// Stage is one audited unit of pipeline work. Run never panics on business
// failures; it reports them through the StageResult and its Err field.
type Stage interface {
	Name() string
	Layer() string
	Run(ctx context.Context) model.StageResult
}

// runAudited wraps a stage body with the execution-log lifecycle:
// a STARTED record before the work, then on success a watermark update
// followed by a SUCCESS close, or on failure a FAILED close carrying the
// error message. A failure to open or close the log fails the stage itself;
// work whose outcome cannot be recorded is treated as not having happened.
func runAudited(ctx context.Context, store *lineage.Store, processName, layer string, fn func(ctx context.Context) (int, error)) model.StageResult {
	result := model.StageResult{ProcessName: processName}

	executionID, err := store.Begin(ctx, processName, layer)
	if err != nil {
		result.Status = model.StatusFailed
		result.Err = err
		return result
	}
	logger.Infof("Process '%s' started. ExecutionID: %s", processName, executionID)

	rows, err := fn(ctx)
	if err != nil {
		result.Status = model.StatusFailed
		result.RowsProcessed = rows
		result.Err = err
		if endErr := store.End(ctx, executionID, model.StatusFailed, rows, err.Error()); endErr != nil {
			logger.Errorf("Failed to close execution log for '%s': %v", processName, endErr)
		}
		logger.Errorf("Process '%s' failed: %v", processName, err)
		return result
	}

	if err := store.UpdateWatermark(ctx, processName, time.Now().UTC(), store.BatchID()); err != nil {
		result.Status = model.StatusFailed
		result.RowsProcessed = rows
		result.Err = err
		if endErr := store.End(ctx, executionID, model.StatusFailed, rows, err.Error()); endErr != nil {
			logger.Errorf("Failed to close execution log for '%s': %v", processName, endErr)
		}
		return result
	}

	if err := store.End(ctx, executionID, model.StatusSuccess, rows, ""); err != nil {
		result.Status = model.StatusFailed
		result.RowsProcessed = rows
		result.Err = err
		return result
	}

	result.Status = model.StatusSuccess
	result.RowsProcessed = rows
	logger.Infof("Process '%s' succeeded. Rows: %d", processName, rows)
	return result
}
