package lineage

import (
	model "github.com/tigerroll/riptide/internal/domain/model"
)

// --- Mapper functions ---

func toDomainExecutionRecord(entity *ExecutionLogEntity) *model.ExecutionRecord {
	if entity == nil {
		return nil
	}
	return &model.ExecutionRecord{
		ExecutionID:   entity.ExecutionID,
		BatchID:       entity.BatchID,
		ProcessName:   entity.ProcessName,
		Layer:         entity.Layer,
		Status:        model.ExecutionStatus(entity.Status),
		StartTime:     entity.StartTime,
		EndTime:       entity.EndTime,
		RowsProcessed: entity.RowsProcessed,
		ErrorMessage:  entity.ErrorMessage,
	}
}

func toDomainWatermark(entity *WatermarkEntity) *model.Watermark {
	if entity == nil {
		return nil
	}
	return &model.Watermark{
		ProcessName:            entity.ProcessName,
		LastProcessedTimestamp: entity.LastProcessedTimestamp,
		LastBatchID:            entity.LastBatchID,
	}
}
