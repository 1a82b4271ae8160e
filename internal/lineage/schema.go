package lineage

import "time"

// ExecutionLogEntity is the persistence schema for one audited process
// execution. Rows are append-only: closed records are never rewritten.
type ExecutionLogEntity struct {
	ExecutionID   string     `gorm:"column:execution_id;primaryKey"`
	BatchID       string     `gorm:"column:batch_id"`
	ProcessName   string     `gorm:"column:process_name"`
	Layer         string     `gorm:"column:layer"`
	Status        string     `gorm:"column:status"`
	StartTime     time.Time  `gorm:"column:start_time"`
	EndTime       *time.Time `gorm:"column:end_time"`
	RowsProcessed int        `gorm:"column:rows_processed"`
	ErrorMessage  *string    `gorm:"column:error_message"`
}

func (ExecutionLogEntity) TableName() string {
	return "pipeline_execution_log"
}

// WatermarkEntity is the persistence schema for the per-process watermark.
// The process name is the primary key; writes are upsert-only.
type WatermarkEntity struct {
	ProcessName            string    `gorm:"column:process_name;primaryKey"`
	LastProcessedTimestamp time.Time `gorm:"column:last_processed_timestamp"`
	LastBatchID            string    `gorm:"column:last_batch_id"`
}

func (WatermarkEntity) TableName() string {
	return "pipeline_watermark"
}
