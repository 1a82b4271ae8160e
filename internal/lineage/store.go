// Package lineage implements the audit store: a durable, queryable record of
// what ran, when, and with what outcome, plus per-process watermarks. The
// execution log is append-only (a record is created STARTED and closed
// exactly once with a terminal status); the watermark table is upsert-only
// with one row per process name.
//
// Every operation is independently transactional: each call is its own unit
// of work, and no transaction spans begin/end. A crash between Begin and End
// therefore leaves a permanently STARTED record; readers must treat such rows
// as abandoned, never heal them.
package lineage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tigerroll/riptide/internal/adapter/database"
	"github.com/tigerroll/riptide/internal/config"
	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/support/exception"
	"github.com/tigerroll/riptide/internal/support/logger"
)

const moduleName = "lineage"

// Store is the lineage store handle. A fresh batch id is minted when the
// store is opened and stamped onto every execution record of the run.
type Store struct {
	db      *gorm.DB
	batchID string
}

// NewStore opens the lineage store from the named "lineage" database
// configuration, applies schema migrations, and mints the batch id for this
// run.
func NewStore(cfg *config.Config) (*Store, error) {
	dbCfg, err := cfg.DatabaseConfigFor(config.DBRefLineage)
	if err != nil {
		return nil, err
	}
	return Open(dbCfg)
}

// Open opens the lineage store against the given database configuration.
func Open(dbCfg database.DatabaseConfig) (*Store, error) {
	gormDB, err := database.Open(dbCfg)
	if err != nil {
		return nil, err
	}
	if err := migrateSchema(gormDB, dbCfg.Type); err != nil {
		return nil, err
	}

	s := &Store{
		db:      gormDB,
		batchID: uuid.NewString(),
	}
	logger.Infof("Lineage store opened. Batch ID: %s", s.batchID)
	return s, nil
}

// BatchID returns the batch identifier minted for this run.
func (s *Store) BatchID() string {
	return s.batchID
}

// Begin creates an execution record in STARTED state for the given process
// and layer, and returns its execution id. A storage failure here must abort
// the calling stage.
func (s *Store) Begin(ctx context.Context, processName, layer string) (string, error) {
	entity := &ExecutionLogEntity{
		ExecutionID: uuid.NewString(),
		BatchID:     s.batchID,
		ProcessName: processName,
		Layer:       layer,
		Status:      model.StatusStarted.String(),
		StartTime:   time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return "", exception.NewETLError(moduleName,
			fmt.Sprintf("failed to log start of process '%s'", processName), err)
	}
	return entity.ExecutionID, nil
}

// End transitions the named record to a terminal status, recording end time,
// row count, and optional error text. Calling End twice on the same id is
// undefined; the record is never expected to transition a second time.
func (s *Store) End(ctx context.Context, executionID string, status model.ExecutionStatus, rowsProcessed int, errorMessage string) error {
	if !status.IsTerminal() {
		return exception.NewETLErrorf(moduleName, "cannot close execution '%s' with non-terminal status %s", executionID, status)
	}

	endTime := time.Now().UTC()
	updates := map[string]interface{}{
		"status":         status.String(),
		"end_time":       endTime,
		"rows_processed": rowsProcessed,
		"error_message":  nil,
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}

	res := s.db.WithContext(ctx).
		Model(&ExecutionLogEntity{}).
		Where("execution_id = ?", executionID).
		Updates(updates)
	if res.Error != nil {
		return exception.NewETLError(moduleName,
			fmt.Sprintf("failed to log end of execution '%s'", executionID), res.Error)
	}
	if res.RowsAffected == 0 {
		return exception.NewETLErrorf(moduleName, "no execution record found for id '%s'", executionID)
	}
	return nil
}

// GetWatermark returns the last recorded timestamp for the process, or the
// fixed sentinel far in the past when no row exists. A missing watermark
// table is tolerated, not fatal.
func (s *Store) GetWatermark(ctx context.Context, processName string) (time.Time, error) {
	if !s.db.Migrator().HasTable(&WatermarkEntity{}) {
		return model.WatermarkSentinel, nil
	}

	var entity WatermarkEntity
	err := s.db.WithContext(ctx).
		Where("process_name = ?", processName).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.WatermarkSentinel, nil
	}
	if err != nil {
		return time.Time{}, exception.NewETLError(moduleName,
			fmt.Sprintf("failed to read watermark for process '%s'", processName), err)
	}
	return toDomainWatermark(&entity).LastProcessedTimestamp, nil
}

// UpdateWatermark upserts the single watermark row for the process name.
func (s *Store) UpdateWatermark(ctx context.Context, processName string, timestamp time.Time, batchID string) error {
	entity := &WatermarkEntity{
		ProcessName:            processName,
		LastProcessedTimestamp: timestamp,
		LastBatchID:            batchID,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "process_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_processed_timestamp", "last_batch_id"}),
		}).
		Create(entity).Error
	if err != nil {
		return exception.NewETLError(moduleName,
			fmt.Sprintf("failed to update watermark for process '%s'", processName), err)
	}
	return nil
}

// ExecutionsForBatch returns the execution records of one batch ordered by
// start time. Overall run health is inferred by reading the log; there is no
// separate terminal "run" record.
func (s *Store) ExecutionsForBatch(ctx context.Context, batchID string) ([]*model.ExecutionRecord, error) {
	var entities []ExecutionLogEntity
	err := s.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("start_time").
		Find(&entities).Error
	if err != nil {
		return nil, exception.NewETLError(moduleName,
			fmt.Sprintf("failed to read execution log for batch '%s'", batchID), err)
	}

	records := make([]*model.ExecutionRecord, 0, len(entities))
	for i := range entities {
		records = append(records, toDomainExecutionRecord(&entities[i]))
	}
	return records, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return exception.NewETLError(moduleName, "failed to get underlying sql.DB on close", err)
	}
	return sqlDB.Close()
}
