package lineage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/riptide/internal/adapter/database"
	model "github.com/tigerroll/riptide/internal/domain/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(database.DatabaseConfig{
		Type:     "sqlite",
		Database: ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginCreatesStartedRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	executionID, err := store.Begin(ctx, "Extract_Source_to_Raw", "Raw")
	require.NoError(t, err)
	assert.NotEmpty(t, executionID)

	records, err := store.ExecutionsForBatch(ctx, store.BatchID())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, executionID, rec.ExecutionID)
	assert.Equal(t, store.BatchID(), rec.BatchID)
	assert.Equal(t, "Extract_Source_to_Raw", rec.ProcessName)
	assert.Equal(t, "Raw", rec.Layer)
	assert.Equal(t, model.StatusStarted, rec.Status)
	assert.Nil(t, rec.EndTime)
	assert.Nil(t, rec.ErrorMessage)
}

func TestEndClosesRecordWithSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	executionID, err := store.Begin(ctx, "Load_Dimensions", "Curated")
	require.NoError(t, err)

	err = store.End(ctx, executionID, model.StatusSuccess, 42, "")
	require.NoError(t, err)

	records, err := store.ExecutionsForBatch(ctx, store.BatchID())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, model.StatusSuccess, rec.Status)
	assert.Equal(t, 42, rec.RowsProcessed)
	require.NotNil(t, rec.EndTime)
	assert.False(t, rec.EndTime.Before(rec.StartTime))
	assert.Nil(t, rec.ErrorMessage)
}

func TestEndClosesRecordWithFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	executionID, err := store.Begin(ctx, "Load_Facts", "Curated")
	require.NoError(t, err)

	err = store.End(ctx, executionID, model.StatusFailed, 0, "order 'O-1' has an invalid order_date")
	require.NoError(t, err)

	records, err := store.ExecutionsForBatch(ctx, store.BatchID())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, model.StatusFailed, rec.Status)
	require.NotNil(t, rec.ErrorMessage)
	assert.Contains(t, *rec.ErrorMessage, "invalid order_date")
}

func TestEndRejectsNonTerminalStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	executionID, err := store.Begin(ctx, "Aggregate_Gold", "Gold")
	require.NoError(t, err)

	err = store.End(ctx, executionID, model.StatusStarted, 0, "")
	assert.Error(t, err)
}

func TestEndRejectsUnknownExecutionID(t *testing.T) {
	store := newTestStore(t)

	err := store.End(context.Background(), uuid.NewString(), model.StatusSuccess, 0, "")
	assert.Error(t, err)
}

func TestAbandonedStartedRecordStaysStarted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	abandoned, err := store.Begin(ctx, "Extract_Source_to_Raw", "Raw")
	require.NoError(t, err)

	closed, err := store.Begin(ctx, "Extract_Source_to_Raw", "Raw")
	require.NoError(t, err)
	require.NoError(t, store.End(ctx, closed, model.StatusSuccess, 10, ""))

	records, err := store.ExecutionsForBatch(ctx, store.BatchID())
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := make(map[string]*model.ExecutionRecord, len(records))
	for _, rec := range records {
		byID[rec.ExecutionID] = rec
	}
	assert.Equal(t, model.StatusStarted, byID[abandoned].Status)
	assert.Nil(t, byID[abandoned].EndTime)
	assert.Equal(t, model.StatusSuccess, byID[closed].Status)
}

func TestGetWatermarkReturnsSentinelWhenAbsent(t *testing.T) {
	store := newTestStore(t)

	ts, err := store.GetWatermark(context.Background(), "Never_Ran")
	require.NoError(t, err)
	assert.True(t, ts.Equal(model.WatermarkSentinel))
}

func TestGetWatermarkToleratesMissingTable(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.db.Migrator().DropTable(&WatermarkEntity{}))

	ts, err := store.GetWatermark(context.Background(), "Extract_Source_to_Raw")
	require.NoError(t, err)
	assert.True(t, ts.Equal(model.WatermarkSentinel))
}

func TestUpdateWatermarkUpsertsSingleRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpdateWatermark(ctx, "Load_Facts", first, "batch-1"))
	require.NoError(t, store.UpdateWatermark(ctx, "Load_Facts", second, "batch-2"))

	var count int64
	require.NoError(t, store.db.Model(&WatermarkEntity{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	ts, err := store.GetWatermark(ctx, "Load_Facts")
	require.NoError(t, err)
	assert.True(t, ts.Equal(second))

	var entity WatermarkEntity
	require.NoError(t, store.db.Where("process_name = ?", "Load_Facts").First(&entity).Error)
	assert.Equal(t, "batch-2", entity.LastBatchID)
}

func TestWatermarksAreIndependentPerProcess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tsFacts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tsDims := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpdateWatermark(ctx, "Load_Facts", tsFacts, "b"))
	require.NoError(t, store.UpdateWatermark(ctx, "Load_Dimensions", tsDims, "b"))

	got, err := store.GetWatermark(ctx, "Load_Facts")
	require.NoError(t, err)
	assert.True(t, got.Equal(tsFacts))

	got, err = store.GetWatermark(ctx, "Load_Dimensions")
	require.NoError(t, err)
	assert.True(t, got.Equal(tsDims))
}

func TestFreshStoresMintDistinctBatchIDs(t *testing.T) {
	first := newTestStore(t)
	second := newTestStore(t)

	assert.NotEmpty(t, first.BatchID())
	assert.NotEqual(t, first.BatchID(), second.BatchID())
}

func TestBeginSurfacesStorageFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `pipeline_execution_log`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	gormDB, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	store := &Store{db: gormDB, batchID: uuid.NewString()}

	_, err = store.Begin(context.Background(), "Extract_Source_to_Raw", "Raw")
	assert.Error(t, err)
}
