package zone

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/riptide/internal/adapter/database"
	"github.com/tigerroll/riptide/internal/domain/entity"
	model "github.com/tigerroll/riptide/internal/domain/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfgs := map[model.Zone]database.DatabaseConfig{
		model.ZoneRaw:     {Type: "sqlite", Database: ":memory:"},
		model.ZoneCurated: {Type: "sqlite", Database: ":memory:"},
		model.ZoneGold:    {Type: "sqlite", Database: ":memory:"},
	}
	store, err := Open(cfgs, 100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRawCustomers(ids ...string) []entity.RawCustomer {
	stamp := entity.RawSystemColumns{
		IngestionTimestamp: time.Now().UTC(),
		BatchID:            "batch-1",
		SourceSystem:       "CSV_Source",
		SourceFilename:     "customers.csv",
	}
	rows := make([]entity.RawCustomer, len(ids))
	for i, id := range ids {
		rows[i] = entity.RawCustomer{
			Customer:         entity.Customer{CustomerID: id, FirstName: "A", LastName: "B"},
			RawSystemColumns: stamp,
		}
	}
	return rows
}

func TestWriteTableReplaceCreatesTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, sampleRawCustomers("C1", "C2"))
	require.NoError(t, err)

	exists, err := store.TableExists(ctx, model.ZoneRaw, entity.RawCustomer{})
	require.NoError(t, err)
	assert.True(t, exists)

	var got []entity.RawCustomer
	require.NoError(t, store.ReadTable(ctx, model.ZoneRaw, &got))
	assert.Len(t, got, 2)
}

func TestWriteTableReplaceIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, sampleRawCustomers("C1", "C2", "C3")))
	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, sampleRawCustomers("C1", "C2", "C3")))

	var got []entity.RawCustomer
	require.NoError(t, store.ReadTable(ctx, model.ZoneRaw, &got))
	assert.Len(t, got, 3, "a rerun must not accumulate rows")
}

func TestWriteTableReplaceDropsStaleRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, sampleRawCustomers("C1", "C2", "C3")))
	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, sampleRawCustomers("C9")))

	var got []entity.RawCustomer
	require.NoError(t, store.ReadTable(ctx, model.ZoneRaw, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "C9", got[0].CustomerID)
}

func TestWriteTableReplaceEmptySliceLeavesEmptyTable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, sampleRawCustomers("C1")))
	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, []entity.RawCustomer{}))

	exists, err := store.TableExists(ctx, model.ZoneRaw, entity.RawCustomer{})
	require.NoError(t, err)
	assert.True(t, exists)

	var got []entity.RawCustomer
	require.NoError(t, store.ReadTable(ctx, model.ZoneRaw, &got))
	assert.Empty(t, got)
}

func TestWriteTableAppendAccumulates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteAppend, entity.RawCustomer{}, sampleRawCustomers("C1")))
	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteAppend, entity.RawCustomer{}, sampleRawCustomers("C2")))

	var got []entity.RawCustomer
	require.NoError(t, store.ReadTable(ctx, model.ZoneRaw, &got))
	assert.Len(t, got, 2)
}

func TestWriteTableMergeByKeyIsUnsupported(t *testing.T) {
	store := newTestStore(t)

	err := store.WriteTable(context.Background(), model.ZoneRaw, model.WriteMergeByKey, entity.RawCustomer{}, sampleRawCustomers("C1"))
	assert.Error(t, err)
}

func TestWriteTableRejectsNonSlice(t *testing.T) {
	store := newTestStore(t)

	err := store.WriteTable(context.Background(), model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, entity.RawCustomer{})
	assert.Error(t, err)
}

func TestZonesAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, sampleRawCustomers("C1")))

	exists, err := store.TableExists(ctx, model.ZoneCurated, entity.RawCustomer{})
	require.NoError(t, err)
	assert.False(t, exists, "a write to Raw must not surface in Curated")
}

func TestTableExistsBeforeAnyWrite(t *testing.T) {
	store := newTestStore(t)

	exists, err := store.TableExists(context.Background(), model.ZoneGold, entity.SalesSummaryDaily{})
	require.NoError(t, err)
	assert.False(t, exists)
}
