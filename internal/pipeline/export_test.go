package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/riptide/internal/config"
	"github.com/tigerroll/riptide/internal/domain/entity"
	model "github.com/tigerroll/riptide/internal/domain/model"
)

func exportConfig(exportDir string) *config.Config {
	cfg := config.NewConfig()
	cfg.Riptide.Export.Enabled = true
	cfg.Riptide.Storages = map[string]interface{}{
		"export": map[string]interface{}{
			"type":     "local",
			"base_dir": exportDir,
		},
	}
	return cfg
}

func TestExportWritesPartitionedParquetFiles(t *testing.T) {
	env := newTestEnv(t)
	env.writeFixture(t)

	_, err := env.run(t)
	require.NoError(t, err)

	exportDir := t.TempDir()
	result := NewExportStage(env.lineage, env.zones, exportConfig(exportDir)).Run(context.Background())
	require.True(t, result.Success(), "export failed: %v", result.Err)
	assert.Equal(t, 3, result.RowsProcessed)

	var files []string
	err = filepath.WalkDir(exportDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(exportDir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, files, 2, "one file per order date partition")

	for _, f := range files {
		assert.True(t, strings.HasPrefix(f, "gold/reporting_sales_wide/dt="), "unexpected path %s", f)
		assert.True(t, strings.HasSuffix(f, ".parquet"), "unexpected path %s", f)
		assert.Contains(t, f, env.lineage.BatchID())
	}

	partitions := map[string]bool{}
	for _, f := range files {
		for _, part := range strings.Split(f, "/") {
			if strings.HasPrefix(part, "dt=") {
				partitions[part] = true
			}
		}
	}
	assert.True(t, partitions["dt=2024-03-01"])
	assert.True(t, partitions["dt=2024-03-02"])
}

func TestExportWithEmptyGoldTableWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.writeFixture(t)

	_, err := env.run(t)
	require.NoError(t, err)

	// Replace the wide table with an empty one before exporting.
	require.NoError(t, env.zones.WriteTable(context.Background(), model.ZoneGold, model.WriteReplace,
		entity.ReportingSalesWide{}, []entity.ReportingSalesWide{}))

	exportDir := t.TempDir()
	result := NewExportStage(env.lineage, env.zones, exportConfig(exportDir)).Run(context.Background())
	require.True(t, result.Success(), "export failed: %v", result.Err)
	assert.Equal(t, 0, result.RowsProcessed)

	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportFailsOnUnknownStorageRef(t *testing.T) {
	env := newTestEnv(t)
	env.writeFixture(t)

	_, err := env.run(t)
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Riptide.Export.Enabled = true

	result := NewExportStage(env.lineage, env.zones, cfg).Run(context.Background())
	assert.Equal(t, model.StatusFailed, result.Status)
	require.Error(t, result.Err)
}
