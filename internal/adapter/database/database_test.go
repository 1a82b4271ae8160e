package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorSelection(t *testing.T) {
	d, err := Dialector(DatabaseConfig{Type: "sqlite", Database: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(DatabaseConfig{Type: "mysql", Host: "localhost", Port: 3306, Database: "raw"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	d, err = Dialector(DatabaseConfig{Type: "postgres", Host: "localhost", Port: 5432, Database: "raw"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestDialectorRejectsEmptySQLitePath(t *testing.T) {
	_, err := Dialector(DatabaseConfig{Type: "sqlite"})
	assert.Error(t, err)
}

func TestDialectorRejectsUnknownType(t *testing.T) {
	_, err := Dialector(DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}

func TestOpenInMemorySQLite(t *testing.T) {
	gormDB, err := Open(DatabaseConfig{Type: "sqlite", Database: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, sqlDB.Ping())

	stats := sqlDB.Stats()
	assert.Equal(t, 1, stats.MaxOpenConnections, "in-memory SQLite must be pinned to one connection")
}

func TestOpenCreatesParentDirForFileSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones", "raw.db")

	gormDB, err := Open(DatabaseConfig{Type: "sqlite", Database: path})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, sqlDB.Ping())
}
