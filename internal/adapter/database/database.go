// Package database opens GORM connections for the lineage and zone stores.
// The database type is selected per named connection from configuration;
// SQLite is the engine of record, with MySQL and PostgreSQL supported through
// the same dialector selection.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/riptide/internal/support/exception"
)

const moduleName = "database"

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes" mapstructure:"conn_max_lifetime_minutes"`
}

// DatabaseConfig holds connection settings for one named database.
type DatabaseConfig struct {
	Type     string     `yaml:"type" mapstructure:"type"`         // Database type ("sqlite", "mysql", "postgres").
	Host     string     `yaml:"host" mapstructure:"host"`         // Host address (unused for sqlite).
	Port     int        `yaml:"port" mapstructure:"port"`         // Port number (unused for sqlite).
	Database string     `yaml:"database" mapstructure:"database"` // Database name, or file path for sqlite.
	User     string     `yaml:"user" mapstructure:"user"`
	Password string     `yaml:"password" mapstructure:"password"`
	Sslmode  string     `yaml:"sslmode" mapstructure:"sslmode"`
	Pool     PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// Dialector selects the GORM dialector for the configured database type.
func Dialector(cfg DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.Database == "" {
			return nil, exception.NewETLError(moduleName, "SQLite database path cannot be empty", nil)
		}
		return sqlite.Open(cfg.Database), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.Sslmode)
		return postgres.Open(dsn), nil
	default:
		return nil, exception.NewETLErrorf(moduleName, "unsupported database type: %s", cfg.Type)
	}
}

// Open establishes a GORM connection for the given configuration and applies
// pool settings. For file-backed SQLite databases the parent directory is
// created if missing.
func Open(cfg DatabaseConfig) (*gorm.DB, error) {
	if cfg.Type == "sqlite" && cfg.Database != ":memory:" && cfg.Database != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0755); err != nil {
			return nil, exception.NewETLError(moduleName,
				fmt.Sprintf("failed to create directory for SQLite database '%s'", cfg.Database), err)
		}
	}

	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, exception.NewETLError(moduleName,
			fmt.Sprintf("failed to open %s database '%s'", cfg.Type, cfg.Database), err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, exception.NewETLError(moduleName, "failed to get underlying sql.DB", err)
	}

	pool := cfg.Pool
	if cfg.Type == "sqlite" && pool.MaxOpenConns == 0 {
		// A pool of independent connections to the same in-memory SQLite
		// database would each see a separate database.
		pool.MaxOpenConns = 1
		pool.MaxIdleConns = 1
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeMinutes) * time.Minute)
	}

	return gormDB, nil
}
