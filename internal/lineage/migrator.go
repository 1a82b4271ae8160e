package lineage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/tigerroll/riptide/internal/support/exception"
	"github.com/tigerroll/riptide/internal/support/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "riptide_schema_migrations"

// migrateSchema applies the embedded lineage schema migrations against the
// store's database.
func migrateSchema(gormDB *gorm.DB, dbType string) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return exception.NewETLError(moduleName, "failed to get underlying sql.DB for migration", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return exception.NewETLError(moduleName, "failed to create iofs source driver", err)
	}

	dbDriver, err := migrationDriver(sqlDB, dbType)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbType, dbDriver)
	if err != nil {
		return exception.NewETLError(moduleName, "failed to create migrate instance", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debugf("Lineage schema is up to date.")
			return nil
		}
		return exception.NewETLError(moduleName, "failed to apply lineage schema migrations", err)
	}
	logger.Infof("Applied lineage schema migrations.")
	return nil
}

// migrationDriver retrieves a migrate/v4 driver for the database type.
func migrationDriver(sqlDB *sql.DB, dbType string) (migratedb.Driver, error) {
	switch dbType {
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: migrationsTable})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: migrationsTable})
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: migrationsTable})
	default:
		return nil, exception.NewETLError(moduleName, fmt.Sprintf("unsupported database type for migration: %s", dbType), nil)
	}
}
