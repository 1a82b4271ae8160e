// Package zone implements the medallion zone store: three independent
// relational containers (Raw, Curated, Gold), each holding named tables that
// are fully replaced on each successful write. Replace is the only write
// mode the pipeline uses; it trades history for idempotent reruns.
package zone

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/tigerroll/riptide/internal/adapter/database"
	"github.com/tigerroll/riptide/internal/config"
	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/support/exception"
	"github.com/tigerroll/riptide/internal/support/logger"
)

const moduleName = "zone"

const defaultBatchSize = 500

// Table is implemented by every entity persisted to a zone.
type Table interface {
	TableName() string
}

// Store holds one database handle per medallion zone. Each write replaces
// the target table inside a single transaction, so readers never observe a
// partially replaced table.
type Store struct {
	dbs       map[model.Zone]*gorm.DB
	batchSize int
}

// NewStore opens the three zone databases from the named "raw", "curated",
// and "gold" configurations.
func NewStore(cfg *config.Config) (*Store, error) {
	refs := map[model.Zone]string{
		model.ZoneRaw:     config.DBRefRaw,
		model.ZoneCurated: config.DBRefCurated,
		model.ZoneGold:    config.DBRefGold,
	}

	dbCfgs := make(map[model.Zone]database.DatabaseConfig, len(refs))
	for zone, ref := range refs {
		dbCfg, err := cfg.DatabaseConfigFor(ref)
		if err != nil {
			return nil, err
		}
		dbCfgs[zone] = dbCfg
	}
	return Open(dbCfgs, cfg.Riptide.Pipeline.BatchSize)
}

// Open opens the zone store against the given per-zone database
// configurations. All three zones must be configured.
func Open(dbCfgs map[model.Zone]database.DatabaseConfig, batchSize int) (*Store, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	dbs := make(map[model.Zone]*gorm.DB, len(dbCfgs))
	for _, zone := range []model.Zone{model.ZoneRaw, model.ZoneCurated, model.ZoneGold} {
		dbCfg, ok := dbCfgs[zone]
		if !ok {
			return nil, exception.NewETLErrorf(moduleName, "no database configured for zone %s", zone)
		}
		gormDB, err := database.Open(dbCfg)
		if err != nil {
			return nil, err
		}
		dbs[zone] = gormDB
	}

	return &Store{dbs: dbs, batchSize: batchSize}, nil
}

func (s *Store) handle(zone model.Zone) (*gorm.DB, error) {
	db, ok := s.dbs[zone]
	if !ok {
		return nil, exception.NewETLErrorf(moduleName, "unknown zone %s", zone)
	}
	return db, nil
}

// WriteTable writes rows to the named table in the zone using the given
// write mode. rows must be a slice of the entity type that proto prototypes.
//
// WriteReplace drops and recreates the table and inserts all rows inside one
// transaction. WriteAppend creates the table if missing and inserts without
// dropping. WriteMergeByKey is reserved for incremental loads and is not
// implemented.
func (s *Store) WriteTable(ctx context.Context, zone model.Zone, mode model.WriteMode, proto Table, rows interface{}) error {
	db, err := s.handle(zone)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(rows)
	if rv.Kind() != reflect.Slice {
		return exception.NewETLErrorf(moduleName, "rows for table '%s' must be a slice, got %T", proto.TableName(), rows)
	}
	count := rv.Len()

	switch mode {
	case model.WriteReplace:
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			m := tx.Migrator()
			if m.HasTable(proto) {
				if err := m.DropTable(proto); err != nil {
					return err
				}
			}
			if err := tx.AutoMigrate(proto); err != nil {
				return err
			}
			if count == 0 {
				return nil
			}
			return tx.CreateInBatches(rows, s.batchSize).Error
		})
	case model.WriteAppend:
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(proto); err != nil {
				return err
			}
			if count == 0 {
				return nil
			}
			return tx.CreateInBatches(rows, s.batchSize).Error
		})
	case model.WriteMergeByKey:
		return exception.NewETLErrorf(moduleName, "write mode %s is not implemented", mode)
	default:
		return exception.NewETLErrorf(moduleName, "unknown write mode %s", mode)
	}

	if err != nil {
		return exception.NewETLError(moduleName,
			fmt.Sprintf("failed to write table '%s' in zone %s", proto.TableName(), zone), err)
	}
	logger.Debugf("Wrote %d rows to %s.%s (%s).", count, zone, proto.TableName(), mode)
	return nil
}

// ReadTable reads all rows of a zone table into dest, which must be a
// pointer to a slice of the table's entity type. Reading a table that does
// not exist surfaces a store-level error.
func (s *Store) ReadTable(ctx context.Context, zone model.Zone, dest interface{}) error {
	db, err := s.handle(zone)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Find(dest).Error; err != nil {
		return exception.NewETLError(moduleName,
			fmt.Sprintf("failed to read table in zone %s", zone), err)
	}
	return nil
}

// TableExists reports whether the entity's table exists in the zone.
func (s *Store) TableExists(ctx context.Context, zone model.Zone, proto Table) (bool, error) {
	db, err := s.handle(zone)
	if err != nil {
		return false, err
	}
	return db.WithContext(ctx).Migrator().HasTable(proto), nil
}

// Close releases all zone database handles, collecting any errors.
func (s *Store) Close() error {
	var result *multierror.Error
	for zone, db := range s.dbs {
		sqlDB, err := db.DB()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("zone %s: %w", zone, err))
			continue
		}
		if err := sqlDB.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("zone %s: %w", zone, err))
		}
	}
	return result.ErrorOrNil()
}
