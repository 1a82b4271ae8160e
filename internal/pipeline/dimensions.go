package pipeline

import (
	"context"
	"time"

	"github.com/tigerroll/riptide/internal/domain/entity"
	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/support/exception"
	"github.com/tigerroll/riptide/internal/support/logger"
	"github.com/tigerroll/riptide/internal/zone"
)

// ProcessLoadDimensions is the process name of the dimension load stage.
const ProcessLoadDimensions = "Load_Dimensions"

// DimensionsStage builds the deduplicated customer and product dimensions in
// the Curated zone from their Raw tables. Deduplication keeps the first
// occurrence of each business key in ingestion order.
type DimensionsStage struct {
	lineage *lineage.Store
	zones   *zone.Store
}

func NewDimensionsStage(lineageStore *lineage.Store, zones *zone.Store) *DimensionsStage {
	return &DimensionsStage{lineage: lineageStore, zones: zones}
}

func (s *DimensionsStage) Name() string  { return ProcessLoadDimensions }
func (s *DimensionsStage) Layer() string { return model.ZoneCurated.String() }

func (s *DimensionsStage) Run(ctx context.Context) model.StageResult {
	return runAudited(ctx, s.lineage, s.Name(), s.Layer(), s.load)
}

func (s *DimensionsStage) load(ctx context.Context) (int, error) {
	if err := requireRawTable(ctx, s.zones, entity.RawCustomer{}); err != nil {
		return 0, err
	}
	if err := requireRawTable(ctx, s.zones, entity.RawProduct{}); err != nil {
		return 0, err
	}

	stamp := entity.CuratedSystemColumns{
		BatchID:                 s.lineage.BatchID(),
		TransformationTimestamp: time.Now().UTC(),
	}

	var rawCustomers []entity.RawCustomer
	if err := s.zones.ReadTable(ctx, model.ZoneRaw, &rawCustomers); err != nil {
		return 0, err
	}
	dimCustomers := make([]entity.DimCustomer, 0, len(rawCustomers))
	seenCustomers := make(map[string]bool, len(rawCustomers))
	for _, rc := range rawCustomers {
		if seenCustomers[rc.CustomerID] {
			continue
		}
		seenCustomers[rc.CustomerID] = true
		dimCustomers = append(dimCustomers, entity.DimCustomer{Customer: rc.Customer, CuratedSystemColumns: stamp})
	}
	if dropped := len(rawCustomers) - len(dimCustomers); dropped > 0 {
		logger.Debugf("Deduplicated %d customer rows.", dropped)
	}

	var rawProducts []entity.RawProduct
	if err := s.zones.ReadTable(ctx, model.ZoneRaw, &rawProducts); err != nil {
		return 0, err
	}
	dimProducts := make([]entity.DimProduct, 0, len(rawProducts))
	seenProducts := make(map[string]bool, len(rawProducts))
	for _, rp := range rawProducts {
		if seenProducts[rp.ProductID] {
			continue
		}
		seenProducts[rp.ProductID] = true
		dimProducts = append(dimProducts, entity.DimProduct{Product: rp.Product, CuratedSystemColumns: stamp})
	}
	if dropped := len(rawProducts) - len(dimProducts); dropped > 0 {
		logger.Debugf("Deduplicated %d product rows.", dropped)
	}

	if err := s.zones.WriteTable(ctx, model.ZoneCurated, model.WriteReplace, entity.DimCustomer{}, dimCustomers); err != nil {
		return 0, err
	}
	if err := s.zones.WriteTable(ctx, model.ZoneCurated, model.WriteReplace, entity.DimProduct{}, dimProducts); err != nil {
		return len(dimCustomers), err
	}
	return len(dimCustomers) + len(dimProducts), nil
}

// requireRawTable turns a missing Raw table into a descriptive stage failure
// instead of a bare query error. Extraction skips absent source files, so a
// downstream stage can legitimately find its input table missing.
func requireRawTable(ctx context.Context, zones *zone.Store, proto zone.Table) error {
	exists, err := zones.TableExists(ctx, model.ZoneRaw, proto)
	if err != nil {
		return err
	}
	if !exists {
		return exception.NewETLErrorf(moduleName,
			"required Raw table '%s' does not exist; run extraction first", proto.TableName())
	}
	return nil
}
