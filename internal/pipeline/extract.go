package pipeline

import (
	"context"
	"time"

	"github.com/tigerroll/riptide/internal/domain/entity"
	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/source"
	"github.com/tigerroll/riptide/internal/support/logger"
	"github.com/tigerroll/riptide/internal/zone"
)

// ProcessExtract is the process name of the Raw extraction stage.
const ProcessExtract = "Extract_Source_to_Raw"

// ExtractStage ingests every present source file into the Raw zone with
// system columns stamped on each row. A missing source file is skipped with
// a warning; a malformed one fails the stage.
type ExtractStage struct {
	lineage   *lineage.Store
	zones     *zone.Store
	src       *source.CSVSource
	sourceTag string
}

func NewExtractStage(lineageStore *lineage.Store, zones *zone.Store, src *source.CSVSource, sourceTag string) *ExtractStage {
	return &ExtractStage{lineage: lineageStore, zones: zones, src: src, sourceTag: sourceTag}
}

func (s *ExtractStage) Name() string  { return ProcessExtract }
func (s *ExtractStage) Layer() string { return model.ZoneRaw.String() }

func (s *ExtractStage) Run(ctx context.Context) model.StageResult {
	return runAudited(ctx, s.lineage, s.Name(), s.Layer(), s.extract)
}

// rawLoader reads one source file and writes its Raw table, returning the
// row count.
type rawLoader struct {
	file string
	load func(ctx context.Context, stamp entity.RawSystemColumns) (int, error)
}

func (s *ExtractStage) extract(ctx context.Context) (int, error) {
	stamp := entity.RawSystemColumns{
		IngestionTimestamp: time.Now().UTC(),
		BatchID:            s.lineage.BatchID(),
		SourceSystem:       s.sourceTag,
	}

	loaders := []rawLoader{
		{source.FileCustomers, func(ctx context.Context, stamp entity.RawSystemColumns) (int, error) {
			customers, err := s.src.ReadCustomers()
			if err != nil {
				return 0, err
			}
			rows := make([]entity.RawCustomer, len(customers))
			for i, c := range customers {
				rows[i] = entity.RawCustomer{Customer: c, RawSystemColumns: stamp}
			}
			return len(rows), s.zones.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawCustomer{}, rows)
		}},
		{source.FileProducts, func(ctx context.Context, stamp entity.RawSystemColumns) (int, error) {
			products, err := s.src.ReadProducts()
			if err != nil {
				return 0, err
			}
			rows := make([]entity.RawProduct, len(products))
			for i, p := range products {
				rows[i] = entity.RawProduct{Product: p, RawSystemColumns: stamp}
			}
			return len(rows), s.zones.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawProduct{}, rows)
		}},
		{source.FileOrders, func(ctx context.Context, stamp entity.RawSystemColumns) (int, error) {
			orders, err := s.src.ReadOrders()
			if err != nil {
				return 0, err
			}
			rows := make([]entity.RawOrder, len(orders))
			for i, o := range orders {
				rows[i] = entity.RawOrder{Order: o, RawSystemColumns: stamp}
			}
			return len(rows), s.zones.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawOrder{}, rows)
		}},
		{source.FileOrderLines, func(ctx context.Context, stamp entity.RawSystemColumns) (int, error) {
			lines, err := s.src.ReadOrderLines()
			if err != nil {
				return 0, err
			}
			rows := make([]entity.RawOrderLine, len(lines))
			for i, l := range lines {
				rows[i] = entity.RawOrderLine{OrderLine: l, RawSystemColumns: stamp}
			}
			return len(rows), s.zones.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawOrderLine{}, rows)
		}},
		{source.FilePayments, func(ctx context.Context, stamp entity.RawSystemColumns) (int, error) {
			payments, err := s.src.ReadPayments()
			if err != nil {
				return 0, err
			}
			rows := make([]entity.RawPayment, len(payments))
			for i, p := range payments {
				rows[i] = entity.RawPayment{Payment: p, RawSystemColumns: stamp}
			}
			return len(rows), s.zones.WriteTable(ctx, model.ZoneRaw, model.WriteReplace, entity.RawPayment{}, rows)
		}},
	}

	total := 0
	for _, l := range loaders {
		if !s.src.Exists(l.file) {
			logger.Warnf("Source file '%s' not found in %s; skipping.", l.file, s.src.Dir())
			continue
		}
		fileStamp := stamp
		fileStamp.SourceFilename = l.file
		n, err := l.load(ctx, fileStamp)
		if err != nil {
			return total, err
		}
		logger.Debugf("Ingested %d rows from '%s'.", n, l.file)
		total += n
	}
	return total, nil
}
