package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/tigerroll/riptide/internal/domain/entity"
	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/support/exception"
	"github.com/tigerroll/riptide/internal/zone"
)

// ProcessLoadFacts is the process name of the fact load stage.
const ProcessLoadFacts = "Load_Facts"

// orderDateLayout is the date format of the orders source.
const orderDateLayout = "2006-01-02"

// FactsStage loads the order, order line, and payment fact tables into the
// Curated zone. Order dates are parsed from the source string here; an
// unparseable date fails the stage.
type FactsStage struct {
	lineage *lineage.Store
	zones   *zone.Store
}

func NewFactsStage(lineageStore *lineage.Store, zones *zone.Store) *FactsStage {
	return &FactsStage{lineage: lineageStore, zones: zones}
}

func (s *FactsStage) Name() string  { return ProcessLoadFacts }
func (s *FactsStage) Layer() string { return model.ZoneCurated.String() }

func (s *FactsStage) Run(ctx context.Context) model.StageResult {
	return runAudited(ctx, s.lineage, s.Name(), s.Layer(), s.load)
}

func (s *FactsStage) load(ctx context.Context) (int, error) {
	if err := requireRawTable(ctx, s.zones, entity.RawOrder{}); err != nil {
		return 0, err
	}
	if err := requireRawTable(ctx, s.zones, entity.RawOrderLine{}); err != nil {
		return 0, err
	}
	if err := requireRawTable(ctx, s.zones, entity.RawPayment{}); err != nil {
		return 0, err
	}

	stamp := entity.CuratedSystemColumns{
		BatchID:                 s.lineage.BatchID(),
		TransformationTimestamp: time.Now().UTC(),
	}

	var rawOrders []entity.RawOrder
	if err := s.zones.ReadTable(ctx, model.ZoneRaw, &rawOrders); err != nil {
		return 0, err
	}
	factOrders := make([]entity.FactOrder, 0, len(rawOrders))
	for _, ro := range rawOrders {
		orderDate, err := time.Parse(orderDateLayout, ro.OrderDate)
		if err != nil {
			return 0, exception.NewETLError(moduleName,
				fmt.Sprintf("order '%s' has an invalid order_date %q", ro.OrderID, ro.OrderDate), err)
		}
		factOrders = append(factOrders, entity.FactOrder{
			OrderID:              ro.OrderID,
			CustomerID:           ro.CustomerID,
			OrderDate:            orderDate,
			Status:               ro.Status,
			TotalAmount:          ro.TotalAmount,
			CuratedSystemColumns: stamp,
		})
	}

	var rawLines []entity.RawOrderLine
	if err := s.zones.ReadTable(ctx, model.ZoneRaw, &rawLines); err != nil {
		return 0, err
	}
	factLines := make([]entity.FactOrderLine, len(rawLines))
	for i, rl := range rawLines {
		factLines[i] = entity.FactOrderLine{OrderLine: rl.OrderLine, CuratedSystemColumns: stamp}
	}

	var rawPayments []entity.RawPayment
	if err := s.zones.ReadTable(ctx, model.ZoneRaw, &rawPayments); err != nil {
		return 0, err
	}
	factPayments := make([]entity.FactPayment, len(rawPayments))
	for i, rp := range rawPayments {
		factPayments[i] = entity.FactPayment{Payment: rp.Payment, CuratedSystemColumns: stamp}
	}

	if err := s.zones.WriteTable(ctx, model.ZoneCurated, model.WriteReplace, entity.FactOrder{}, factOrders); err != nil {
		return 0, err
	}
	if err := s.zones.WriteTable(ctx, model.ZoneCurated, model.WriteReplace, entity.FactOrderLine{}, factLines); err != nil {
		return len(factOrders), err
	}
	if err := s.zones.WriteTable(ctx, model.ZoneCurated, model.WriteReplace, entity.FactPayment{}, factPayments); err != nil {
		return len(factOrders) + len(factLines), err
	}
	return len(factOrders) + len(factLines) + len(factPayments), nil
}
