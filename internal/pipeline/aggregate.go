package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/tigerroll/riptide/internal/domain/entity"
	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/support/logger"
	"github.com/tigerroll/riptide/internal/zone"
)

// ProcessAggregate is the process name of the Gold aggregation stage.
const ProcessAggregate = "Aggregate_Gold"

// AggregateStage builds the three Gold reporting tables from the Curated
// facts and dimensions: the daily sales summary, the denormalized wide sales
// table, and per-customer statistics.
//
// The wide table joins order lines to orders, products, and customers with
// inner semantics, then attaches payments by left join so that orders
// without a payment row still appear with null payment fields.
type AggregateStage struct {
	lineage *lineage.Store
	zones   *zone.Store
}

func NewAggregateStage(lineageStore *lineage.Store, zones *zone.Store) *AggregateStage {
	return &AggregateStage{lineage: lineageStore, zones: zones}
}

func (s *AggregateStage) Name() string  { return ProcessAggregate }
func (s *AggregateStage) Layer() string { return model.ZoneGold.String() }

func (s *AggregateStage) Run(ctx context.Context) model.StageResult {
	return runAudited(ctx, s.lineage, s.Name(), s.Layer(), s.aggregate)
}

func (s *AggregateStage) aggregate(ctx context.Context) (int, error) {
	var orders []entity.FactOrder
	if err := s.zones.ReadTable(ctx, model.ZoneCurated, &orders); err != nil {
		return 0, err
	}
	var lines []entity.FactOrderLine
	if err := s.zones.ReadTable(ctx, model.ZoneCurated, &lines); err != nil {
		return 0, err
	}
	var payments []entity.FactPayment
	if err := s.zones.ReadTable(ctx, model.ZoneCurated, &payments); err != nil {
		return 0, err
	}
	var customers []entity.DimCustomer
	if err := s.zones.ReadTable(ctx, model.ZoneCurated, &customers); err != nil {
		return 0, err
	}
	var products []entity.DimProduct
	if err := s.zones.ReadTable(ctx, model.ZoneCurated, &products); err != nil {
		return 0, err
	}

	stamp := entity.GoldSystemColumns{
		BatchID:              s.lineage.BatchID(),
		AggregationTimestamp: time.Now().UTC(),
	}

	summary := buildDailySummary(orders, stamp)
	wide := buildSalesWide(orders, lines, payments, customers, products, stamp)
	stats := buildCustomerStats(orders, customers, stamp)

	if err := s.zones.WriteTable(ctx, model.ZoneGold, model.WriteReplace, entity.SalesSummaryDaily{}, summary); err != nil {
		return 0, err
	}
	if err := s.zones.WriteTable(ctx, model.ZoneGold, model.WriteReplace, entity.ReportingSalesWide{}, wide); err != nil {
		return len(summary), err
	}
	if err := s.zones.WriteTable(ctx, model.ZoneGold, model.WriteReplace, entity.ReportingCustomerStats{}, stats); err != nil {
		return len(summary) + len(wide), err
	}
	return len(summary) + len(wide) + len(stats), nil
}

// buildDailySummary groups orders by the date component of the order date,
// summing totals and counting orders. Output is ordered by date.
func buildDailySummary(orders []entity.FactOrder, stamp entity.GoldSystemColumns) []entity.SalesSummaryDaily {
	byDate := make(map[string]*entity.SalesSummaryDaily)
	for _, o := range orders {
		date := o.OrderDate.Format("2006-01-02")
		row, ok := byDate[date]
		if !ok {
			row = &entity.SalesSummaryDaily{Date: date, GoldSystemColumns: stamp}
			byDate[date] = row
		}
		row.TotalSales += o.TotalAmount
		row.TotalOrders++
	}

	out := make([]entity.SalesSummaryDaily, 0, len(byDate))
	for _, row := range byDate {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// buildSalesWide produces one output row per order line that resolves to an
// existing order, product, and customer. Lines whose references do not
// resolve are dropped by the inner joins; payments attach by left join.
func buildSalesWide(
	orders []entity.FactOrder,
	lines []entity.FactOrderLine,
	payments []entity.FactPayment,
	customers []entity.DimCustomer,
	products []entity.DimProduct,
	stamp entity.GoldSystemColumns,
) []entity.ReportingSalesWide {
	ordersByID := make(map[string]entity.FactOrder, len(orders))
	for _, o := range orders {
		ordersByID[o.OrderID] = o
	}
	productsByID := make(map[string]entity.DimProduct, len(products))
	for _, p := range products {
		productsByID[p.ProductID] = p
	}
	customersByID := make(map[string]entity.DimCustomer, len(customers))
	for _, c := range customers {
		customersByID[c.CustomerID] = c
	}
	paymentsByOrder := make(map[string]entity.FactPayment, len(payments))
	for _, p := range payments {
		paymentsByOrder[p.OrderID] = p
	}

	out := make([]entity.ReportingSalesWide, 0, len(lines))
	dropped := 0
	for _, l := range lines {
		order, ok := ordersByID[l.OrderID]
		if !ok {
			dropped++
			continue
		}
		product, ok := productsByID[l.ProductID]
		if !ok {
			dropped++
			continue
		}
		customer, ok := customersByID[order.CustomerID]
		if !ok {
			dropped++
			continue
		}

		row := entity.ReportingSalesWide{
			OrderID:           order.OrderID,
			OrderDate:         order.OrderDate,
			Status:            order.Status,
			TotalAmount:       order.TotalAmount,
			ProductName:       product.ProductName,
			Category:          product.Category,
			SubCategory:       product.SubCategory,
			Brand:             product.Brand,
			Quantity:          l.Quantity,
			LineTotal:         l.LineTotal,
			FirstName:         customer.FirstName,
			LastName:          customer.LastName,
			City:              customer.City,
			State:             customer.State,
			Segment:           customer.Segment,
			GoldSystemColumns: stamp,
		}
		if payment, ok := paymentsByOrder[l.OrderID]; ok {
			method := payment.PaymentMethod
			amount := payment.PaymentAmount
			row.PaymentMethod = &method
			row.PaymentAmount = &amount
		}
		out = append(out, row)
	}
	if dropped > 0 {
		logger.Warnf("Dropped %d order lines with unresolved references from the wide reporting table.", dropped)
	}
	return out
}

// buildCustomerStats groups orders per customer and attaches the customer
// dimension by inner join. Customers with zero orders do not appear.
func buildCustomerStats(orders []entity.FactOrder, customers []entity.DimCustomer, stamp entity.GoldSystemColumns) []entity.ReportingCustomerStats {
	customersByID := make(map[string]entity.DimCustomer, len(customers))
	for _, c := range customers {
		customersByID[c.CustomerID] = c
	}

	byCustomer := make(map[string]*entity.ReportingCustomerStats)
	for _, o := range orders {
		row, ok := byCustomer[o.CustomerID]
		if !ok {
			row = &entity.ReportingCustomerStats{
				CustomerID:        o.CustomerID,
				FirstOrder:        o.OrderDate,
				LastOrder:         o.OrderDate,
				GoldSystemColumns: stamp,
			}
			byCustomer[o.CustomerID] = row
		}
		if o.OrderDate.Before(row.FirstOrder) {
			row.FirstOrder = o.OrderDate
		}
		if o.OrderDate.After(row.LastOrder) {
			row.LastOrder = o.OrderDate
		}
		row.TotalSpend += o.TotalAmount
		row.OrdersCount++
	}

	out := make([]entity.ReportingCustomerStats, 0, len(byCustomer))
	for customerID, row := range byCustomer {
		customer, ok := customersByID[customerID]
		if !ok {
			continue
		}
		row.FirstName = customer.FirstName
		row.LastName = customer.LastName
		row.Email = customer.Email
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}
