package entity

import "time"

// CuratedSystemColumns are the system columns stamped onto every row written
// to the Curated zone by the transform stages.
type CuratedSystemColumns struct {
	BatchID                 string    `gorm:"column:batch_id"`
	TransformationTimestamp time.Time `gorm:"column:transformation_timestamp"`
}

// DimCustomer is the deduplicated customer dimension, at most one row per
// customer_id.
type DimCustomer struct {
	Customer             `gorm:"embedded"`
	CuratedSystemColumns `gorm:"embedded"`
}

func (DimCustomer) TableName() string { return "dim_customers" }

// DimProduct is the deduplicated product dimension, at most one row per
// product_id.
type DimProduct struct {
	Product              `gorm:"embedded"`
	CuratedSystemColumns `gorm:"embedded"`
}

func (DimProduct) TableName() string { return "dim_products" }

// FactOrder is one order with its date parsed into a temporal type.
type FactOrder struct {
	OrderID              string    `gorm:"column:order_id"`
	CustomerID           string    `gorm:"column:customer_id"`
	OrderDate            time.Time `gorm:"column:order_date"`
	Status               string    `gorm:"column:status"`
	TotalAmount          float64   `gorm:"column:total_amount"`
	CuratedSystemColumns `gorm:"embedded"`
}

func (FactOrder) TableName() string { return "fact_orders" }

// FactOrderLine is one order line carried into Curated unjoined; joins are
// deferred to the aggregation stage.
type FactOrderLine struct {
	OrderLine            `gorm:"embedded"`
	CuratedSystemColumns `gorm:"embedded"`
}

func (FactOrderLine) TableName() string { return "fact_order_lines" }

// FactPayment is one payment carried into Curated as its own table.
type FactPayment struct {
	Payment              `gorm:"embedded"`
	CuratedSystemColumns `gorm:"embedded"`
}

func (FactPayment) TableName() string { return "fact_payments" }
