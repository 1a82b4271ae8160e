package entity

import "time"

// GoldSystemColumns are the system columns stamped onto every row written to
// the Gold zone by the aggregation stage.
type GoldSystemColumns struct {
	BatchID              string    `gorm:"column:batch_id"`
	AggregationTimestamp time.Time `gorm:"column:aggregation_timestamp"`
}

// SalesSummaryDaily is one calendar day of order activity: summed order
// totals and order counts grouped by the date component of the order date.
type SalesSummaryDaily struct {
	Date              string  `gorm:"column:date"`
	TotalSales        float64 `gorm:"column:total_sales"`
	TotalOrders       int     `gorm:"column:total_orders"`
	GoldSystemColumns `gorm:"embedded"`
}

func (SalesSummaryDaily) TableName() string { return "sales_summary_daily" }

// ReportingSalesWide is the denormalized one-big-table join of orders, order
// lines, products, and customers, with payments attached by left join. The
// struct fields are the explicit output projection; payment columns are
// pointers because orders without a payment row still appear.
type ReportingSalesWide struct {
	OrderID           string    `gorm:"column:order_id"`
	OrderDate         time.Time `gorm:"column:order_date"`
	Status            string    `gorm:"column:status"`
	TotalAmount       float64   `gorm:"column:total_amount"`
	ProductName       string    `gorm:"column:product_name"`
	Category          string    `gorm:"column:category"`
	SubCategory       string    `gorm:"column:sub_category"`
	Brand             string    `gorm:"column:brand"`
	Quantity          int       `gorm:"column:quantity"`
	LineTotal         float64   `gorm:"column:line_total"`
	FirstName         string    `gorm:"column:first_name"`
	LastName          string    `gorm:"column:last_name"`
	City              string    `gorm:"column:city"`
	State             string    `gorm:"column:state"`
	Segment           string    `gorm:"column:segment"`
	PaymentMethod     *string   `gorm:"column:payment_method"`
	PaymentAmount     *float64  `gorm:"column:payment_amount"`
	GoldSystemColumns `gorm:"embedded"`
}

func (ReportingSalesWide) TableName() string { return "reporting_sales_wide" }

// ReportingCustomerStats is per-customer order history statistics enriched
// with the customer dimension. Customers with zero orders are excluded by
// construction of the inner join on grouped order data.
type ReportingCustomerStats struct {
	CustomerID        string    `gorm:"column:customer_id"`
	FirstOrder        time.Time `gorm:"column:first_order"`
	LastOrder         time.Time `gorm:"column:last_order"`
	TotalSpend        float64   `gorm:"column:total_spend"`
	OrdersCount       int       `gorm:"column:orders_count"`
	FirstName         string    `gorm:"column:first_name"`
	LastName          string    `gorm:"column:last_name"`
	Email             string    `gorm:"column:email"`
	GoldSystemColumns `gorm:"embedded"`
}

func (ReportingCustomerStats) TableName() string { return "reporting_customer_stats" }
