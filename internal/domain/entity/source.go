// Package entity defines the table schemas carried through the medallion
// zones: the five business source records, their Raw ingestion forms, the
// Curated dimension and fact tables, and the Gold reporting tables. Every
// persisted entity declares its table name explicitly via TableName().
package entity

// Customer is one row of the customers source, keyed by customer_id.
type Customer struct {
	CustomerID string `gorm:"column:customer_id"`
	FirstName  string `gorm:"column:first_name"`
	LastName   string `gorm:"column:last_name"`
	Email      string `gorm:"column:email"`
	City       string `gorm:"column:city"`
	State      string `gorm:"column:state"`
	Segment    string `gorm:"column:segment"`
}

// Product is one row of the products source, keyed by product_id.
type Product struct {
	ProductID   string  `gorm:"column:product_id"`
	ProductName string  `gorm:"column:product_name"`
	Category    string  `gorm:"column:category"`
	SubCategory string  `gorm:"column:sub_category"`
	Brand       string  `gorm:"column:brand"`
	UnitPrice   float64 `gorm:"column:unit_price"`
}

// Order is one row of the orders source, keyed by order_id.
// OrderDate arrives as an unparsed string; the fact load converts it to a
// proper temporal type.
type Order struct {
	OrderID     string  `gorm:"column:order_id"`
	CustomerID  string  `gorm:"column:customer_id"`
	OrderDate   string  `gorm:"column:order_date"`
	Status      string  `gorm:"column:status"`
	TotalAmount float64 `gorm:"column:total_amount"`
}

// OrderLine is one row of the order_lines source, keyed by order_line_id.
type OrderLine struct {
	OrderLineID string  `gorm:"column:order_line_id"`
	OrderID     string  `gorm:"column:order_id"`
	ProductID   string  `gorm:"column:product_id"`
	Quantity    int     `gorm:"column:quantity"`
	UnitPrice   float64 `gorm:"column:unit_price"`
	LineTotal   float64 `gorm:"column:line_total"`
}

// Payment is one row of the payments source, keyed by payment_id.
// Not every order has a payment row.
type Payment struct {
	PaymentID     string  `gorm:"column:payment_id"`
	OrderID       string  `gorm:"column:order_id"`
	PaymentMethod string  `gorm:"column:payment_method"`
	PaymentAmount float64 `gorm:"column:payment_amount"`
}
