package entity

import "time"

// RawSystemColumns are the system columns stamped onto every row written to
// the Raw zone during extraction.
type RawSystemColumns struct {
	IngestionTimestamp time.Time `gorm:"column:ingestion_timestamp"`
	BatchID            string    `gorm:"column:batch_id"`
	SourceSystem       string    `gorm:"column:source_system"`
	SourceFilename     string    `gorm:"column:source_filename"`
}

// RawCustomer is the customers source as ingested into Raw.
type RawCustomer struct {
	Customer         `gorm:"embedded"`
	RawSystemColumns `gorm:"embedded"`
}

func (RawCustomer) TableName() string { return "customers" }

// RawProduct is the products source as ingested into Raw.
type RawProduct struct {
	Product          `gorm:"embedded"`
	RawSystemColumns `gorm:"embedded"`
}

func (RawProduct) TableName() string { return "products" }

// RawOrder is the orders source as ingested into Raw. The order date is kept
// as the unparsed source string at this layer.
type RawOrder struct {
	Order            `gorm:"embedded"`
	RawSystemColumns `gorm:"embedded"`
}

func (RawOrder) TableName() string { return "orders" }

// RawOrderLine is the order_lines source as ingested into Raw.
type RawOrderLine struct {
	OrderLine        `gorm:"embedded"`
	RawSystemColumns `gorm:"embedded"`
}

func (RawOrderLine) TableName() string { return "order_lines" }

// RawPayment is the payments source as ingested into Raw.
type RawPayment struct {
	Payment          `gorm:"embedded"`
	RawSystemColumns `gorm:"embedded"`
}

func (RawPayment) TableName() string { return "payments" }
