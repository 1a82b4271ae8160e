package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FileCustomers, "customer_id,first_name,last_name,email,city,state,segment\n")

	src := NewCSVSource(dir)
	assert.True(t, src.Exists(FileCustomers))
	assert.False(t, src.Exists(FilePayments))
}

func TestReadCustomers(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FileCustomers,
		"customer_id,first_name,last_name,email,city,state,segment\n"+
			"C1,Ada,Lovelace,ada@example.com,London,LDN,Consumer\n"+
			"C2,Alan,Turing,alan@example.com,Manchester,MAN,Corporate\n")

	src := NewCSVSource(dir)
	customers, err := src.ReadCustomers()
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, "C1", customers[0].CustomerID)
	assert.Equal(t, "Ada", customers[0].FirstName)
	assert.Equal(t, "ada@example.com", customers[0].Email)
	assert.Equal(t, "Corporate", customers[1].Segment)
}

func TestReadCustomersHeaderOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FileCustomers,
		"segment,state,city,email,last_name,first_name,customer_id\n"+
			"Consumer,LDN,London,ada@example.com,Lovelace,Ada,C1\n")

	src := NewCSVSource(dir)
	customers, err := src.ReadCustomers()
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "C1", customers[0].CustomerID)
	assert.Equal(t, "Lovelace", customers[0].LastName)
}

func TestReadOrdersKeepsDateAsString(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FileOrders,
		"order_id,customer_id,order_date,status,total_amount\n"+
			"O1,C1,2024-03-01,SHIPPED,50.00\n")

	src := NewCSVSource(dir)
	orders, err := src.ReadOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "2024-03-01", orders[0].OrderDate)
	assert.Equal(t, 50.0, orders[0].TotalAmount)
}

func TestReadOrderLinesParsesNumbers(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FileOrderLines,
		"order_line_id,order_id,product_id,quantity,unit_price,line_total\n"+
			"L1,O1,P1,3,9.99,29.97\n")

	src := NewCSVSource(dir)
	lines, err := src.ReadOrderLines()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 9.99, lines[0].UnitPrice)
	assert.Equal(t, 29.97, lines[0].LineTotal)
}

func TestReadProductsInvalidNumberFails(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FileProducts,
		"product_id,product_name,category,sub_category,brand,unit_price\n"+
			"P1,Widget,Tools,Hand Tools,Acme,not-a-number\n")

	src := NewCSVSource(dir)
	_, err := src.ReadProducts()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit_price")
}

func TestReadMissingColumnFails(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FilePayments,
		"payment_id,order_id,payment_amount\n"+
			"PAY1,O1,50.00\n")

	src := NewCSVSource(dir)
	_, err := src.ReadPayments()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment_method")
}

func TestReadMissingFileFails(t *testing.T) {
	src := NewCSVSource(t.TempDir())
	_, err := src.ReadCustomers()
	assert.Error(t, err)
}

func TestReadEmptyFileFails(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FileCustomers, "")

	src := NewCSVSource(dir)
	_, err := src.ReadCustomers()
	assert.Error(t, err)
}

func TestReadHeaderOnlyYieldsNoRows(t *testing.T) {
	dir := t.TempDir()
	writeSourceFile(t, dir, FilePayments, "payment_id,order_id,payment_method,payment_amount\n")

	src := NewCSVSource(dir)
	payments, err := src.ReadPayments()
	require.NoError(t, err)
	assert.Empty(t, payments)
}
