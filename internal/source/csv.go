// Package source reads the delimited source extracts that feed the Raw zone.
package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tigerroll/riptide/internal/domain/entity"
	"github.com/tigerroll/riptide/internal/support/exception"
)

const moduleName = "source"

// Source file names expected under the configured sources directory.
const (
	FileCustomers  = "customers.csv"
	FileProducts   = "products.csv"
	FileOrders     = "orders.csv"
	FileOrderLines = "order_lines.csv"
	FilePayments   = "payments.csv"
)

// CSVSource reads headered CSV extracts from a local directory. Column
// order in the files is not assumed; fields are resolved by header name.
type CSVSource struct {
	dir string
}

func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{dir: dir}
}

// Dir returns the directory the source reads from.
func (s *CSVSource) Dir() string {
	return s.dir
}

// Exists reports whether the named source file is present.
func (s *CSVSource) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// header maps column names to their index within a record.
type header map[string]int

func (h header) field(record []string, name string) (string, error) {
	idx, ok := h[name]
	if !ok {
		return "", fmt.Errorf("missing column '%s'", name)
	}
	if idx >= len(record) {
		return "", fmt.Errorf("record too short for column '%s'", name)
	}
	return record[idx], nil
}

func (h header) floatField(record []string, name string) (float64, error) {
	raw, err := h.field(record, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("column '%s': invalid number %q: %w", name, raw, err)
	}
	return v, nil
}

func (h header) intField(record []string, name string) (int, error) {
	raw, err := h.field(record, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column '%s': invalid integer %q: %w", name, raw, err)
	}
	return v, nil
}

// readAll opens the named file and applies parse to every data record.
// Any malformed record aborts the whole read; a half-parsed extract must
// never reach the Raw zone.
func readAll[T any](s *CSVSource, name string, parse func(h header, record []string) (T, error)) ([]T, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, exception.NewETLError(moduleName, fmt.Sprintf("failed to open source file '%s'", name), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, exception.NewETLError(moduleName, fmt.Sprintf("failed to parse source file '%s'", name), err)
	}
	if len(records) == 0 {
		return nil, exception.NewETLErrorf(moduleName, "source file '%s' has no header row", name)
	}

	h := make(header, len(records[0]))
	for i, col := range records[0] {
		h[col] = i
	}

	out := make([]T, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parse(h, record)
		if err != nil {
			return nil, exception.NewETLError(moduleName,
				fmt.Sprintf("source file '%s' row %d", name, i+2), err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *CSVSource) ReadCustomers() ([]entity.Customer, error) {
	return readAll(s, FileCustomers, func(h header, rec []string) (entity.Customer, error) {
		var c entity.Customer
		var err error
		if c.CustomerID, err = h.field(rec, "customer_id"); err != nil {
			return c, err
		}
		if c.FirstName, err = h.field(rec, "first_name"); err != nil {
			return c, err
		}
		if c.LastName, err = h.field(rec, "last_name"); err != nil {
			return c, err
		}
		if c.Email, err = h.field(rec, "email"); err != nil {
			return c, err
		}
		if c.City, err = h.field(rec, "city"); err != nil {
			return c, err
		}
		if c.State, err = h.field(rec, "state"); err != nil {
			return c, err
		}
		if c.Segment, err = h.field(rec, "segment"); err != nil {
			return c, err
		}
		return c, nil
	})
}

func (s *CSVSource) ReadProducts() ([]entity.Product, error) {
	return readAll(s, FileProducts, func(h header, rec []string) (entity.Product, error) {
		var p entity.Product
		var err error
		if p.ProductID, err = h.field(rec, "product_id"); err != nil {
			return p, err
		}
		if p.ProductName, err = h.field(rec, "product_name"); err != nil {
			return p, err
		}
		if p.Category, err = h.field(rec, "category"); err != nil {
			return p, err
		}
		if p.SubCategory, err = h.field(rec, "sub_category"); err != nil {
			return p, err
		}
		if p.Brand, err = h.field(rec, "brand"); err != nil {
			return p, err
		}
		if p.UnitPrice, err = h.floatField(rec, "unit_price"); err != nil {
			return p, err
		}
		return p, nil
	})
}

func (s *CSVSource) ReadOrders() ([]entity.Order, error) {
	return readAll(s, FileOrders, func(h header, rec []string) (entity.Order, error) {
		var o entity.Order
		var err error
		if o.OrderID, err = h.field(rec, "order_id"); err != nil {
			return o, err
		}
		if o.CustomerID, err = h.field(rec, "customer_id"); err != nil {
			return o, err
		}
		if o.OrderDate, err = h.field(rec, "order_date"); err != nil {
			return o, err
		}
		if o.Status, err = h.field(rec, "status"); err != nil {
			return o, err
		}
		if o.TotalAmount, err = h.floatField(rec, "total_amount"); err != nil {
			return o, err
		}
		return o, nil
	})
}

func (s *CSVSource) ReadOrderLines() ([]entity.OrderLine, error) {
	return readAll(s, FileOrderLines, func(h header, rec []string) (entity.OrderLine, error) {
		var l entity.OrderLine
		var err error
		if l.OrderLineID, err = h.field(rec, "order_line_id"); err != nil {
			return l, err
		}
		if l.OrderID, err = h.field(rec, "order_id"); err != nil {
			return l, err
		}
		if l.ProductID, err = h.field(rec, "product_id"); err != nil {
			return l, err
		}
		if l.Quantity, err = h.intField(rec, "quantity"); err != nil {
			return l, err
		}
		if l.UnitPrice, err = h.floatField(rec, "unit_price"); err != nil {
			return l, err
		}
		if l.LineTotal, err = h.floatField(rec, "line_total"); err != nil {
			return l, err
		}
		return l, nil
	})
}

func (s *CSVSource) ReadPayments() ([]entity.Payment, error) {
	return readAll(s, FilePayments, func(h header, rec []string) (entity.Payment, error) {
		var p entity.Payment
		var err error
		if p.PaymentID, err = h.field(rec, "payment_id"); err != nil {
			return p, err
		}
		if p.OrderID, err = h.field(rec, "order_id"); err != nil {
			return p, err
		}
		if p.PaymentMethod, err = h.field(rec, "payment_method"); err != nil {
			return p, err
		}
		if p.PaymentAmount, err = h.floatField(rec, "payment_amount"); err != nil {
			return p, err
		}
		return p, nil
	})
}
