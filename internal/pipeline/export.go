package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/riptide/internal/adapter/storage"
	"github.com/tigerroll/riptide/internal/config"
	"github.com/tigerroll/riptide/internal/domain/entity"
	model "github.com/tigerroll/riptide/internal/domain/model"
	"github.com/tigerroll/riptide/internal/lineage"
	"github.com/tigerroll/riptide/internal/support/exception"
	"github.com/tigerroll/riptide/internal/support/logger"
	"github.com/tigerroll/riptide/internal/zone"
)

// ProcessExport is the process name of the Gold Parquet export stage.
const ProcessExport = "Export_Gold"

// salesWideParquet is the Parquet row shape of the wide reporting table.
// Dates are serialized as strings and nullable payment fields as optional
// columns.
type salesWideParquet struct {
	OrderID       string   `parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderDate     string   `parquet:"name=order_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status        string   `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	TotalAmount   float64  `parquet:"name=total_amount, type=DOUBLE"`
	ProductName   string   `parquet:"name=product_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category      string   `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	SubCategory   string   `parquet:"name=sub_category, type=BYTE_ARRAY, convertedtype=UTF8"`
	Brand         string   `parquet:"name=brand, type=BYTE_ARRAY, convertedtype=UTF8"`
	Quantity      int32    `parquet:"name=quantity, type=INT32"`
	LineTotal     float64  `parquet:"name=line_total, type=DOUBLE"`
	FirstName     string   `parquet:"name=first_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	LastName      string   `parquet:"name=last_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	City          string   `parquet:"name=city, type=BYTE_ARRAY, convertedtype=UTF8"`
	State         string   `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8"`
	Segment       string   `parquet:"name=segment, type=BYTE_ARRAY, convertedtype=UTF8"`
	PaymentMethod *string  `parquet:"name=payment_method, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	PaymentAmount *float64 `parquet:"name=payment_amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	BatchID       string   `parquet:"name=batch_id, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ExportStage writes the Gold wide reporting table to Parquet files under
// Hive-style dt= partitions on the configured storage connection. The stage
// is optional and only wired into the run when exports are enabled.
type ExportStage struct {
	lineage *lineage.Store
	zones   *zone.Store
	cfg     *config.Config
}

func NewExportStage(lineageStore *lineage.Store, zones *zone.Store, cfg *config.Config) *ExportStage {
	return &ExportStage{lineage: lineageStore, zones: zones, cfg: cfg}
}

func (s *ExportStage) Name() string  { return ProcessExport }
func (s *ExportStage) Layer() string { return model.ZoneGold.String() }

func (s *ExportStage) Run(ctx context.Context) model.StageResult {
	return runAudited(ctx, s.lineage, s.Name(), s.Layer(), s.export)
}

func (s *ExportStage) export(ctx context.Context) (int, error) {
	exportCfg := s.cfg.Riptide.Export

	stCfg, err := s.cfg.StorageConfigFor(exportCfg.StorageRef)
	if err != nil {
		return 0, err
	}
	conn, err := storage.NewConnection(ctx, stCfg, exportCfg.StorageRef)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Errorf("Failed to close storage connection '%s': %v", exportCfg.StorageRef, closeErr)
		}
	}()

	var rows []entity.ReportingSalesWide
	if err := s.zones.ReadTable(ctx, model.ZoneGold, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		logger.Infof("No rows in the wide reporting table; nothing to export.")
		return 0, nil
	}

	partitions := make(map[string][]salesWideParquet)
	for _, row := range rows {
		date := row.OrderDate.Format("2006-01-02")
		partitions[date] = append(partitions[date], toParquetRow(row))
	}

	exported := 0
	for date, items := range partitions {
		objectName := path.Join(exportCfg.OutputBaseDir, entity.ReportingSalesWide{}.TableName(),
			fmt.Sprintf("dt=%s", date),
			fmt.Sprintf("data_%s.parquet", s.lineage.BatchID()))

		buf, err := writeParquet(items)
		if err != nil {
			return exported, exception.NewETLError(moduleName,
				fmt.Sprintf("failed to encode Parquet for partition dt=%s", date), err)
		}
		if err := conn.Upload(ctx, stCfg.BucketName, objectName, buf, "application/octet-stream"); err != nil {
			return exported, exception.NewETLError(moduleName,
				fmt.Sprintf("failed to upload Parquet file '%s'", objectName), err)
		}
		logger.Debugf("Exported %d rows to %s.", len(items), objectName)
		exported += len(items)
	}
	return exported, nil
}

func toParquetRow(row entity.ReportingSalesWide) salesWideParquet {
	return salesWideParquet{
		OrderID:       row.OrderID,
		OrderDate:     row.OrderDate.Format("2006-01-02"),
		Status:        row.Status,
		TotalAmount:   row.TotalAmount,
		ProductName:   row.ProductName,
		Category:      row.Category,
		SubCategory:   row.SubCategory,
		Brand:         row.Brand,
		Quantity:      int32(row.Quantity),
		LineTotal:     row.LineTotal,
		FirstName:     row.FirstName,
		LastName:      row.LastName,
		City:          row.City,
		State:         row.State,
		Segment:       row.Segment,
		PaymentMethod: row.PaymentMethod,
		PaymentAmount: row.PaymentAmount,
		BatchID:       row.BatchID,
	}
}

// writeParquet encodes items into a single snappy-compressed Parquet file
// held in memory. One row group per file.
func writeParquet(items []salesWideParquet) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(salesWideParquet), int64(len(items)))
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, item := range items {
		if err := pw.Write(item); err != nil {
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	return buf, nil
}
