package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/daviidwuu/invoiceAI/internal/entity"
)

// Service produces tabular exports of invoice records. It consumes trimmed
// field values only; no raw matches reach an export.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Headers is the column order shared by the XLSX and TSV encodings.
var Headers = []string{
	"Invoice Date",
	"Invoice Number",
	"Address",
	"Description",
	"Amount",
	"Vendor Code",
}

// WriteXLSX returns an XLSX workbook (as bytes) holding the given records.
func (s *Service) WriteXLSX(records []entity.InvoiceRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Invoices"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.InvoiceDate)
		write(2, r.InvoiceNumber)
		write(3, r.Address)
		write(4, r.Description)
		write(5, r.Amount)
		write(6, r.VendorCode)
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 20) // number
	_ = f.SetColWidth(sheet, "C", "C", 40) // address
	_ = f.SetColWidth(sheet, "D", "D", 48) // description
	_ = f.SetColWidth(sheet, "E", "E", 14) // amount
	_ = f.SetColWidth(sheet, "F", "F", 14) // vendor code

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteTSV returns the records as tab-separated lines with a header row.
func (s *Service) WriteTSV(records []entity.InvoiceRecord) string {
	var b strings.Builder
	b.WriteString(strings.Join(Headers, "\t"))
	b.WriteByte('\n')
	for _, r := range records {
		b.WriteString(r.TSV())
		b.WriteByte('\n')
	}
	return b.String()
}
