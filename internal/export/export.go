// Package export writes extracted records to an xlsx workbook.
package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/abdulrahman2018/PDF-DataExtractor/internal/fields"
)

// Sheet layout
const (
	SheetName   = "Extracted Data"
	widthMargin = 2
)

// Columns is the fixed header row
var Columns = []string{"Section", "Detail"}

// Summary reports what an export did
type Summary struct {
	Path    string `json:"path,omitempty"`
	Rows    int    `json:"rows"`
	Written bool   `json:"written"`
	Bytes   int64  `json:"bytes,omitempty"`
}

// Exporter renders records as a single-sheet workbook
type Exporter struct {
	logger *slog.Logger
}

// New returns an exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// WriteFile saves records to path. When records is empty nothing is written,
// a warning is logged and Summary.Written is false.
func (e *Exporter) WriteFile(path string, records []fields.Record) (*Summary, error) {
	if len(records) == 0 {
		e.logger.Warn("export.xlsx.empty", "path", path)
		return &Summary{Path: path}, nil
	}

	var buf bytes.Buffer
	n, err := e.WriteTo(&buf, records)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("export.xlsx.ok", "path", path, "rows", len(records), "bytes", n)
	return &Summary{Path: path, Rows: len(records), Written: true, Bytes: n}, nil
}

// WriteTo streams the workbook for records to w, even when records is empty
func (e *Exporter) WriteTo(w io.Writer, records []fields.Record) (int64, error) {
	start := time.Now()

	f, err := Build(records)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := f.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Debug("export.xlsx.rendered", "rows", len(records), "elapsed_ms", time.Since(start).Milliseconds())
	return n, nil
}

// Build lays out records in a new workbook: a header row, one row per record
// in order, columns sized to their longest value and a filter over the range.
// The caller must Close the returned file.
func Build(records []fields.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(Columns))
	for i, h := range Columns {
		widths[i] = utf8.RuneCountInString(h)
	}
	write := func(col, row int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if l := utf8.RuneCountInString(v); l > widths[col-1] {
			widths[col-1] = l
		}
		return f.SetCellStr(SheetName, cell, v)
	}

	for i, h := range Columns {
		if err := write(i+1, 1, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range records {
		row := i + 2
		if err := write(1, row, string(rec.Section)); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		if err := write(2, row, rec.Detail); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		width := float64(w + widthMargin)
		if width > excelize.MaxColumnWidth {
			width = excelize.MaxColumnWidth
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(Columns), len(records)+1)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.AutoFilter(SheetName, "A1:"+last, nil); err != nil {
		f.Close()
		return nil, fmt.Errorf("set auto filter: %w", err)
	}

	return f, nil
}
