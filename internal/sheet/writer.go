package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/JonMunkholm/mxgroup/internal/core"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// NewWriter returns the writer for an output format.
func NewWriter(format string) (core.SheetWriter, error) {
	switch strings.ToLower(format) {
	case FormatXLSX:
		return XLSXWriter{}, nil
	case FormatCSV:
		return CSVWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// XLSXWriter writes a single-sheet workbook with one value per row in
// column A.
type XLSXWriter struct{}

// DefaultSheetName names the generated worksheet.
const DefaultSheetName = "Emails"

func (XLSXWriter) Write(values []string) ([]byte, error) {
	f := xlsx.NewFile()
	sh, err := f.AddSheet(DefaultSheetName)
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	for _, v := range values {
		sh.AddRow().AddCell().SetString(v)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func (XLSXWriter) Extension() string { return FormatXLSX }

func (XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// CSVWriter writes one value per line.
type CSVWriter struct{}

func (CSVWriter) Write(values []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, v := range values {
		if err := w.Write([]string{v}); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (CSVWriter) Extension() string { return FormatCSV }

func (CSVWriter) ContentType() string { return "text/csv" }
