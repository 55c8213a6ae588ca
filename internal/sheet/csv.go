package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func loadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses r as CSV. A leading UTF-8 byte order mark is dropped and
// invalid UTF-8 is replaced with U+FFFD. Rows may have different widths.
// The input is read completely so syntax errors surface here.
func ReadCSV(r io.Reader) (Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	table := make(Table, len(records))
	for i, record := range records {
		row := make([]any, len(record))
		for j, field := range record {
			if field != "" {
				row[j] = field
			}
		}
		table[i] = row
	}
	return table, nil
}
