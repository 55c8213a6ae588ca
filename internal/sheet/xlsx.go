package sheet

import (
	"fmt"

	"github.com/tealeg/xlsx"
)

func loadXLSX(path string) (Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	return xlsxTable(f), nil
}

// ReadXLSX parses an in-memory workbook.
func ReadXLSX(data []byte) (Table, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	return xlsxTable(f), nil
}

func xlsxTable(f *xlsx.File) Table {
	if len(f.Sheets) == 0 {
		return Table{}
	}

	sh := f.Sheets[0]
	table := make(Table, 0, len(sh.Rows))
	for _, row := range sh.Rows {
		if row == nil {
			table = append(table, nil)
			continue
		}
		cells := make([]any, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = xlsxValue(cell)
		}
		table = append(table, cells)
	}
	return table
}

// xlsxValue maps a cell to its scalar value. Formula cells carry their
// cached result in Value.
func xlsxValue(cell *xlsx.Cell) any {
	if cell == nil || cell.Value == "" {
		return nil
	}
	switch cell.Type() {
	case xlsx.CellTypeNumeric:
		if f, err := cell.Float(); err == nil {
			return f
		}
	case xlsx.CellTypeBool:
		return cell.Bool()
	}
	return cell.Value
}
