package sheet

import (
	"errors"
	"fmt"

	"github.com/extrame/xls"
)

// loadXLS reads a legacy BIFF workbook. The reader reports every cell as
// text, so numbers arrive as their formatted string.
func loadXLS(path string) (table Table, err error) {
	// The BIFF parser panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			table, err = nil, fmt.Errorf("read xls: %v", r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb == nil {
		return nil, errors.New("open xls: no workbook stream")
	}

	sh := wb.GetSheet(0)
	if sh == nil {
		return Table{}, nil
	}

	table = make(Table, 0, int(sh.MaxRow)+1)
	for i := 0; i <= int(sh.MaxRow); i++ {
		row := sh.Row(i)
		if row == nil {
			table = append(table, nil)
			continue
		}
		cells := make([]any, row.LastCol()+1)
		for c := row.FirstCol(); c <= row.LastCol(); c++ {
			if v := row.Col(c); v != "" {
				cells[c] = v
			}
		}
		table = append(table, cells)
	}
	return table, nil
}
