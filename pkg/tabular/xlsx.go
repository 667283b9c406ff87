package tabular

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the longest sheet name a workbook accepts
const maxSheetName = 31

// ReadXLSX reads every row of the workbook's first sheet.
// Cells are read unformatted, so date cells arrive as serial numbers.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	first := f.GetSheetName(0)
	if first == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(first, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", first, err)
	}

	return rows, nil
}

// WriteXLSX writes one sheet per table, in order
func WriteXLSX(w io.Writer, tables []Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(tables))
	for i, table := range tables {
		name := sheetName(table.Name, i, used)

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		for r, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address row %d: %w", r+1, err)
			}

			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d of %s: %w", r+1, name, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// sheetName replaces characters a sheet name may not hold, truncates to the
// workbook limit and keeps names unique
func sheetName(name string, index int, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)

	runes := []rune(name)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	candidate := string(runes)
	if candidate == "" || used[candidate] {
		suffix := fmt.Sprintf("_%d", index+1)
		if len(runes) > maxSheetName-len(suffix) {
			runes = runes[:maxSheetName-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	used[candidate] = true
	return candidate
}
