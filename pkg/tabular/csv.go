package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV reads every record of a comma- or semicolon-separated file.
// The separator is detected from the header line.
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comma = detectComma(data)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	return rows, nil
}

// WriteCSV writes the rows as comma-separated records
func WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// detectComma picks ';' when the first line has more semicolons than commas
func detectComma(data []byte) rune {
	commas, semicolons := 0, 0
	for _, b := range data {
		if b == '\n' {
			break
		}
		switch b {
		case ',':
			commas++
		case ';':
			semicolons++
		}
	}
	if semicolons > commas {
		return ';'
	}
	return ','
}
