package tabular

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DateLayout is the layout of date cells
const DateLayout = "2006-01-02"

// FormatError reports a malformed header or cell. Row is the 1-based row number
// in the source, header included.
type FormatError struct {
	Row    int
	Column string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("column %s: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ErrMissingColumn is returned when a required column is absent from the header
var ErrMissingColumn = errors.New("required column missing from header")

// Decode maps rows to structs of type T. The first row is the header; columns are
// matched by name, case-insensitively, in any order. Blank rows are skipped and
// unknown columns are ignored.
func Decode[T any](rows [][]string) ([]T, error) {
	var model T
	columns, err := ColumnsFromModel(model)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, &FormatError{Column: columns[0].Name, Err: fmt.Errorf("no header row")}
	}

	// Build mapping of column name to index
	columnIndexes := make(map[string]int)
	for i, header := range rows[0] {
		columnIndexes[normaliseHeader(header)] = i
	}

	for _, col := range columns {
		if _, ok := columnIndexes[normaliseHeader(col.Name)]; !ok && !col.Optional {
			return nil, &FormatError{Column: col.Name, Err: ErrMissingColumn}
		}
	}

	t := reflect.TypeOf(model)
	results := make([]T, 0, len(rows)-1)
	for rowIdx, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		result := reflect.New(t).Elem()
		for _, col := range columns {
			colIdx, ok := columnIndexes[normaliseHeader(col.Name)]
			if !ok || colIdx >= len(row) {
				// Column is empty in this row
				continue
			}

			if err := setFieldValue(result.FieldByName(col.Field), strings.TrimSpace(row[colIdx])); err != nil {
				return nil, &FormatError{Row: rowIdx + 2, Column: col.Name, Err: err}
			}
		}

		results = append(results, result.Interface().(T))
	}

	return results, nil
}

// Encode maps structs of type T to rows, header first
func Encode[T any](models []T) ([][]string, error) {
	var zero T
	columns, err := ColumnsFromModel(zero)
	if err != nil {
		return nil, err
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}

	rows := make([][]string, 0, len(models)+1)
	rows = append(rows, header)
	for _, model := range models {
		v := reflect.ValueOf(model)
		row := make([]string, len(columns))
		for i, col := range columns {
			cell, err := formatFieldValue(v.FieldByName(col.Field))
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}

	return rows, nil
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

// setFieldValue converts a cell to the field's Go type and sets it
func setFieldValue(field reflect.Value, cell string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	switch field.Type() {
	case decimalType:
		if cell == "" {
			return nil
		}
		d, err := decimal.NewFromString(normaliseNumber(cell))
		if err != nil {
			return fmt.Errorf("failed to parse decimal: %w", err)
		}
		field.Set(reflect.ValueOf(d))
		return nil

	case timeType:
		if cell == "" {
			return nil
		}
		d, err := parseDate(cell)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil

	case reflect.PointerTo(timeType):
		if cell == "" {
			return nil
		}
		d, err := parseDate(cell)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(&d))
		return nil
	}

	// Convert based on field kind
	switch field.Kind() {
	case reflect.String:
		field.SetString(cell)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cell == "" {
			field.SetInt(0)
		} else {
			intVal, err := parseInt(cell)
			if err != nil {
				return fmt.Errorf("failed to parse int: %w", err)
			}
			field.SetInt(intVal)
		}

	case reflect.Float32, reflect.Float64:
		if cell == "" {
			field.SetFloat(0)
		} else {
			floatVal, err := strconv.ParseFloat(normaliseNumber(cell), 64)
			if err != nil {
				return fmt.Errorf("failed to parse float: %w", err)
			}
			field.SetFloat(floatVal)
		}

	case reflect.Bool:
		if cell == "" {
			field.SetBool(false)
		} else {
			boolVal, err := strconv.ParseBool(cell)
			if err != nil {
				return fmt.Errorf("failed to parse bool: %w", err)
			}
			field.SetBool(boolVal)
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// formatFieldValue renders a field as a cell
func formatFieldValue(field reflect.Value) (string, error) {
	switch v := field.Interface().(type) {
	case decimal.Decimal:
		return v.StringFixed(2), nil
	case time.Time:
		return v.Format(DateLayout), nil
	case *time.Time:
		if v == nil {
			return "", nil
		}
		return v.Format(DateLayout), nil
	case []string:
		return strings.Join(v, ", "), nil
	}

	switch field.Kind() {
	case reflect.String:
		return field.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(field.Int(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(field.Float(), 'f', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(field.Bool()), nil
	default:
		return "", fmt.Errorf("unsupported field type: %s", field.Kind())
	}
}

// parseDate accepts YYYY-MM-DD or a spreadsheet date serial ("45667")
func parseDate(cell string) (time.Time, error) {
	d, err := time.Parse(DateLayout, cell)
	if err == nil {
		return d, nil
	}

	serial, serialErr := strconv.ParseFloat(cell, 64)
	if serialErr != nil {
		return time.Time{}, fmt.Errorf("failed to parse date (expected YYYY-MM-DD): %w", err)
	}

	d, err = excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date serial %s: %w", cell, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseInt accepts whole numbers written as floats ("3.0"), which spreadsheets often produce
func parseInt(cell string) (int64, error) {
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(normaliseNumber(cell), 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%q is not a whole number", cell)
	}
	return int64(f), nil
}

// normaliseNumber accepts a decimal comma ("7,5")
func normaliseNumber(cell string) string {
	if strings.Contains(cell, ",") && !strings.Contains(cell, ".") {
		return strings.Replace(cell, ",", ".", 1)
	}
	return cell
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
