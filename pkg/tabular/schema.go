package tabular

import (
	"fmt"
	"reflect"
	"strings"
)

// Column defines one column of a table model
type Column struct {
	Name     string
	Field    string
	Optional bool
}

// Table is a named block of rows, header first
type Table struct {
	Name string
	Rows [][]string
}

// ColumnsFromModel builds the column list by reflecting on a struct definition.
// Fields must have a `table:"column_name"` tag; append ",optional" to allow the
// column to be absent on import. Fields tagged "-" are ignored.
func ColumnsFromModel(model any) ([]Column, error) {
	t := reflect.TypeOf(model)

	// Handle pointer to struct
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %v", t)
	}

	columns := make([]Column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get("table")
		if tag == "-" {
			continue
		}
		if tag == "" {
			return nil, fmt.Errorf("field %s.%s missing 'table' tag", t.Name(), field.Name)
		}

		name, opts, _ := strings.Cut(tag, ",")
		columns = append(columns, Column{
			Name:     name,
			Field:    field.Name,
			Optional: opts == "optional",
		})
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("struct %s has no columns", t.Name())
	}

	return columns, nil
}

// Header returns the column names of a table model
func Header(model any) ([]string, error) {
	columns, err := ColumnsFromModel(model)
	if err != nil {
		return nil, err
	}

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	return header, nil
}

func normaliseHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}
