package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileReader reads tabular files from disk, choosing the format by extension
type FileReader struct{}

// ReadRows reads a .csv or .xlsx file into rows
func (FileReader) ReadRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .csv or .xlsx)", filepath.Ext(path))
	}
}

// CSVExporter writes each table to its own file: <dir>/<prefix>_<table>.csv
type CSVExporter struct {
	Dir string
}

// Export writes the tables and returns the paths written
func (e CSVExporter) Export(prefix string, tables []Table) ([]string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	paths := make([]string, 0, len(tables))
	for _, table := range tables {
		path := filepath.Join(e.Dir, fmt.Sprintf("%s_%s.csv", prefix, fileSafe(table.Name)))
		if err := writeFile(path, func(f *os.File) error { return WriteCSV(f, table.Rows) }); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// XLSXExporter writes every table as a sheet of one workbook: <dir>/<prefix>.xlsx
type XLSXExporter struct {
	Dir string
}

// Export writes the workbook and returns its path
func (e XLSXExporter) Export(prefix string, tables []Table) ([]string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.Dir, prefix+".xlsx")
	if err := writeFile(path, func(f *os.File) error { return WriteXLSX(f, tables) }); err != nil {
		return nil, err
	}

	return []string{path}, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
