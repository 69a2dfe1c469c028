// Package writer materializes converted tables as CSV files or a SQLite
// database. The core engines hand it fully built tables; nothing is written
// until conversion has completed, keeping runs all-or-nothing.
package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reltab/reltab/internal/errors"
	"github.com/reltab/reltab/internal/models"
)

// Options adjust presentation at write time.
type Options struct {
	// RenameColumn, when set, rewrites column headers (and SQLite column
	// names). Row lookups still use the original column names.
	RenameColumn func(string) string
}

func (o Options) headerFor(column string) string {
	if o.RenameColumn != nil {
		return o.RenameColumn(column)
	}
	return column
}

// WriteFlattened writes a single table to one CSV file with a header row.
func WriteFlattened(path string, table *models.Table, opts Options) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to create directory '%s'", dir), err)
		}
	}
	return writeTableCSV(path, table, opts)
}

// WriteNormalized writes every table to its own CSV file inside dir,
// creating the directory if needed. Files are named after their table.
func WriteNormalized(dir string, tables []*models.Table, opts Options) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create directory '%s'", dir), err)
	}
	for _, table := range tables {
		path := filepath.Join(dir, sanitizeFileName(table.Name)+".csv")
		if err := writeTableCSV(path, table, opts); err != nil {
			return err
		}
	}
	return nil
}

func writeTableCSV(path string, table *models.Table, opts Options) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create file '%s'", path), err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", cerr)
		}
	}()

	w := csv.NewWriter(file)

	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = opts.headerFor(col)
	}
	if err := w.Write(header); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write header to '%s'", path), err)
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			// Absent cells resolve to empty: the column may postdate
			// the row, or the document may simply lack the field.
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write row to '%s'", path), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to flush '%s'", path), err)
	}
	return nil
}

// sanitizeFileName confines table-derived file names to a single path
// element. Table names come from document field names, so a hostile input
// could otherwise smuggle separators or parent references into the path.
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, string(os.PathSeparator), "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.TrimSpace(name)
	if name == "" {
		return "table"
	}
	return name
}
