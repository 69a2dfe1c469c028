package writer

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reltab/reltab/internal/errors"
	"github.com/reltab/reltab/internal/models"
)

// WriteSQLite materializes the tables into a SQLite database at path,
// replacing any existing file. Key columns become INTEGER, everything else
// TEXT; all inserts run in one transaction so a failure leaves no partial
// database behind.
func WriteSQLite(path string, tables []*models.Table, opts Options) error {
	os.Remove(path)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to open database '%s'", path), err)
	}
	defer db.Close()

	byName := make(map[string]*models.Table, len(tables))
	for _, table := range tables {
		byName[table.Name] = table
	}
	for _, table := range tables {
		if _, err := db.Exec(createTableDDL(table, byName, opts)); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to create table '%s'", table.Name), err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewOutputError("failed to begin transaction", err)
	}
	for _, table := range tables {
		if err := insertRows(tx, table, opts); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.NewOutputError("failed to commit", err)
	}
	return nil
}

// createTableDDL builds the CREATE TABLE statement for one table. The
// surrogate key becomes INTEGER PRIMARY KEY; every foreign key column
// carries a REFERENCES clause pointing at its parent table's primary key,
// so a table merged from several structural positions references each of
// its parents.
func createTableDDL(table *models.Table, byName map[string]*models.Table, opts Options) string {
	var cols []string
	for _, col := range table.Columns {
		name := quoteIdent(opts.headerFor(col))
		if col == table.PK {
			cols = append(cols, name+" INTEGER PRIMARY KEY")
			continue
		}
		if parent, ok := table.ForeignKeyParent(col); ok {
			if p, ok := byName[parent]; ok && p.PK != "" {
				cols = append(cols, fmt.Sprintf("%s INTEGER REFERENCES %s(%s)",
					name, quoteIdent(parent), quoteIdent(opts.headerFor(p.PK))))
			} else {
				cols = append(cols, name+" INTEGER")
			}
			continue
		}
		cols = append(cols, name+" TEXT")
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table.Name), strings.Join(cols, ", "))
}

func insertRows(tx *sql.Tx, table *models.Table, opts Options) error {
	if len(table.Rows) == 0 {
		return nil
	}
	cols := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		cols[i] = quoteIdent(opts.headerFor(col))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table.Name),
		strings.Join(cols, ", "),
		strings.TrimRight(strings.Repeat("?,", len(cols)), ","),
	)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to prepare insert for '%s'", table.Name), err)
	}
	defer stmt.Close()

	for _, row := range table.Rows {
		vals := make([]interface{}, len(table.Columns))
		for i, col := range table.Columns {
			cell, ok := row[col]
			if !ok {
				vals[i] = nil
				continue
			}
			if col == table.PK || table.IsForeignKey(col) {
				if id, err := strconv.ParseInt(cell, 10, 64); err == nil {
					vals[i] = id
					continue
				}
			}
			vals[i] = cell
		}
		if _, err := stmt.Exec(vals...); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to insert into '%s'", table.Name), err)
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
