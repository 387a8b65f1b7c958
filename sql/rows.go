package sql

import (
	"database/sql/driver"
	"fmt"
	"io"
)

// Rows iterates over decoded rows. Shells run without headers, so columns
// are named column1, column2, and so on.
type Rows struct {
	columns []string
	dialect Dialect
	index   int
	rows    [][]Column
}

func NewRows(dialect Dialect, rows [][]Column) *Rows {
	width := 0

	for _, row := range rows {
		width = max(width, len(row))
	}

	columns := make([]string, width)

	for i := range columns {
		columns[i] = fmt.Sprintf("column%d", i+1)
	}

	return &Rows{
		columns: columns,
		dialect: dialect,
		index:   -1,
		rows:    rows,
	}
}

func (r *Rows) Columns() []string {
	return r.columns
}

func (r *Rows) Close() error {
	r.index = len(r.rows)

	return nil
}

// ColumnTypeDatabaseTypeName reports the engine's type name for the first
// non-null value in the column.
func (r *Rows) ColumnTypeDatabaseTypeName(index int) string {
	for _, row := range r.rows {
		if index < len(row) && row[index].Type != ColumnTypeNull {
			return r.dialect.TypeName(row[index].Type)
		}
	}

	return r.dialect.TypeName(ColumnTypeNull)
}

func (r *Rows) Next(dest []driver.Value) error {
	if r.index >= len(r.rows)-1 {
		return io.EOF
	}

	r.index++

	row := r.rows[r.index]

	if len(row) != len(dest) {
		return fmt.Errorf("row %d has %d fields, expected %d", r.index+1, len(row), len(dest))
	}

	for i, column := range row {
		dest[i] = column.Value
	}

	return nil
}
