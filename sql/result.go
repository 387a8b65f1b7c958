package sql

// Result is returned for statements run through Exec. Shells do not report
// row counts or insert ids in a form that can be told apart from row data,
// so both accessors return ErrNotSupported.
type Result struct {
	Rows [][]Column
}

func NewResult(rows [][]Column) *Result {
	return &Result{
		Rows: rows,
	}
}

func (r *Result) LastInsertId() (int64, error) {
	return 0, ErrNotSupported
}

func (r *Result) RowsAffected() (int64, error) {
	return 0, ErrNotSupported
}
