package sql

type ColumnType int

const (
	ColumnTypeUnknown ColumnType = 0
	ColumnTypeInteger ColumnType = 1
	ColumnTypeFloat   ColumnType = 2
	ColumnTypeText    ColumnType = 3
	ColumnTypeBlob    ColumnType = 4
	ColumnTypeNull    ColumnType = 5
)

func (c ColumnType) String() string {
	switch c {
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeFloat:
		return "FLOAT"
	case ColumnTypeText:
		return "TEXT"
	case ColumnTypeBlob:
		return "BLOB"
	case ColumnTypeNull:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// Column is one decoded field of a row. Value holds an int64, float64,
// string, []byte or nil depending on Type.
type Column struct {
	Type  ColumnType
	Value any
}
