package sql

import (
	"fmt"
	"regexp"
	"strings"
)

var sqliteErrorPattern = regexp.MustCompile(`^(?:Parse error|Runtime error|Error)(?: near line \d+)?: (?:near line \d+: )?(.*)$`)

// SQLite drives the sqlite3 command line shell in quote mode, where text is
// printed as SQL string literals, blobs as X'hex' literals and NULL as the
// NULL keyword.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite3" }

func (SQLite) Aliases() []string { return []string{"sqlite"} }

func (SQLite) Command() string { return "sqlite3" }

func (SQLite) Args(database string) []string {
	if database == "" {
		database = ":memory:"
	}

	return []string{"-batch", "-quote", "-separator", "\t", database}
}

func (SQLite) SetupStatements() []string {
	return []string{".headers off"}
}

func (SQLite) Sentinel(token string) []byte {
	return sentinelLine(token)
}

func (SQLite) CompletionMarker(sentinel []byte) []byte {
	return fmt.Appendf(nil, ".print %s", strings.TrimSuffix(string(sentinel), "\n"))
}

func (SQLite) ErrorMessage(output []byte) (string, bool) {
	match := sqliteErrorPattern.FindStringSubmatch(firstLine(output))

	if match == nil {
		return "", false
	}

	return strings.TrimSpace(match[1]), true
}

func (SQLite) IsMetaCommand(statement string) bool {
	return strings.HasPrefix(strings.TrimSpace(statement), ".")
}

func (SQLite) Syntax() LiteralSyntax {
	return LiteralSyntax{
		Quote:      '\'',
		Null:       "NULL",
		Delimiters: "\t ",
		Infinity:   "Inf",
		Blobs:      true,
	}
}

func (SQLite) TypeName(t ColumnType) string {
	switch t {
	case ColumnTypeInteger:
		return "INTEGER"
	case ColumnTypeFloat:
		return "REAL"
	case ColumnTypeText:
		return "TEXT"
	case ColumnTypeBlob:
		return "BLOB"
	default:
		return "NULL"
	}
}

func (SQLite) Literal(value any) (string, error) {
	return sqlLiteral(value, func(text string) string {
		return "'" + strings.ReplaceAll(text, "'", "''") + "'"
	})
}

func (SQLite) Begin() string { return "BEGIN" }
