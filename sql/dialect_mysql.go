package sql

import (
	"fmt"
	"regexp"
	"strings"
)

var mysqlErrorPattern = regexp.MustCompile(`^ERROR(?: \d+)?(?: \([0-9A-Z]+\))?(?: at line \d+)?:\s*(.*)$`)

// MySQL drives the mysql client in batch mode. Fields are tab separated,
// special characters in text are backslash escaped and NULL prints as NULL.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Aliases() []string { return []string{"mariadb"} }

func (MySQL) Command() string { return "mysql" }

func (MySQL) Args(database string) []string {
	args := []string{"--batch", "--skip-column-names", "--unbuffered", "--force"}

	if database != "" {
		args = append(args, database)
	}

	return args
}

func (MySQL) SetupStatements() []string {
	return nil
}

func (MySQL) Sentinel(token string) []byte {
	return sentinelLine(token)
}

func (MySQL) CompletionMarker(sentinel []byte) []byte {
	return fmt.Appendf(nil, "SELECT '%s';", strings.TrimSuffix(string(sentinel), "\n"))
}

func (MySQL) ErrorMessage(output []byte) (string, bool) {
	match := mysqlErrorPattern.FindStringSubmatch(firstLine(output))

	if match == nil {
		return "", false
	}

	return strings.TrimSpace(match[1]), true
}

func (MySQL) IsMetaCommand(statement string) bool {
	return strings.HasPrefix(strings.TrimSpace(statement), `\`)
}

func (MySQL) Syntax() LiteralSyntax {
	return LiteralSyntax{
		Null:             "NULL",
		Delimiters:       "\t",
		BackslashEscapes: true,
	}
}

func (MySQL) TypeName(t ColumnType) string {
	switch t {
	case ColumnTypeInteger:
		return "BIGINT"
	case ColumnTypeFloat:
		return "DOUBLE"
	case ColumnTypeText:
		return "TEXT"
	case ColumnTypeBlob:
		return "BLOB"
	default:
		return "NULL"
	}
}

func (MySQL) Literal(value any) (string, error) {
	return sqlLiteral(value, func(text string) string {
		r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\x00", `\0`, "\n", `\n`, "\r", `\r`)

		return "'" + r.Replace(text) + "'"
	})
}

func (MySQL) Begin() string { return "START TRANSACTION" }
