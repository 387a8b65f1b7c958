package sql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
)

var postgresErrorPattern = regexp.MustCompile(`^(?:psql:[^:]*:\d+: )?(?:ERROR|FATAL):\s*(.*)$`)

// Postgres drives psql in unaligned, tuples-only mode with tab separated
// fields and \N for NULL. psql prints text without quoting.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Aliases() []string { return []string{"postgresql", "psql", "pg"} }

func (Postgres) Command() string { return "psql" }

func (Postgres) Args(database string) []string {
	args := []string{
		"-X", "-q", "-A", "-t",
		"-F", "\t",
		"-P", `null=\N`,
		"-P", "pager=off",
		"-v", "ON_ERROR_STOP=0",
	}

	if database != "" {
		args = append(args, "-d", database)
	}

	return args
}

func (Postgres) SetupStatements() []string {
	return []string{`\set VERBOSITY terse`}
}

func (Postgres) Sentinel(token string) []byte {
	return sentinelLine(token)
}

func (Postgres) CompletionMarker(sentinel []byte) []byte {
	return fmt.Appendf(nil, `\echo %s`, strings.TrimSuffix(string(sentinel), "\n"))
}

func (Postgres) ErrorMessage(output []byte) (string, bool) {
	match := postgresErrorPattern.FindStringSubmatch(firstLine(output))

	if match == nil {
		return "", false
	}

	return strings.TrimSpace(match[1]), true
}

func (Postgres) IsMetaCommand(statement string) bool {
	return strings.HasPrefix(strings.TrimSpace(statement), `\`)
}

func (Postgres) Syntax() LiteralSyntax {
	return LiteralSyntax{
		Null:       `\N`,
		Delimiters: "\t",
		Infinity:   "Infinity",
	}
}

func (Postgres) TypeName(t ColumnType) string {
	switch t {
	case ColumnTypeInteger:
		return "bigint"
	case ColumnTypeFloat:
		return "double precision"
	case ColumnTypeText:
		return "text"
	case ColumnTypeBlob:
		return "bytea"
	default:
		return "unknown"
	}
}

func (Postgres) Literal(value any) (string, error) {
	return sqlLiteral(value, pq.QuoteLiteral)
}

func (Postgres) Begin() string { return "BEGIN" }
