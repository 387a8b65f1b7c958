package sql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// Dialect isolates everything that differs between database shells: how
// the process is started, how the end of a statement is requested and
// recognized, how errors are reported and how values are printed.
type Dialect interface {
	// Name is the dialect's registered name.
	Name() string

	// Aliases are alternative names accepted in a connection string.
	Aliases() []string

	// Command is the default shell executable.
	Command() string

	// Args builds the shell's argument vector for database.
	Args(database string) []string

	// SetupStatements run once after the process starts.
	SetupStatements() []string

	// Sentinel is the exact output the shell prints for the completion
	// marker carrying token.
	Sentinel(token string) []byte

	// CompletionMarker is the input that makes the shell print sentinel.
	CompletionMarker(sentinel []byte) []byte

	// ErrorMessage reports whether output starts with the shell's error
	// marker and returns the message up to the end of that line.
	ErrorMessage(output []byte) (string, bool)

	// IsMetaCommand reports whether statement is a shell command rather than
	// SQL, in which case it is sent without a statement terminator.
	IsMetaCommand(statement string) bool

	Syntax() LiteralSyntax

	// TypeName maps a value kind to the engine's column type name.
	TypeName(ColumnType) string

	// Literal renders a parameter value as a constant of the query language.
	Literal(value any) (string, error)

	// Begin is the statement that opens a transaction.
	Begin() string
}

var (
	dialects      = map[string]Dialect{}
	dialectsMutex sync.RWMutex
)

func init() {
	RegisterDialect(SQLite{})
	RegisterDialect(Postgres{})
	RegisterDialect(MySQL{})
}

// RegisterDialect makes a dialect available by name and by its aliases.
func RegisterDialect(d Dialect) {
	dialectsMutex.Lock()
	defer dialectsMutex.Unlock()

	dialects[d.Name()] = d

	for _, alias := range d.Aliases() {
		dialects[alias] = d
	}
}

// LookupDialect finds a registered dialect by name or alias.
func LookupDialect(name string) (Dialect, error) {
	dialectsMutex.RLock()
	defer dialectsMutex.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))

	if d, ok := dialects[name]; ok {
		return d, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
}

// DialectNames lists the registered dialect names in order.
func DialectNames() []string {
	dialectsMutex.RLock()
	defer dialectsMutex.RUnlock()

	names := make([]string, 0, len(dialects))

	for name, d := range dialects {
		if name == d.Name() {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// sentinelLine is the sentinel shared by the shells that echo a line of
// text back verbatim.
func sentinelLine(token string) []byte {
	return []byte("__shellsql_" + token + "__\n")
}

// firstLine returns output up to the first line boundary.
func firstLine(output []byte) string {
	line, _, _ := strings.Cut(string(output), "\n")

	return strings.TrimSuffix(line, "\r")
}

// sqlLiteral renders the scalar values database/sql hands to a driver.
// Text goes through quote, which is dialect specific.
func sqlLiteral(value any, quote func(string) string) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if v {
			return "TRUE", nil
		}

		return "FALSE", nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("unsupported parameter value: %v", v)
		}

		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case string:
		return quote(v), nil
	case []byte:
		return quote(string(v)), nil
	case time.Time:
		return quote(v.Format(time.RFC3339Nano)), nil
	default:
		return "", fmt.Errorf("unsupported parameter type: %T", v)
	}
}
