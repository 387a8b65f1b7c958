package sql

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

func namedValues(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))

	for i, arg := range args {
		named[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}

	return named
}

// scanPlaceholders calls fn with the offset of every ? that is outside of
// string literals, quoted identifiers and comments.
func scanPlaceholders(query string, backslashEscapes bool, fn func(offset int)) {
	scanStatement(query, backslashEscapes, func(offset int) {
		if query[offset] == '?' {
			fn(offset)
		}
	})
}

func countPlaceholders(query string, backslashEscapes bool) int {
	count := 0

	scanPlaceholders(query, backslashEscapes, func(int) {
		count++
	})

	return count
}

// interpolateParameters replaces each ? placeholder with the dialect's
// literal for the matching argument. Shells have no bind protocol, so
// parameters travel as constants inside the statement text.
func interpolateParameters(query string, args []driver.NamedValue, dialect Dialect) (string, error) {
	if len(args) == 0 {
		return query, nil
	}

	for _, arg := range args {
		if arg.Name != "" {
			return "", fmt.Errorf("named parameter %q: %w", arg.Name, ErrNotSupported)
		}
	}

	var (
		b        strings.Builder
		last     int
		index    int
		literals []string
	)

	for _, arg := range args {
		literal, err := dialect.Literal(arg.Value)

		if err != nil {
			return "", err
		}

		literals = append(literals, literal)
	}

	scanPlaceholders(query, dialect.Syntax().BackslashEscapes, func(offset int) {
		b.WriteString(query[last:offset])

		if index < len(literals) {
			b.WriteString(literals[index])
		}

		last = offset + 1
		index++
	})

	if index != len(literals) {
		return "", errors.New("number of placeholders does not match number of arguments")
	}

	b.WriteString(query[last:])

	return b.String(), nil
}
