package sql

// scanStatement calls fn with the offset of every byte of query that is
// outside string literals, quoted identifiers and comments. Comments are
// -- to the end of the line and /* */ blocks. With backslashEscapes a
// backslash inside a literal escapes the next byte, as in mysql.
func scanStatement(query string, backslashEscapes bool, fn func(offset int)) {
	var quote byte

	for i := 0; i < len(query); i++ {
		c := query[i]

		if quote != 0 {
			switch {
			case backslashEscapes && c == '\\' && quote != '`':
				i++
			case c == quote:
				quote = 0
			}

			continue
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			for i < len(query) && query[i] != '\n' {
				i++
			}

			// The newline itself is whitespace outside the comment.
			if i < len(query) {
				fn(i)
			}
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			i += 2

			for i < len(query) && !(query[i] == '*' && i+1 < len(query) && query[i+1] == '/') {
				i++
			}

			i++
		default:
			fn(i)
		}
	}
}

// isTerminated reports whether the last byte of query that is neither
// whitespace nor part of a comment is a statement terminator.
func isTerminated(query string, backslashEscapes bool) bool {
	last := byte(0)

	scanStatement(query, backslashEscapes, func(offset int) {
		switch c := query[offset]; c {
		case ' ', '\t', '\r', '\n':
		default:
			last = c
		}
	})

	return last == ';'
}
