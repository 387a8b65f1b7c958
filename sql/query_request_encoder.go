package sql

import (
	"bytes"
	"strings"
)

// QueryRequestEncoder writes the statement followed by the completion marker
// into outputBuffer and returns the encoded request. An unterminated SQL
// statement gets its terminator on a line of its own, so a trailing line
// comment cannot swallow it and the shell runs the statement before it
// reads the marker.
func QueryRequestEncoder(
	statement string,
	marker []byte,
	dialect Dialect,
	outputBuffer *bytes.Buffer,
) []byte {
	outputBuffer.Reset()

	statement = strings.TrimRight(statement, " \t\r\n")

	if statement != "" {
		// Write the statement
		outputBuffer.WriteString(statement)
		outputBuffer.WriteByte('\n')

		if !dialect.IsMetaCommand(statement) && !isTerminated(statement, dialect.Syntax().BackslashEscapes) {
			outputBuffer.WriteString(";\n")
		}
	}

	// Write the completion marker
	outputBuffer.Write(marker)
	outputBuffer.WriteByte('\n')

	return outputBuffer.Bytes()
}
