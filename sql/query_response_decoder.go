package sql

import (
	"bytes"
)

// QueryResponseDecoder decodes the complete output of one statement. The
// buffer must end with sentinel. An engine error is reported in the
// response; a *DecodeError is returned when the output is not made of valid
// literals.
func QueryResponseDecoder(buffer, sentinel []byte, dialect Dialect) (QueryResponse, error) {
	body := bytes.TrimSuffix(buffer, sentinel)

	if message, ok := dialect.ErrorMessage(body); ok {
		return QueryResponse{Error: message}, nil
	}

	syntax := dialect.Syntax()

	var (
		rows [][]Column
		err  error
	)

	if syntax.quoted() {
		rows, err = decodeQuotedRows(body, syntax)
	} else {
		rows, err = decodeDelimitedRows(body, syntax)
	}

	if err != nil {
		return QueryResponse{}, err
	}

	return QueryResponse{Rows: rows}, nil
}

// decodeQuotedRows scans literal tokens for shells that quote text. Runs of
// delimiters separate fields and a newline ends the record, unless it sits
// inside a quoted literal.
func decodeQuotedRows(body []byte, syntax LiteralSyntax) ([][]Column, error) {
	rows := [][]Column{}
	row := []Column{}
	pos := 0

	for pos < len(body) {
		c := body[pos]

		switch {
		case c == '\n':
			if len(row) > 0 {
				rows = append(rows, row)
				row = []Column{}
			}

			pos++
		case c == '\r' && pos+1 < len(body) && body[pos+1] == '\n':
			pos++
		case syntax.isDelimiter(c):
			pos++
		case c == syntax.Quote:
			value, next, err := lexQuoted(body, pos, syntax)

			if err != nil {
				return nil, err
			}

			row = append(row, Column{Type: ColumnTypeText, Value: value})
			pos = next
		default:
			end := tokenEnd(body, pos, syntax)
			column, err := decodeBare(string(body[pos:end]), pos, syntax)

			if err != nil {
				return nil, err
			}

			row = append(row, column)
			pos = end
		}
	}

	if len(row) > 0 {
		rows = append(rows, row)
	}

	return rows, nil
}

// decodeDelimitedRows splits the output of shells that print text as is.
// Every delimiter ends exactly one field, so empty fields are empty text.
// Blank lines carry no record.
func decodeDelimitedRows(body []byte, syntax LiteralSyntax) ([][]Column, error) {
	rows := [][]Column{}
	offset := 0

	for len(body) > 0 {
		line, rest, _ := bytes.Cut(body, []byte{'\n'})
		lineOffset := offset

		offset += len(line) + 1
		body = rest
		line = bytes.TrimSuffix(line, []byte{'\r'})

		if len(line) == 0 {
			continue
		}

		row := []Column{}
		start := 0

		for i := 0; i <= len(line); i++ {
			if i < len(line) && !syntax.isDelimiter(line[i]) {
				continue
			}

			column, err := decodeBare(string(line[start:i]), lineOffset+start, syntax)

			if err != nil {
				return nil, err
			}

			row = append(row, column)
			start = i + 1
		}

		rows = append(rows, row)
	}

	return rows, nil
}
