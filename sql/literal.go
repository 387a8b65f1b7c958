package sql

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LiteralSyntax describes how a shell prints scalar values.
type LiteralSyntax struct {
	// Quote delimits string literals; a doubled Quote inside a literal stands
	// for one quote. Zero means the shell prints text without quoting, in
	// which case any token that is neither a number nor Null is text.
	Quote byte

	// Null is the token printed for NULL.
	Null string

	// Delimiters separate the fields of a record. With quoting enabled a run
	// of delimiters is one separator; without it every delimiter ends a field.
	Delimiters string

	// BackslashEscapes decodes \t, \n, \r, \0 and \\ inside bare text.
	BackslashEscapes bool

	// Infinity is the token printed for an infinite float, optionally
	// preceded by a sign. Empty when the engine has no infinite floats.
	Infinity string

	// Blobs enables X'hex' blob literals.
	Blobs bool
}

func (s LiteralSyntax) isDelimiter(c byte) bool {
	return strings.IndexByte(s.Delimiters, c) >= 0
}

func (s LiteralSyntax) quoted() bool {
	return s.Quote != 0
}

// lexQuoted reads a quoted literal starting at pos. The literal may contain
// delimiters and newlines. It returns the unquoted value and the offset just
// past the closing quote.
func lexQuoted(source []byte, pos int, syntax LiteralSyntax) (string, int, error) {
	quote := syntax.Quote
	value := []byte{}

	for cur := pos + 1; cur < len(source); cur++ {
		c := source[cur]

		if c != quote {
			value = append(value, c)
			continue
		}

		// Quotes are escaped by doubling, not backslash.
		if cur+1 < len(source) && source[cur+1] == quote {
			value = append(value, quote)
			cur++
			continue
		}

		next := cur + 1

		if next < len(source) && !isTokenEnd(source, next, syntax) {
			return "", 0, &DecodeError{
				Token:    string(source[pos:tokenEnd(source, next, syntax)]),
				Position: pos,
				Reason:   "unexpected character after closing quote",
			}
		}

		if !utf8.Valid(value) {
			return "", 0, &DecodeError{Token: string(source[pos:next]), Position: pos, Reason: "invalid UTF-8"}
		}

		return string(value), next, nil
	}

	return "", 0, &DecodeError{
		Token:    string(source[pos:]),
		Position: pos,
		Reason:   "unterminated string",
	}
}

func isTokenEnd(source []byte, pos int, syntax LiteralSyntax) bool {
	c := source[pos]

	if c == '\n' || syntax.isDelimiter(c) {
		return true
	}

	return c == '\r' && pos+1 < len(source) && source[pos+1] == '\n'
}

func tokenEnd(source []byte, pos int, syntax LiteralSyntax) int {
	for ; pos < len(source); pos++ {
		if isTokenEnd(source, pos, syntax) {
			break
		}
	}

	return pos
}

// startsLikeNumber reports whether token begins the way a numeric literal
// does: a digit, or a sign or period followed by a digit.
func startsLikeNumber(token string) bool {
	if token == "" {
		return false
	}

	i := 0

	if token[0] == '-' || token[0] == '+' {
		i++
	}

	if i < len(token) && token[i] == '.' {
		i++
	}

	return i < len(token) && token[i] >= '0' && token[i] <= '9'
}

// lexNumeric validates the numeric literal grammar: an optional sign,
// digits with an optional fraction (or a leading period), and an optional
// exponent. It reports whether the whole token matched and whether it is
// integral.
func lexNumeric(token string) (ok bool, integral bool) {
	cur := 0

	if cur < len(token) && (token[cur] == '-' || token[cur] == '+') {
		cur++
	}

	digits := 0
	periodFound := false
	expMarkerFound := false

	for ; cur < len(token); cur++ {
		c := token[cur]

		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			if periodFound || expMarkerFound {
				return false, false
			}

			periodFound = true
		case c == 'e' || c == 'E':
			if expMarkerFound || digits == 0 {
				return false, false
			}

			expMarkerFound = true

			if cur+1 < len(token) && (token[cur+1] == '-' || token[cur+1] == '+') {
				cur++
			}

			// expMarker must be followed by digits
			if cur+1 >= len(token) {
				return false, false
			}
		default:
			return false, false
		}
	}

	if digits == 0 {
		return false, false
	}

	return true, !periodFound && !expMarkerFound
}

func decodeNumeric(token string, pos int) (Column, error) {
	ok, integral := lexNumeric(token)

	if !ok {
		return Column{}, &DecodeError{Token: token, Position: pos, Reason: "malformed numeric literal"}
	}

	if integral {
		i, err := strconv.ParseInt(token, 10, 64)

		if err != nil {
			return Column{}, &DecodeError{Token: token, Position: pos, Reason: "integer out of range"}
		}

		return Column{Type: ColumnTypeInteger, Value: i}, nil
	}

	f, err := strconv.ParseFloat(token, 64)

	// Engines print an overflowed float as a huge exponent.
	if err != nil && !math.IsInf(f, 0) {
		return Column{}, &DecodeError{Token: token, Position: pos, Reason: "float out of range"}
	}

	return Column{Type: ColumnTypeFloat, Value: f}, nil
}

func unescapeBackslashes(token string, pos int) (string, error) {
	if strings.IndexByte(token, '\\') < 0 {
		return token, nil
	}

	var b strings.Builder

	for i := 0; i < len(token); i++ {
		c := token[i]

		if c != '\\' {
			b.WriteByte(c)
			continue
		}

		if i+1 >= len(token) {
			return "", &DecodeError{Token: token, Position: pos, Reason: "dangling escape"}
		}

		i++

		switch token[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(token[i])
		}
	}

	return b.String(), nil
}

// decodeBare turns an unquoted token into a column.
func decodeBare(token string, pos int, syntax LiteralSyntax) (Column, error) {
	if token == syntax.Null {
		return Column{Type: ColumnTypeNull}, nil
	}

	if syntax.Infinity != "" {
		switch token {
		case syntax.Infinity, "+" + syntax.Infinity:
			return Column{Type: ColumnTypeFloat, Value: math.Inf(1)}, nil
		case "-" + syntax.Infinity:
			return Column{Type: ColumnTypeFloat, Value: math.Inf(-1)}, nil
		}
	}

	if syntax.Blobs && isBlobLiteral(token, syntax.Quote) {
		return decodeBlob(token, pos)
	}

	if !utf8.ValidString(token) {
		return Column{}, &DecodeError{Token: token, Position: pos, Reason: "invalid UTF-8"}
	}

	if hasControl(token) {
		return Column{}, &DecodeError{Token: token, Position: pos, Reason: "control character"}
	}

	if startsLikeNumber(token) {
		// Unquoted shells print text as is, so a token that only starts like a
		// number is text there.
		if ok, _ := lexNumeric(token); ok || syntax.quoted() {
			return decodeNumeric(token, pos)
		}
	} else if syntax.quoted() {
		return Column{}, &DecodeError{Token: token, Position: pos, Reason: "text must be quoted"}
	}

	if syntax.BackslashEscapes {
		value, err := unescapeBackslashes(token, pos)

		if err != nil {
			return Column{}, err
		}

		return Column{Type: ColumnTypeText, Value: value}, nil
	}

	return Column{Type: ColumnTypeText, Value: token}, nil
}

func isBlobLiteral(token string, quote byte) bool {
	return len(token) >= 3 &&
		(token[0] == 'X' || token[0] == 'x') &&
		token[1] == quote &&
		token[len(token)-1] == quote
}

func decodeBlob(token string, pos int) (Column, error) {
	value, err := hex.DecodeString(token[2 : len(token)-1])

	if err != nil {
		return Column{}, &DecodeError{Token: token, Position: pos, Reason: "malformed blob literal"}
	}

	return Column{Type: ColumnTypeBlob, Value: value}, nil
}

// AppendLiteral appends the literal form of value, as the shell described
// by syntax would print it, to dst.
func AppendLiteral(dst []byte, value any, syntax LiteralSyntax) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return append(dst, syntax.Null...), nil
	case int64:
		return strconv.AppendInt(dst, v, 10), nil
	case int:
		return strconv.AppendInt(dst, int64(v), 10), nil
	case int32:
		return strconv.AppendInt(dst, int64(v), 10), nil
	case float64:
		if math.IsInf(v, 0) && syntax.Infinity != "" {
			if v < 0 {
				dst = append(dst, '-')
			}

			return append(dst, syntax.Infinity...), nil
		}

		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("float %v has no literal form", v)
		}

		s := strconv.FormatFloat(v, 'g', -1, 64)

		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}

		return append(dst, s...), nil
	case []byte:
		if syntax.Blobs {
			return fmt.Appendf(dst, "X%c%X%c", syntax.Quote, v, syntax.Quote), nil
		}

		return appendText(dst, string(v), syntax)
	case string:
		return appendText(dst, v, syntax)
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

func appendText(dst []byte, s string, syntax LiteralSyntax) ([]byte, error) {
	if syntax.quoted() {
		q := string(syntax.Quote)
		dst = append(dst, syntax.Quote)
		dst = append(dst, strings.ReplaceAll(s, q, q+q)...)

		return append(dst, syntax.Quote), nil
	}

	if syntax.Infinity != "" && strings.TrimLeft(s, "+-") == syntax.Infinity {
		return nil, fmt.Errorf("text %q cannot be told apart from a literal without quoting", s)
	}

	if s == syntax.Null || startsLikeNumber(s) {
		if ok, _ := lexNumeric(s); ok || s == syntax.Null {
			return nil, fmt.Errorf("text %q cannot be told apart from a literal without quoting", s)
		}
	}

	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("text %q is not valid UTF-8", s)
	}

	if syntax.BackslashEscapes {
		r := strings.NewReplacer("\\", "\\\\", "\t", "\\t", "\n", "\\n", "\r", "\\r", "\x00", "\\0")
		escaped := r.Replace(s)

		if hasControl(escaped) {
			return nil, fmt.Errorf("text %q contains a control character", s)
		}

		return append(dst, escaped...), nil
	}

	if hasControl(s) {
		return nil, fmt.Errorf("text %q contains a control character", s)
	}

	if strings.ContainsAny(s, syntax.Delimiters+"\n") {
		return nil, fmt.Errorf("text %q contains a field or record separator", s)
	}

	return append(dst, s...), nil
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}

	return false
}
