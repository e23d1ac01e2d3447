package sqlparse

import (
	"strconv"
	"strings"
)

// ParseLiteral converts a SQL literal token into a typed Go value using an
// explicit grammar: NULL (case-insensitive) becomes nil, quoted text becomes
// a string with the quotes stripped and doubled-quote escapes collapsed,
// unquoted numeric tokens become int64 or float64, and anything else is kept
// as a raw string. Literals are never evaluated as expressions.
func ParseLiteral(token string) interface{} {
	token = strings.TrimSpace(token)

	if strings.EqualFold(token, "NULL") {
		return nil
	}

	if len(token) >= 2 {
		for _, quote := range []byte{'\'', '"'} {
			if token[0] == quote && token[len(token)-1] == quote {
				inner := token[1 : len(token)-1]
				// Collapse escaped quotes ('' -> ', "" -> ").
				return strings.ReplaceAll(inner, string([]byte{quote, quote}), string(quote))
			}
		}
	}

	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return f
	}

	return token
}

// SplitTop splits s on commas that sit at the top level, tracking quote
// state and parenthesis depth so that commas inside string literals or
// nested function calls do not split. A naive comma split is incorrect for
// generated SQL and is deliberately not offered.
func SplitTop(s string) []string {
	var (
		parts   []string
		current strings.Builder
		depth   int
		quote   byte
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			current.WriteByte(c)

			if c == quote {
				// A doubled quote is an escape, not a terminator.
				if i+1 < len(s) && s[i+1] == quote {
					current.WriteByte(s[i+1])
					i++
				} else {
					quote = 0
				}
			}
		case c == '\'' || c == '"':
			quote = c

			current.WriteByte(c)
		case c == '(':
			depth++

			current.WriteByte(c)
		case c == ')':
			depth--

			current.WriteByte(c)
		case c == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
		parts = append(parts, trimmed)
	}

	return parts
}
