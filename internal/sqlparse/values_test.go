package sqlparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  interface{}
	}{
		{"null lowercase", "null", nil},
		{"null uppercase", "NULL", nil},
		{"null padded", "  Null ", nil},
		{"single quoted", "'Marketing'", "Marketing"},
		{"double quoted", `"Marketing"`, "Marketing"},
		{"escaped quote collapsed", "'O''Brien'", "O'Brien"},
		{"integer", "65000", int64(65000)},
		{"negative integer", "-3", int64(-3)},
		{"float", "65000.50", 65000.50},
		{"date stays string", "'2024-01-15'", "2024-01-15"},
		{"bare word", "Marketing", "Marketing"},
		{"quoted number stays string", "'42'", "42"},
		{"empty quoted", "''", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLiteral(tt.token))
		})
	}
}

func TestSplitTop(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "simple",
			in:   "'Sarah', 'Marketing', 65000",
			want: []string{"'Sarah'", "'Marketing'", "65000"},
		},
		{
			name: "comma inside quotes",
			in:   "'Smith, John', 'Sales'",
			want: []string{"'Smith, John'", "'Sales'"},
		},
		{
			name: "nested parens",
			in:   "UPPER(name), COALESCE(salary, 0), 7",
			want: []string{"UPPER(name)", "COALESCE(salary, 0)", "7"},
		},
		{
			name: "escaped quote inside value",
			in:   "'O''Brien, P.', 42",
			want: []string{"'O''Brien, P.'", "42"},
		},
		{
			name: "single value",
			in:   "'only'",
			want: []string{"'only'"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTop(tt.in))
		})
	}
}
