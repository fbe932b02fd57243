package csv

import "strings"

// ColumnMatcher finds the identifier column of a header: the first name of
// Exact present in the header, else the first header column containing
// Contains (case-insensitively).
type ColumnMatcher struct {
	Exact    []string
	Contains string
}

// DefaultColumnMatcher matches the fund identifier columns used across the
// regulator's datasets.
var DefaultColumnMatcher = ColumnMatcher{
	Exact:    []string{"CNPJ_FUNDO_CLASSE", "CNPJ_FUNDO", "CNPJ", "Cnpj_Fundo"},
	Contains: "cnpj",
}

// Match returns the identifier column of header, and false if there is none.
func (m ColumnMatcher) Match(header []string) (string, bool) {
	for _, want := range m.Exact {
		for _, col := range header {
			if col == want {
				return col, true
			}
		}
	}
	if m.Contains == "" {
		return "", false
	}
	sub := strings.ToLower(m.Contains)
	for _, col := range header {
		if strings.Contains(strings.ToLower(col), sub) {
			return col, true
		}
	}
	return "", false
}
