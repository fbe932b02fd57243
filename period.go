package fdk

import (
	"regexp"
	"sort"
)

// periodPattern matches the year-month token publishers embed in file names
// (e.g. inf_diario_fi_202401.csv). Any six digit run qualifies; the month is
// not range checked.
var periodPattern = regexp.MustCompile(`[0-9]{6}`)

// PeriodToken returns the first run of six digits in name.
func PeriodToken(name string) (string, bool) {
	tok := periodPattern.FindString(name)
	return tok, tok != ""
}

// Periods returns the distinct period tokens found in names, in ascending
// order. Lexicographic order on the token is chronological order.
func Periods(names []string) []string {
	seen := make(map[string]struct{})
	periods := make([]string, 0)
	for _, name := range names {
		tok, ok := PeriodToken(name)
		if !ok {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		periods = append(periods, tok)
	}
	sort.Strings(periods)
	return periods
}
