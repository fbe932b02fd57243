package fdk

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only calendar layout accepted and emitted for dates.
const DateLayout = "2006-01-02"

// LinkedIssuerMarker is the value which marks a holding as issued by a party
// linked to the fund.
const LinkedIssuerMarker = "S"

// nullTokens coerce to nil before any parsing is attempted.
var nullTokens = map[string]struct{}{
	"":        {},
	NullValue: {},
	"nan":     {},
}

func isNull(v string) bool {
	_, ok := nullTokens[v]
	return ok
}

// Float coerces v to a float64. Null markers, empty strings, and anything
// which does not parse as a finite number coerce to nil.
func Float(v string) *float64 {
	if isNull(v) {
		return nil
	}
	f, ok := parseFloat(strings.TrimSpace(v))
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseFloat reports malformed input as !ok. ParseFloat documents only
// ErrSyntax and ErrRange, anything else is a bug.
func parseFloat(v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err == nil {
		return f, true
	}
	if nerr, ok := err.(*strconv.NumError); ok && (nerr.Err == strconv.ErrSyntax || nerr.Err == strconv.ErrRange) {
		return 0, false
	}
	panic(fmt.Sprintf("unexpected error parsing float %q: %v", v, err))
}

// Date coerces v to a date in DateLayout. The value is parsed and formatted
// again, so only real calendar dates survive; everything else is nil.
func Date(v string) *string {
	if isNull(v) {
		return nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		if _, ok := err.(*time.ParseError); ok {
			return nil
		}
		panic(fmt.Sprintf("unexpected error parsing date %q: %v", v, err))
	}
	s := t.Format(DateLayout)
	return &s
}

// String returns nil for null or absent values and v otherwise.
func String(v string) *string {
	if v == "" || v == NullValue {
		return nil
	}
	return &v
}

// Flag is a tri-state boolean: nil when v is null or absent, true when v is
// LinkedIssuerMarker and false for anything else.
func Flag(v string) *bool {
	if v == "" || v == NullValue {
		return nil
	}
	b := v == LinkedIssuerMarker
	return &b
}
