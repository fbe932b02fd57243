package csv

import (
	"reflect"
	"testing"
)

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		text string
		want rune
	}{
		{"a;b;c\n1;2;3", ';'},
		{"a,b,c\r\n1,2,3", ','},
		{"a\tb\n1\t2", '\t'},
		{"a|b|c", '|'},
		{"single\n1", ','},
		{"a;b,c;d\n", ';'},
		{"a,b\nx;y;z;w", ','},
	}
	for _, tst := range tests {
		if got := sniffDelimiter(tst.text); got != tst.want {
			t.Errorf("sniffDelimiter(%q) = %q, want %q", tst.text, got, tst.want)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	got := normalizeHeader([]string{"a", "", "a", "b", "a", "a.1"})
	want := []string{"a", "Unnamed: 1", "a.1", "b", "a.2", "a.1.1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseRecord(t *testing.T) {
	header := []string{"A", "B", "C"}
	rec, err := parseRecord(header, []string{"1", "NA"})
	if err != nil {
		t.Fatalf("parsing short row: %v", err)
	}
	if rec["A"] != "1" || rec["B"] != "NaN" || rec["C"] != "NaN" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, err := parseRecord(header, []string{"1", "2", "3", " ", ""}); err != nil {
		t.Fatalf("blank trailing fields should be allowed: %v", err)
	}
	if _, err := parseRecord(header, []string{"1", "2", "3", "4"}); err == nil {
		t.Fatalf("expected error for extra field")
	}
}
