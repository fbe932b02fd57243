package fdk_test

import (
	"reflect"
	"testing"

	"github.com/cvmdata/fdk"
)

func TestPeriodToken(t *testing.T) {
	tests := []struct {
		name string
		tok  string
		ok   bool
	}{
		{name: "balancete_fi_202401.csv", tok: "202401", ok: true},
		{name: "cda_fi_BLC_1_202312.csv", tok: "202312", ok: true},
		{name: "inf_diario_fi_20240115.csv", tok: "202401", ok: true},
		{name: "v123456_cda_fi_PL_202401.csv", tok: "123456", ok: true},
		{name: "cad_fi.csv"},
		{name: "lamina_2024.csv"},
	}
	for _, test := range tests {
		tok, ok := fdk.PeriodToken(test.name)
		if tok != test.tok || ok != test.ok {
			t.Fatalf("PeriodToken(%q): expected %q/%v, got %q/%v", test.name, test.tok, test.ok, tok, ok)
		}
	}
}

func TestPeriods(t *testing.T) {
	got := fdk.Periods([]string{
		"inf_diario_fi_202403.csv",
		"cda_fi_BLC_1_202401.csv",
		"balancete_fi_202401.csv",
		"cad_fi.csv",
		"cda_fi_PL_202312.csv",
	})
	want := []string{"202312", "202401", "202403"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := fdk.Periods(nil); len(got) != 0 {
		t.Fatalf("expected no periods, got %v", got)
	}
}
