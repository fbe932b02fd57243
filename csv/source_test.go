package csv_test

import (
	"strings"
	"testing"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/csv"
	"golang.org/x/text/encoding/charmap"
)

func mustLatin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encoding latin-1: %v", err)
	}
	return b
}

func TestReadTableComma(t *testing.T) {
	tbl, err := csv.ReadTable([]byte("CNPJ_FUNDO,DENOM_SOCIAL,VL_QUOTA\n11.111.111/0001-11,Fundo A,1.5\n22.222.222/0001-22,,\n"), nil)
	if err != nil {
		t.Fatalf("reading table: %v", err)
	}
	if tbl.Candidate != (csv.Candidate{Encoding: csv.UTF8, Delimiter: ','}) {
		t.Fatalf("unexpected candidate: %v", tbl.Candidate)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0]["DENOM_SOCIAL"] != "Fundo A" || tbl.Rows[0]["VL_QUOTA"] != "1.5" {
		t.Fatalf("unexpected first row: %v", tbl.Rows[0])
	}
	if tbl.Rows[1]["DENOM_SOCIAL"] != fdk.NullValue || tbl.Rows[1]["VL_QUOTA"] != fdk.NullValue {
		t.Fatalf("missing cells should be null: %v", tbl.Rows[1])
	}
}

func TestReadTableSemicolonLatin1(t *testing.T) {
	data := mustLatin1(t, "CNPJ_FUNDO_CLASSE;DENOM_SOCIAL;TP_APLIC\n11.111.111/0001-11;Fundo de Ações;Títulos Públicos\n")
	tbl, err := csv.ReadTable(data, nil)
	if err != nil {
		t.Fatalf("reading table: %v", err)
	}
	if tbl.Candidate != (csv.Candidate{Encoding: csv.Latin1, Delimiter: ';'}) {
		t.Fatalf("unexpected candidate: %v", tbl.Candidate)
	}
	if got := tbl.Rows[0]["DENOM_SOCIAL"]; got != "Fundo de Ações" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := tbl.Rows[0]["TP_APLIC"]; got != "Títulos Públicos" {
		t.Fatalf("unexpected application: %q", got)
	}
}

func TestReadTableBOMAndQuotes(t *testing.T) {
	tbl, err := csv.ReadTable([]byte("\xef\xbb\xbfCNPJ;NOME\n\"1\";\"a;b\"\n"), nil)
	if err != nil {
		t.Fatalf("reading table: %v", err)
	}
	if tbl.Header[0] != "CNPJ" {
		t.Fatalf("BOM not stripped: %q", tbl.Header[0])
	}
	if tbl.Rows[0]["NOME"] != "a;b" {
		t.Fatalf("quoted delimiter mangled: %v", tbl.Rows[0])
	}
}

func TestReadTableFallback(t *testing.T) {
	// Sniffing the header picks ';', which splits the row into more fields
	// than the header has, so only the explicit comma candidate fits.
	data := []byte("A;B,C\n1;2;3\n")
	tbl, err := csv.ReadTable(data, []csv.Candidate{{Encoding: csv.UTF8, Delimiter: csv.Auto}, {Encoding: csv.UTF8, Delimiter: ','}})
	if err != nil {
		t.Fatalf("reading table: %v", err)
	}
	if tbl.Candidate.Delimiter != ',' {
		t.Fatalf("expected comma candidate, got %v", tbl.Candidate)
	}
	if tbl.Rows[0]["A;B"] != "1;2;3" || tbl.Rows[0]["C"] != fdk.NullValue {
		t.Fatalf("unexpected row: %v", tbl.Rows[0])
	}
}

func TestReadTableFailures(t *testing.T) {
	if _, err := csv.ReadTable(nil, nil); err == nil {
		t.Fatalf("expected error for empty file")
	}
	_, err := csv.ReadTable([]byte("\xff\xfeA,B\n1,2\n"), []csv.Candidate{{Encoding: csv.UTF8, Delimiter: ','}})
	if err == nil || !strings.Contains(err.Error(), "utf-8/,") {
		t.Fatalf("expected utf-8 failure, got %v", err)
	}
	_, err = csv.ReadTable([]byte("A,B\n1,2,3\n"), []csv.Candidate{{Encoding: csv.UTF8, Delimiter: ','}})
	if err == nil || !strings.Contains(err.Error(), "3 fields for 2 columns") {
		t.Fatalf("expected extra field failure, got %v", err)
	}
}

func TestColumnMatcher(t *testing.T) {
	tests := []struct {
		header []string
		want   string
		ok     bool
	}{
		{[]string{"CNPJ", "CNPJ_FUNDO", "X"}, "CNPJ_FUNDO", true},
		{[]string{"CNPJ_FUNDO", "CNPJ_FUNDO_CLASSE"}, "CNPJ_FUNDO_CLASSE", true},
		{[]string{"Cnpj_Fundo"}, "Cnpj_Fundo", true},
		{[]string{"DT_COMPTC", "cnpj_admin", "Nr_CNPJ"}, "cnpj_admin", true},
		{[]string{"DT_COMPTC", "VL_QUOTA"}, "", false},
	}
	for _, tst := range tests {
		got, ok := csv.DefaultColumnMatcher.Match(tst.header)
		if got != tst.want || ok != tst.ok {
			t.Errorf("Match(%v) = %q, %v; want %q, %v", tst.header, got, ok, tst.want, tst.ok)
		}
	}
}
