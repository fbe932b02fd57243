package csv_test

import (
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/csv"
	"github.com/cvmdata/fdk/mock"
	"github.com/cvmdata/fdk/test"
	"github.com/pkg/errors"
)

func TestProcessFile(t *testing.T) {
	d, cleanup := test.MustTempDir(t)
	defer cleanup()
	path := test.MustWriteFile(t, d, "inf_diario_fi_202401.csv", `CNPJ_FUNDO;DT_COMPTC;VL_QUOTA
11.111.111/0001-11;2024-01-02;1.1
22.222.222/0001-22;2024-01-02;2.1
11.111.111/0001-11;2024-01-03;1.2
;2024-01-03;9.9
`)
	res := csv.NewIngester().ProcessFile(path)
	if res.Err != nil {
		t.Fatalf("processing: %v", res.Err)
	}
	if res.Name != "inf_diario_fi_202401.csv" || res.Column != "CNPJ_FUNDO" || res.Rows != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	rows := res.Groups["11.111.111/0001-11"]
	if len(rows) != 2 || rows[0]["VL_QUOTA"] != "1.1" || rows[1]["VL_QUOTA"] != "1.2" {
		t.Fatalf("group lost file order: %v", rows)
	}
	if len(res.Groups) != 2 {
		t.Fatalf("null identifier should not form a group: %v", res.Groups)
	}
}

func TestProcessFileUndetected(t *testing.T) {
	d, cleanup := test.MustTempDir(t)
	defer cleanup()
	path := test.MustWriteFile(t, d, "lamina_fi_202401.csv", "DT_COMPTC,VL_QUOTA\n2024-01-02,1\n")
	res := csv.NewIngester().ProcessFile(path)
	if errors.Cause(res.Err) != csv.ErrNoIdentifierColumn || res.Column != csv.Undetected {
		t.Fatalf("expected undetected column, got %+v", res)
	}
}

func TestIngestWatchList(t *testing.T) {
	d, cleanup := test.MustTempDir(t)
	defer cleanup()
	path := test.MustWriteFile(t, d, "cda_fi_PL_202401.csv", "CNPJ_FUNDO_CLASSE,VL_PATRIM_LIQ\n11.111.111/0001-11,10\n22.222.222/0001-22,20\n")

	acc := fdk.NewAccumulator()
	in := csv.NewIngester(csv.WithWatchList([]string{"11111111000111"}))
	if _, err := in.Ingest(context.Background(), acc, []string{path}); err != nil {
		t.Fatalf("ingesting: %v", err)
	}
	if ids := acc.Identifiers(); !reflect.DeepEqual(ids, []string{"11.111.111/0001-11"}) {
		t.Fatalf("unexpected identifiers: %v", ids)
	}
}

func TestIngestWatchListKeepsOtherIdentifiers(t *testing.T) {
	d, cleanup := test.MustTempDir(t)
	defer cleanup()
	path := test.MustWriteFile(t, d, "inf_diario_fi_202401.csv", "CNPJ_FUNDO;VL_QUOTA\n11.111.111/0001-11;1\n22.222.222/0001-22;2\n")

	acc := fdk.NewAccumulator()
	if _, err := csv.NewIngester().Ingest(context.Background(), acc, []string{path}); err != nil {
		t.Fatalf("ingesting: %v", err)
	}

	// The file now has a new quota for the watched fund only.
	test.MustWriteFile(t, d, "inf_diario_fi_202401.csv", "CNPJ_FUNDO;VL_QUOTA\n11.111.111/0001-11;5\n22.222.222/0001-22;2\n")
	in := csv.NewIngester(csv.WithWatchList([]string{"11111111000111"}))
	report, err := in.Ingest(context.Background(), acc, []string{path})
	if err != nil {
		t.Fatalf("ingesting watched: %v", err)
	}
	test.MustBe(t, 2, report.Identifiers, "identifiers after watched rerun")
	other := acc["22.222.222/0001-22"]["inf_diario_fi_202401.csv"]
	if len(other) != 1 || other[0]["VL_QUOTA"] != "2" {
		t.Fatalf("unwatched rows lost: %v", acc["22.222.222/0001-22"])
	}
	watched := acc["11.111.111/0001-11"]["inf_diario_fi_202401.csv"]
	if len(watched) != 1 || watched[0]["VL_QUOTA"] != "5" {
		t.Fatalf("watched rows not replaced: %v", watched)
	}

	// A watched fund which left the file loses its slot.
	test.MustWriteFile(t, d, "inf_diario_fi_202401.csv", "CNPJ_FUNDO;VL_QUOTA\n22.222.222/0001-22;2\n")
	if _, err := in.Ingest(context.Background(), acc, []string{path}); err != nil {
		t.Fatalf("ingesting watched again: %v", err)
	}
	if ids := acc.Identifiers(); !reflect.DeepEqual(ids, []string{"22.222.222/0001-22"}) {
		t.Fatalf("unexpected identifiers: %v", ids)
	}
}

func TestIngestReplacesWholeFile(t *testing.T) {
	d, cleanup := test.MustTempDir(t)
	defer cleanup()
	bal := test.MustWriteFile(t, d, "balancete_fi_202401.csv", "CNPJ_FUNDO,VL_SALDO_BALCTE\nA1,1\nA1,2\nB2,3\n")
	daily := test.MustWriteFile(t, d, "inf_diario_fi_202401.csv", "CNPJ_FUNDO,VL_QUOTA\nA1,9\n")

	acc := fdk.NewAccumulator()
	in := csv.NewIngester(csv.WithConcurrency(2))
	if _, err := in.Ingest(context.Background(), acc, []string{bal, daily}); err != nil {
		t.Fatalf("ingesting: %v", err)
	}
	if len(acc["A1"]["balancete_fi_202401.csv"]) != 2 || len(acc["B2"]) != 1 {
		t.Fatalf("unexpected accumulator: %v", acc)
	}

	// The new version of the file drops B2 and has one row for A1.
	test.MustWriteFile(t, d, "balancete_fi_202401.csv", "CNPJ_FUNDO,VL_SALDO_BALCTE\nA1,5\n")
	report, err := in.Ingest(context.Background(), acc, []string{bal})
	if err != nil {
		t.Fatalf("ingesting again: %v", err)
	}
	rows := acc["A1"]["balancete_fi_202401.csv"]
	if len(rows) != 1 || rows[0]["VL_SALDO_BALCTE"] != "5" {
		t.Fatalf("stale rows left for A1: %v", rows)
	}
	if _, ok := acc["B2"]; ok {
		t.Fatalf("B2 should be gone with the old file version: %v", acc["B2"])
	}
	if len(acc["A1"]["inf_diario_fi_202401.csv"]) != 1 {
		t.Fatalf("other file's contribution lost: %v", acc["A1"])
	}
	if report.Identifiers != 1 {
		t.Fatalf("unexpected identifier count: %d", report.Identifiers)
	}
}

func TestIngestSkipsBadFilesAndKeepsPriorData(t *testing.T) {
	d, cleanup := test.MustTempDir(t)
	defer cleanup()
	good := test.MustWriteFile(t, d, "inf_diario_fi_202402.csv", "CNPJ_FUNDO,VL_QUOTA\nA1,1\n")
	undetected := test.MustWriteFile(t, d, "notes_202402.csv", "X,Y\n1,2\n")
	empty := test.MustWriteFile(t, d, "cda_fi_PL_202402.csv", "")
	missing := filepath.Join(d, "gone_202402.csv")

	acc := fdk.Accumulator{"A1": {"cda_fi_PL_202402.csv": {{"CNPJ_FUNDO": "A1"}}}}
	stats, log := &mock.RecordingStatter{}, &mock.RecordingLogger{}
	in := csv.NewIngester(csv.WithStatter(stats), csv.WithLogger(log))
	report, err := in.Ingest(context.Background(), acc, []string{good, undetected, empty, missing})
	if err != nil {
		t.Fatalf("ingesting: %v", err)
	}
	if report.Processed != 1 || report.Skipped != 3 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	test.MustBe(t, stats.Counts, map[string]int64{"files.processed": 1, "files.skipped": 3, "rows": 1}, "stats")
	test.MustBe(t, stats.Gauges["identifiers"], float64(1), "identifier gauge")
	if len(log.Lines) != 3 || !strings.Contains(strings.Join(log.Lines, "\n"), "skipping notes_202402.csv: identifier column undetected") {
		t.Fatalf("unexpected log: %v", log.Lines)
	}
	if len(acc["A1"]["cda_fi_PL_202402.csv"]) != 1 {
		t.Fatalf("failed file should keep its previous contribution: %v", acc["A1"])
	}
	var names []string
	for _, diag := range report.Files {
		names = append(names, diag.File+":"+diag.Column)
	}
	want := []string{"cda_fi_PL_202402.csv:undetected", "gone_202402.csv:undetected", "inf_diario_fi_202402.csv:CNPJ_FUNDO", "notes_202402.csv:undetected"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("unexpected diagnostics: %v", names)
	}
}

func TestIngestManyFilesConcurrently(t *testing.T) {
	d, cleanup := test.MustTempDir(t)
	defer cleanup()
	var paths []string
	for i := 0; i < 50; i++ {
		content := "CNPJ_FUNDO,N\n"
		for j := 0; j <= i%5; j++ {
			content += fmt.Sprintf("ID%d,%d\n", j, i)
		}
		paths = append(paths, test.MustWriteFile(t, d, fmt.Sprintf("inf_diario_fi_2020%02d_%d.csv", i%12+1, i), content))
	}

	acc := fdk.NewAccumulator()
	report, err := csv.NewIngester(csv.WithConcurrency(8)).Ingest(context.Background(), acc, paths)
	if err != nil {
		t.Fatalf("ingesting: %v", err)
	}
	if report.Processed != 50 || report.Identifiers != 5 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if n := len(acc["ID0"]); n != 50 {
		t.Fatalf("ID0 should be in every file, got %d", n)
	}
	if n := len(acc["ID4"]); n != 10 {
		t.Fatalf("ID4 should be in 10 files, got %d", n)
	}
}

func TestIngestCanceled(t *testing.T) {
	d, cleanup := test.MustTempDir(t)
	defer cleanup()
	path := test.MustWriteFile(t, d, "a_202401.csv", "CNPJ,X\n1,2\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := csv.NewIngester().Ingest(ctx, fdk.NewAccumulator(), []string{path}); errors.Cause(err) != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
