package json_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/json"
	"github.com/pkg/errors"
)

func tempDir(t *testing.T) string {
	t.Helper()
	d, err := ioutil.TempDir("", "fdkjson")
	if err != nil {
		t.Fatalf("getting temp dir: %v", err)
	}
	return d
}

func TestLoadAccumulatorFreshStart(t *testing.T) {
	d := tempDir(t)
	defer os.RemoveAll(d)

	acc, err := json.LoadAccumulator(filepath.Join(d, "missing.json"))
	if err != nil {
		t.Fatalf("loading missing accumulator: %v", err)
	}
	if acc == nil || len(acc) != 0 {
		t.Fatalf("expected empty accumulator, got %v", acc)
	}

	empty := filepath.Join(d, "empty.json")
	if err := ioutil.WriteFile(empty, []byte("  \n"), 0644); err != nil {
		t.Fatalf("writing: %v", err)
	}
	acc, err = json.LoadAccumulator(empty)
	if err != nil || acc == nil || len(acc) != 0 {
		t.Fatalf("expected empty accumulator from empty file, got %v, %v", acc, err)
	}
}

func TestLoadAccumulatorCorrupt(t *testing.T) {
	d := tempDir(t)
	defer os.RemoveAll(d)

	path := filepath.Join(d, "acc.json")
	if err := ioutil.WriteFile(path, []byte(`{"11.111.111/0001-11": [`), 0644); err != nil {
		t.Fatalf("writing: %v", err)
	}
	_, err := json.LoadAccumulator(path)
	if errors.Cause(err) != fdk.ErrCorruptArtifact {
		t.Fatalf("expected ErrCorruptArtifact, got %v", err)
	}
	got, _ := ioutil.ReadFile(path)
	if !strings.HasPrefix(string(got), `{"11.111`) {
		t.Fatalf("corrupt artifact should be left alone, got %q", got)
	}
}

func TestAccumulatorRoundTripIsStable(t *testing.T) {
	d := tempDir(t)
	defer os.RemoveAll(d)
	path := filepath.Join(d, "acc.json")

	acc := fdk.Accumulator{
		"22.222.222/0001-22": {"b.csv": {{"Z": "1", "A": fdk.NullValue}}},
		"11.111.111/0001-11": {"a.csv": {{"DENOM_SOCIAL": "Fundo <Ação> & Cia"}, {"DENOM_SOCIAL": "x"}}},
	}
	if err := json.SaveAccumulator(path, acc); err != nil {
		t.Fatalf("saving: %v", err)
	}
	first, _ := ioutil.ReadFile(path)

	loaded, err := json.LoadAccumulator(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if !reflect.DeepEqual(loaded, acc) {
		t.Fatalf("loaded accumulator differs: %v", loaded)
	}
	if err := json.SaveAccumulator(path, loaded); err != nil {
		t.Fatalf("saving again: %v", err)
	}
	second, _ := ioutil.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Fatalf("artifact not byte-identical after round trip:\n%s\n%s", first, second)
	}
	if !bytes.Contains(first, []byte("<Ação> & Cia")) {
		t.Fatalf("expected unescaped text in artifact: %s", first)
	}
}

func TestDocumentShape(t *testing.T) {
	d := tempDir(t)
	defer os.RemoveAll(d)
	path := filepath.Join(d, "docs.json")

	doc := fdk.NewDocument("11.111.111/0001-11")
	name, tipo := "Fundo Teste", "FIC"
	doc.Fund.Name, doc.Fund.Type = &name, &tipo
	doc.Balances = append(doc.Balances, fdk.BalanceEntry{Date: fdk.Date("2024-01-31"), Balance: fdk.Float("10.5")})
	if err := json.SaveDocuments(path, fdk.Documents{"11.111.111/0001-11": doc}); err != nil {
		t.Fatalf("saving: %v", err)
	}
	raw, _ := ioutil.ReadFile(path)
	for _, want := range []string{`"fund": {`, `"name": "Fundo Teste"`, `"tipo": "FIC"`, `"saldo": 10.5`, `"plano_conta": null`, `"applications": []`, `"patrimonio": []`, `"daily_info": []`} {
		if !bytes.Contains(raw, []byte(want)) {
			t.Fatalf("document artifact missing %s:\n%s", want, raw)
		}
	}

	docs, err := json.LoadDocuments(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if !reflect.DeepEqual(docs["11.111.111/0001-11"], doc) {
		t.Fatalf("loaded document differs: %+v", docs["11.111.111/0001-11"])
	}

	if _, err := json.LoadDocuments(filepath.Join(d, "missing.json")); err == nil {
		t.Fatalf("expected error for missing document set")
	}
}

func TestIndexStore(t *testing.T) {
	d := tempDir(t)
	defer os.RemoveAll(d)
	path := filepath.Join(d, "index.json")

	doc := fdk.NewDocument("11.111.111/0001-11")
	if err := json.NewIndexStore(path).WriteIndex(fdk.Index{"11111111000111": doc}); err != nil {
		t.Fatalf("writing index: %v", err)
	}

	store := json.NewIndexStore(path)
	got, err := store.Document("11.111.111/0001-11")
	if err != nil {
		t.Fatalf("getting document: %v", err)
	}
	if got.Fund.CNPJ != "11.111.111/0001-11" {
		t.Fatalf("unexpected document: %+v", got.Fund)
	}
	if _, err := store.Document("99.999.999/0001-99"); errors.Cause(err) != fdk.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadNullEntries(t *testing.T) {
	d := tempDir(t)
	defer os.RemoveAll(d)

	path := filepath.Join(d, "artifact.json")
	if err := ioutil.WriteFile(path, []byte(`{"11.111.111/0001-11": null}`), 0644); err != nil {
		t.Fatalf("writing: %v", err)
	}
	if _, err := json.LoadAccumulator(path); errors.Cause(err) != fdk.ErrCorruptArtifact {
		t.Fatalf("accumulator: expected ErrCorruptArtifact, got %v", err)
	}
	if _, err := json.LoadDocuments(path); errors.Cause(err) != fdk.ErrCorruptArtifact {
		t.Fatalf("documents: expected ErrCorruptArtifact, got %v", err)
	}
	if _, err := json.LoadIndex(path); errors.Cause(err) != fdk.ErrCorruptArtifact {
		t.Fatalf("index: expected ErrCorruptArtifact, got %v", err)
	}

	// empty file lists and null row lists are structurally fine
	if err := ioutil.WriteFile(path, []byte(`{"A": {}, "B": {"f.csv": null}}`), 0644); err != nil {
		t.Fatalf("writing: %v", err)
	}
	acc, err := json.LoadAccumulator(path)
	if err != nil {
		t.Fatalf("loading accumulator: %v", err)
	}
	acc.Replace("f.csv", fdk.Groups{"A": {{"V": "1"}}})
	if len(acc["A"]["f.csv"]) != 1 {
		t.Fatalf("unexpected accumulator: %v", acc)
	}
}
