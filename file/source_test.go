package file

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func mustTempDir(t *testing.T, prefix string) string {
	t.Helper()
	d, err := ioutil.TempDir("", prefix)
	if err != nil {
		t.Fatal("getting temp dir")
	}
	return d
}

func mustFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestList(t *testing.T) {
	d := mustTempDir(t, "testlist")
	defer os.RemoveAll(d)

	b := mustFile(t, d, "b.csv", "x")
	a := mustFile(t, d, "a.CSV", "x")
	mustFile(t, d, "notes.txt", "x")
	if err := os.Mkdir(filepath.Join(d, "sub.csv"), 0755); err != nil {
		t.Fatalf("making subdir: %v", err)
	}

	files, err := List(d, ".csv")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if !reflect.DeepEqual(files, []string{a, b}) {
		t.Fatalf("unexpected files: %v", files)
	}

	all, err := List(d)
	if err != nil {
		t.Fatalf("listing all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 files, got %v", all)
	}

	single, err := List(b, ".zip")
	if err != nil || !reflect.DeepEqual(single, []string{b}) {
		t.Fatalf("listing a single file: %v, %v", single, err)
	}

	if _, err := List(filepath.Join(d, "nope")); err == nil {
		t.Fatalf("expected error listing a missing directory")
	}
}

func TestWriteAtomic(t *testing.T) {
	d := mustTempDir(t, "testwriteatomic")
	defer os.RemoveAll(d)
	path := filepath.Join(d, "nested", "out.json")

	err := WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	})
	if err != nil {
		t.Fatalf("first write: %v", err)
	}

	err = WriteAtomic(path, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected write error")
	}

	got, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("failed write should leave the previous content, got %q", got)
	}
	infos, err := ioutil.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(infos))
	}
}
