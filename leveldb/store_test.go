package leveldb_test

import (
	"io/ioutil"
	"os"
	"reflect"
	"testing"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/leveldb"
	"github.com/pkg/errors"
)

func TestStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "fdkleveldb")
	if err != nil {
		t.Fatalf("getting temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	s, err := leveldb.Open(dir)
	if err != nil {
		t.Fatalf("opening: %v", err)
	}
	a := fdk.NewDocument("11.111.111/0001-11")
	b := fdk.NewDocument("22.222.222/0001-22")
	quota := 1.25
	b.DailyInfo = append(b.DailyInfo, fdk.DailyInfoEntry{Quota: &quota})
	if err := s.WriteIndex(fdk.Index{"11111111000111": a, "22222222000122": b}); err != nil {
		t.Fatalf("writing index: %v", err)
	}
	got, err := s.Document("22.222.222/0001-22")
	if err != nil {
		t.Fatalf("getting document: %v", err)
	}
	if !reflect.DeepEqual(got, b) {
		t.Fatalf("unexpected document: %+v", got)
	}

	if err := s.WriteIndex(fdk.Index{"22222222000122": b}); err != nil {
		t.Fatalf("rewriting index: %v", err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("listing keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"22222222000122"}) {
		t.Fatalf("stale keys left: %v", keys)
	}
	if _, err := s.Document("11111111000111"); errors.Cause(err) != fdk.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
}
