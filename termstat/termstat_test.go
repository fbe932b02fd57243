package termstat_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cvmdata/fdk/termstat"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCollector(t *testing.T) {
	out := &syncBuffer{}
	c := termstat.NewCollector(out, time.Hour)
	c.Count("files.processed", 2, 1)
	c.Count("files.processed", 3, 1)
	c.Gauge("identifiers", 42, 1)
	c.Timing("ingest", 1500*time.Millisecond, 1)

	if v, ok := c.Value("files.processed"); !ok || v != "5" {
		t.Fatalf("unexpected count: %s, %v", v, ok)
	}
	if v, _ := c.Value("identifiers"); v != "42" {
		t.Fatalf("unexpected gauge: %s", v)
	}
	if _, ok := c.Value("nope"); ok {
		t.Fatalf("unknown stat should not be found")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
	got := out.String()
	for _, want := range []string{"files.processed: 5 ", "identifiers: 42 ", "ingest: 1.5s ", "\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output %q missing %q", got, want)
		}
	}
}
