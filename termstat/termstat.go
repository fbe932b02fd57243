// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package termstat provides an fdk.Statter which periodically writes the
// counters it has collected to a terminal. It is meant for watching a long
// ingestion run in lieu of an external metrics collector.
package termstat

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/cvmdata/fdk"
)

var _ fdk.Statter = &Collector{}

// Collector collects stats and prints them to the terminal.
type Collector struct {
	lock    sync.Mutex
	indexes map[string]int
	names   []string
	stats   []string
	counts  []int64
	changed bool
	out     io.Writer

	stop chan struct{}
	done chan struct{}
}

// NewCollector initializes and returns a new Collector which writes to out
// every interval until it is closed.
func NewCollector(out io.Writer, interval time.Duration) *Collector {
	ts := &Collector{
		indexes: make(map[string]int),
		out:     out,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(ts.done)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				ts.write(false)
			case <-ts.stop:
				ts.write(true)
				return
			}
		}
	}()
	return ts
}

// Close stops the periodic writes and writes the final values on their own
// line.
func (t *Collector) Close() error {
	close(t.stop)
	<-t.done
	return nil
}

// index returns the slot of name, creating it if needed. The lock must be
// held.
func (t *Collector) index(name string) int {
	idx, ok := t.indexes[name]
	if !ok {
		idx = len(t.names)
		t.names = append(t.names, name)
		t.stats = append(t.stats, "0")
		t.counts = append(t.counts, 0)
		t.indexes[name] = idx
	}
	t.changed = true
	return idx
}

// Count adds value to the named stat at the specified rate.
func (t *Collector) Count(name string, value int64, rate float64, tags ...string) {
	if rate < 1 && rand.Float64() > rate {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	idx := t.index(name)
	t.counts[idx] += value
	t.stats[idx] = fmt.Sprintf("%d", t.counts[idx])
}

// Gauge records the latest value of the named stat.
func (t *Collector) Gauge(name string, value float64, rate float64, tags ...string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.stats[t.index(name)] = fmt.Sprintf("%g", value)
}

// Timing records the latest duration of the named stat.
func (t *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.stats[t.index(name)] = value.Round(time.Millisecond).String()
}

// Value returns the current rendering of the named stat.
func (t *Collector) Value(name string) (string, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	idx, ok := t.indexes[name]
	if !ok {
		return "", false
	}
	return t.stats[idx], true
}

func (t *Collector) write(final bool) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.changed && !final {
		return
	}
	sb := strings.Builder{}
	for i := range t.names {
		_, _ = sb.WriteString(fmt.Sprintf("%s: %s ", t.names[i], t.stats[i]))
	}
	t.changed = false
	if final {
		fmt.Fprintf(t.out, "\r%s\n", sb.String())
		return
	}
	fmt.Fprintf(t.out, "\r%s", sb.String())
}
