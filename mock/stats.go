// Package mock holds test doubles for the fdk interfaces.
package mock

import (
	"fmt"
	"sync"
	"time"

	"github.com/cvmdata/fdk"
)

var _ fdk.Statter = &RecordingStatter{}

// RecordingStatter keeps every stat it is given so tests can inspect them.
type RecordingStatter struct {
	mu      sync.Mutex
	Counts  map[string]int64
	Gauges  map[string]float64
	Timings map[string]time.Duration
}

func (r *RecordingStatter) Count(name string, value int64, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Counts == nil {
		r.Counts = make(map[string]int64)
	}
	r.Counts[name] += value
}

func (r *RecordingStatter) Gauge(name string, value float64, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Gauges == nil {
		r.Gauges = make(map[string]float64)
	}
	r.Gauges[name] = value
}

func (r *RecordingStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Timings == nil {
		r.Timings = make(map[string]time.Duration)
	}
	r.Timings[name] = value
}

// RecordingLogger keeps every line logged, debug lines included.
type RecordingLogger struct {
	mu    sync.Mutex
	Lines []string
	Debug []string
}

func (r *RecordingLogger) Printf(format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lines = append(r.Lines, fmt.Sprintf(format, v...))
}

func (r *RecordingLogger) Debugf(format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Debug = append(r.Debug, fmt.Sprintf(format, v...))
}
