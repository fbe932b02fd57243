// Package promstat implements fdk.Statter on a Prometheus registry. The
// pipeline is a batch job, so metrics are not served: WriteTextfile dumps them
// in the text exposition format for the node exporter's textfile collector.
package promstat

import (
	"strings"
	"sync"
	"time"

	"github.com/cvmdata/fdk"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector creates one Prometheus metric per stat name on first use.
// Counts become counters, gauges gauges, and timings histograms in seconds.
type Collector struct {
	namespace string
	registry  *prometheus.Registry

	mu       sync.Mutex
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	timings  map[string]prometheus.Histogram
}

var _ fdk.Statter = &Collector{}

// NewCollector returns a Collector whose metric names are prefixed with
// namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
		counters:  make(map[string]prometheus.Counter),
		gauges:    make(map[string]prometheus.Gauge),
		timings:   make(map[string]prometheus.Histogram),
	}
}

// Count adds value to the counter name.
func (c *Collector) Count(name string, value int64, rate float64, tags ...string) {
	if value < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.counters[name]
	if !ok {
		m = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: c.namespace,
			Name:      metricName(name) + "_total",
			Help:      "Total of " + name + ".",
		})
		c.registry.MustRegister(m)
		c.counters[name] = m
	}
	m.Add(float64(value))
}

// Gauge sets the gauge name to value.
func (c *Collector) Gauge(name string, value float64, rate float64, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.gauges[name]
	if !ok {
		m = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      metricName(name),
			Help:      "Last value of " + name + ".",
		})
		c.registry.MustRegister(m)
		c.gauges[name] = m
	}
	m.Set(value)
}

// Timing observes value in the histogram name.
func (c *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.timings[name]
	if !ok {
		m = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: c.namespace,
			Name:      metricName(name) + "_seconds",
			Help:      "Duration of " + name + ".",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		})
		c.registry.MustRegister(m)
		c.timings[name] = m
	}
	m.Observe(value.Seconds())
}

// Gatherer exposes the registry, e.g. for a push gateway.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// WriteTextfile writes every metric to path, atomically.
func (c *Collector) WriteTextfile(path string) error {
	return errors.Wrap(prometheus.WriteToTextfile(path, c.registry), "writing metrics")
}

// metricName maps a dotted stat name onto the Prometheus name charset.
func metricName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
}
