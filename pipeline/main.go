// Package pipeline runs the stages one after the other with a shared
// configuration: optional archive expansion, ingestion, normalization and
// indexing.
package pipeline

import (
	"os"
	"time"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/archive"
	"github.com/cvmdata/fdk/csv"
	"github.com/cvmdata/fdk/index"
	"github.com/cvmdata/fdk/normalize"
	"github.com/cvmdata/fdk/promstat"
	"github.com/cvmdata/fdk/termstat"
	"github.com/pkg/errors"
)

// Main runs the whole pipeline.
type Main struct {
	Archives        string   `help:"Directory of downloaded archives to expand into Dir first. Skipped if empty."`
	Dir             string   `help:"Directory holding the CSV files to ingest."`
	Accumulator     string   `help:"Accumulator artifact, created if it does not exist."`
	Documents       string   `help:"Document set artifact."`
	HoldingsPrefix  []string `help:"File name prefixes of the holdings family, which also supplies fund name and type."`
	BalancesPrefix  []string `help:"File name prefixes of the balances family."`
	NetWorthPrefix  []string `help:"File name prefixes of the net worth family."`
	DailyInfoPrefix []string `help:"File name prefixes of the daily info family."`
	Output          string   `help:"Final index JSON file. Skipped if empty."`
	Bolt            string   `help:"BoltDB file to export the index to. Skipped if empty."`
	LevelDB         string   `help:"LevelDB directory to export the index to. Skipped if empty."`
	Concurrency     int      `help:"Number of files parsed at once."`
	Watch           []string `help:"Only keep rows of these identifiers (any formatting). Empty keeps all."`
	Strict          bool     `help:"Fail when two identifiers share a canonical key instead of keeping the last."`
	LogPath         string   `help:"Log file. Logs go to stderr if empty."`
	Verbose         bool     `help:"Enable verbose logging."`
	Progress        bool     `help:"Print live counters to stderr."`
	Metrics         string   `help:"Prometheus textfile to write the run's metrics to. Skipped if empty."`

	Log fdk.Logger `flag:"-"`
}

// NewMain returns a Main with the defaults of each stage.
func NewMain() *Main {
	ing, norm, idx := csv.NewMain(), normalize.NewMain(), index.NewMain()
	return &Main{
		Dir:             ing.Dir,
		Accumulator:     ing.Accumulator,
		Documents:       norm.Output,
		HoldingsPrefix:  norm.HoldingsPrefix,
		BalancesPrefix:  norm.BalancesPrefix,
		NetWorthPrefix:  norm.NetWorthPrefix,
		DailyInfoPrefix: norm.DailyInfoPrefix,
		Output:          idx.Output,
		Concurrency:     ing.Concurrency,
	}
}

// Run runs the stages in order and stops at the first which fails. Each
// stage has written its artifact by the time the next starts.
func (m *Main) Run() error {
	start := time.Now()
	log := m.Log
	if log == nil {
		l, closer, err := fdk.NewLogger(m.LogPath, m.Verbose)
		if err != nil {
			return errors.Wrap(err, "getting logger")
		}
		defer closer.Close()
		log = l
	}
	var stats fdk.MultiStatter
	if m.Progress {
		c := termstat.NewCollector(os.Stderr, 2*time.Second)
		defer c.Close()
		stats = append(stats, c)
	}
	var prom *promstat.Collector
	if m.Metrics != "" {
		prom = promstat.NewCollector("fdk")
		stats = append(stats, prom)
	}

	if m.Archives != "" {
		ex := &archive.Main{Src: m.Archives, Dst: m.Dir, Log: log}
		if err := ex.Run(); err != nil {
			return errors.Wrap(err, "expanding archives")
		}
	}

	ing := &csv.Main{
		Dir:         m.Dir,
		Accumulator: m.Accumulator,
		Concurrency: m.Concurrency,
		Watch:       m.Watch,
		Log:         log,
		Stats:       stats,
	}
	if err := ing.Run(); err != nil {
		return errors.Wrap(err, "ingesting")
	}

	norm := &normalize.Main{
		Accumulator:     m.Accumulator,
		Output:          m.Documents,
		HoldingsPrefix:  m.HoldingsPrefix,
		BalancesPrefix:  m.BalancesPrefix,
		NetWorthPrefix:  m.NetWorthPrefix,
		DailyInfoPrefix: m.DailyInfoPrefix,
		Log:             log,
		Stats:           stats,
	}
	if err := norm.Run(); err != nil {
		return errors.Wrap(err, "normalizing")
	}

	idx := &index.Main{
		Documents: m.Documents,
		Output:    m.Output,
		Bolt:      m.Bolt,
		LevelDB:   m.LevelDB,
		Strict:    m.Strict,
		Log:       log,
	}
	if err := idx.Run(); err != nil {
		return errors.Wrap(err, "indexing")
	}
	stats.Gauge("indexed", float64(idx.Indexed), 1)
	if prom != nil {
		if err := prom.WriteTextfile(m.Metrics); err != nil {
			return err
		}
	}

	log.Printf("files processed: %d, skipped: %d; identifiers retained: %d, dropped: %d; indexed: %d; duration: %s",
		ing.Report.Processed, ing.Report.Skipped, norm.Report.Retained, norm.Report.Dropped(),
		idx.Indexed, time.Since(start))
	return nil
}
