package csv

import (
	"context"
	"os"
	"time"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/file"
	"github.com/cvmdata/fdk/json"
	"github.com/cvmdata/fdk/promstat"
	"github.com/cvmdata/fdk/termstat"
	"github.com/pkg/errors"
)

// Main ingests a directory of CSV files into the Accumulator artifact.
type Main struct {
	Dir         string   `help:"Directory holding the CSV files to ingest."`
	Accumulator string   `help:"Accumulator artifact, created if it does not exist."`
	Concurrency int      `help:"Number of files parsed at once."`
	Watch       []string `help:"Only keep rows of these identifiers (any formatting). Empty keeps all."`
	LogPath     string   `help:"Log file. Logs go to stderr if empty."`
	Verbose     bool     `help:"Log every file."`
	Progress    bool     `help:"Print live counters to stderr."`
	Metrics     string   `help:"Prometheus textfile to write the run's metrics to. Skipped if empty."`

	Log   fdk.Logger  `flag:"-"`
	Stats fdk.Statter `flag:"-"`

	// Report is set by Run.
	Report *Report `flag:"-"`
}

// NewMain returns a Main with default values.
func NewMain() *Main {
	return &Main{
		Dir:         "data",
		Accumulator: "accumulator.json",
		Concurrency: DefaultConcurrency(),
	}
}

// Run loads the Accumulator, ingests every .csv file of Dir into it, and
// saves it back. An Accumulator which exists but cannot be decoded stops the
// run before anything is read.
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
	if m.Stats != nil {
		stats = append(stats, m.Stats)
	}
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

	acc, err := json.LoadAccumulator(m.Accumulator)
	if err != nil {
		return errors.Wrap(err, "loading accumulator")
	}
	paths, err := file.List(m.Dir, ".csv")
	if err != nil {
		return errors.Wrap(err, "listing input files")
	}
	log.Printf("ingesting %d files from %s into %d known identifiers", len(paths), m.Dir, len(acc))

	in := NewIngester(
		WithConcurrency(m.Concurrency),
		WithWatchList(m.Watch),
		WithLogger(log),
		WithStatter(stats),
	)
	report, err := in.Ingest(context.Background(), acc, paths)
	m.Report = report
	if err != nil {
		return err
	}
	if err := json.SaveAccumulator(m.Accumulator, acc); err != nil {
		return errors.Wrap(err, "saving accumulator")
	}
	if prom != nil {
		if err := prom.WriteTextfile(m.Metrics); err != nil {
			return err
		}
	}
	log.Printf("files processed: %d, skipped: %d, identifiers: %d, duration: %s",
		report.Processed, report.Skipped, report.Identifiers, time.Since(start))
	return nil
}
