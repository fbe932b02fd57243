package normalize

import (
	"time"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/json"
	"github.com/pkg/errors"
)

// Main normalizes the Accumulator artifact into the document set artifact.
type Main struct {
	Accumulator     string   `help:"Accumulator artifact written by ingest."`
	Output          string   `help:"Document set artifact to write."`
	HoldingsPrefix  []string `help:"File name prefixes of the holdings family, which also supplies fund name and type."`
	BalancesPrefix  []string `help:"File name prefixes of the balances family."`
	NetWorthPrefix  []string `help:"File name prefixes of the net worth family."`
	DailyInfoPrefix []string `help:"File name prefixes of the daily info family."`
	LogPath         string   `help:"Log file. Logs go to stderr if empty."`
	Verbose         bool     `help:"Log every dropped identifier."`

	Log   fdk.Logger  `flag:"-"`
	Stats fdk.Statter `flag:"-"`

	// Report is set by Run.
	Report Report `flag:"-"`
}

// NewMain returns a Main with default values.
func NewMain() *Main {
	return &Main{
		Accumulator:     "accumulator.json",
		Output:          "normalized.json",
		HoldingsPrefix:  Holdings.Prefixes,
		BalancesPrefix:  Balances.Prefixes,
		NetWorthPrefix:  NetWorth.Prefixes,
		DailyInfoPrefix: DailyInfo.Prefixes,
	}
}

// Run reads the Accumulator, builds the document set and writes it.
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

	acc, err := json.LoadAccumulator(m.Accumulator)
	if err != nil {
		return errors.Wrap(err, "loading accumulator")
	}
	n := NewNormalizer().WithPrefixes(m.HoldingsPrefix, m.BalancesPrefix, m.NetWorthPrefix, m.DailyInfoPrefix)
	n.Log = log
	if m.Stats != nil {
		n.Stats = m.Stats
	}
	docs, report := n.Normalize(acc)
	m.Report = report
	if err := json.SaveDocuments(m.Output, docs); err != nil {
		return errors.Wrap(err, "saving documents")
	}
	log.Printf("identifiers: %d, retained: %d, dropped: %d (no period: %d, incomplete: %d), duration: %s",
		report.Total, report.Retained, report.Dropped(), report.NoPeriod, report.Incomplete, time.Since(start))
	return nil
}
