package csv

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/cvmdata/fdk"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrNoIdentifierColumn is the error of a file in which no identifier column
// could be found.
const ErrNoIdentifierColumn = fdk.Error("identifier column undetected")

// Undetected is reported as the column of files without an identifier
// column.
const Undetected = "undetected"

// DefaultConcurrency is the number of files parsed at once unless
// configured otherwise.
func DefaultConcurrency() int {
	return min(32, runtime.NumCPU())
}

// FileResult is what parsing one file produced. It is never modified after
// ProcessFile returns it.
type FileResult struct {
	Name      string // key of the file in the Accumulator
	Candidate Candidate
	Column    string
	Rows      int
	Groups    fdk.Groups
	Err       error
}

// Diagnostic describes how one file of an ingestion run was handled.
type Diagnostic struct {
	File        string
	Encoding    Encoding
	Delimiter   string
	Column      string
	Rows        int
	Identifiers int
	Err         error
}

// Report summarizes an ingestion run.
type Report struct {
	Files       []Diagnostic
	Processed   int
	Skipped     int
	Identifiers int // distinct identifiers in the Accumulator after the run
}

// Ingester parses files on a bounded pool of goroutines and merges them into
// an Accumulator.
type Ingester struct {
	concurrency int
	candidates  []Candidate
	matcher     ColumnMatcher
	watch       map[string]struct{}
	log         fdk.Logger
	stats       fdk.Statter
}

// IngesterOption is a functional option for NewIngester.
type IngesterOption func(*Ingester)

// WithConcurrency sets the number of files parsed at once.
func WithConcurrency(c int) IngesterOption {
	return func(in *Ingester) {
		if c > 0 {
			in.concurrency = c
		}
	}
}

// WithCandidates replaces the (encoding, delimiter) combinations tried on
// each file.
func WithCandidates(cs []Candidate) IngesterOption {
	return func(in *Ingester) {
		in.candidates = cs
	}
}

// WithColumnMatcher replaces the identifier column strategy.
func WithColumnMatcher(m ColumnMatcher) IngesterOption {
	return func(in *Ingester) {
		in.matcher = m
	}
}

// WithWatchList restricts ingestion to the given identifiers, which are
// compared in canonical form. An empty list keeps every identifier.
func WithWatchList(ids []string) IngesterOption {
	return func(in *Ingester) {
		if len(ids) == 0 {
			in.watch = nil
			return
		}
		in.watch = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			in.watch[fdk.Canonicalize(id)] = struct{}{}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l fdk.Logger) IngesterOption {
	return func(in *Ingester) {
		in.log = l
	}
}

// WithStatter sets the stats collector.
func WithStatter(s fdk.Statter) IngesterOption {
	return func(in *Ingester) {
		in.stats = s
	}
}

// NewIngester returns an Ingester configured by opts.
func NewIngester(opts ...IngesterOption) *Ingester {
	in := &Ingester{
		concurrency: DefaultConcurrency(),
		candidates:  DefaultCandidates,
		matcher:     DefaultColumnMatcher,
		log:         fdk.NopLogger{},
		stats:       fdk.NopStatter{},
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// ProcessFile reads and groups the file at path. It touches no shared state,
// so any number of calls may run at once. Failures are reported in the
// result's Err.
func (in *Ingester) ProcessFile(path string) FileResult {
	res := FileResult{Name: filepath.Base(path), Column: Undetected}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		res.Err = errors.Wrap(err, "reading file")
		return res
	}
	t, err := ReadTable(data, in.candidates)
	if err != nil {
		res.Err = err
		return res
	}
	res.Candidate = t.Candidate
	col, ok := in.matcher.Match(t.Header)
	if !ok {
		res.Err = ErrNoIdentifierColumn
		return res
	}
	res.Column = col
	res.Rows = len(t.Rows)
	res.Groups = in.group(t.Rows, col)
	return res
}

// group splits rows by their value in col, keeping file order within each
// group. Rows with a null identifier, or one outside the watch list, are
// left out.
func (in *Ingester) group(rows []fdk.RawRecord, col string) fdk.Groups {
	groups := make(fdk.Groups)
	for _, row := range rows {
		id, ok := row.Get(col)
		if !ok {
			continue
		}
		if !in.watched(id) {
			continue
		}
		groups[id] = append(groups[id], row)
	}
	return groups
}

// watched reports whether id is kept by the watch list.
func (in *Ingester) watched(id string) bool {
	if in.watch == nil {
		return true
	}
	_, ok := in.watch[fdk.Canonicalize(id)]
	return ok
}

// Ingest processes every path and merges the results into acc. Files are
// parsed concurrently, but only the calling goroutine writes to acc, one
// whole file at a time, in the order the files complete. A file which fails
// is skipped and keeps whatever it contributed to acc before. Only
// cancellation of ctx makes Ingest return an error.
func (in *Ingester) Ingest(ctx context.Context, acc fdk.Accumulator, paths []string) (*Report, error) {
	start := time.Now()
	parent := ctx
	results := make(chan FileResult)
	done := make(chan error, 1)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(in.concurrency)
	go func() {
		for _, path := range paths {
			path := path
			if ctx.Err() != nil {
				break
			}
			eg.Go(func() error {
				res := in.ProcessFile(path)
				select {
				case results <- res:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			})
		}
		done <- eg.Wait()
		close(results)
	}()

	report := &Report{Files: make([]Diagnostic, 0, len(paths))}
	for res := range results {
		report.Files = append(report.Files, in.merge(acc, res))
		if res.Err != nil {
			report.Skipped++
		} else {
			report.Processed++
		}
	}
	if err := <-done; err != nil {
		return report, errors.Wrap(err, "ingesting")
	}
	if err := parent.Err(); err != nil {
		return report, errors.Wrap(err, "ingesting")
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].File < report.Files[j].File })
	report.Identifiers = len(acc)
	in.stats.Gauge("identifiers", float64(report.Identifiers), 1)
	in.stats.Timing("ingest", time.Since(start), 1)
	return report, nil
}

func (in *Ingester) merge(acc fdk.Accumulator, res FileResult) Diagnostic {
	d := Diagnostic{
		File:        res.Name,
		Encoding:    res.Candidate.Encoding,
		Column:      res.Column,
		Rows:        res.Rows,
		Identifiers: len(res.Groups),
		Err:         res.Err,
	}
	if res.Candidate.Encoding != "" {
		d.Delimiter = delimiterName(res.Candidate.Delimiter)
	}
	if res.Err != nil {
		in.log.Printf("skipping %s: %v", res.Name, res.Err)
		in.stats.Count("files.skipped", 1, 1)
		return d
	}
	// Identifiers outside the watch list were not read, so their slots stay.
	acc.ReplaceWithin(res.Name, res.Groups, in.watched)
	in.log.Debugf("%s: %d rows, %d identifiers, column %s, %s", res.Name, res.Rows, len(res.Groups), res.Column, res.Candidate)
	in.stats.Count("files.processed", 1, 1)
	in.stats.Count("rows", int64(res.Rows), 1)
	return d
}

func delimiterName(d rune) string {
	if d == '\t' {
		return "tab"
	}
	return string(d)
}
