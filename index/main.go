// Package index builds the final store from the document set: documents are
// re-keyed by canonical identifier and written to every configured
// fdk.IndexWriter.
package index

import (
	"time"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/boltdb"
	"github.com/cvmdata/fdk/json"
	"github.com/cvmdata/fdk/leveldb"
	"github.com/pkg/errors"
)

// Main writes the final index.
type Main struct {
	Documents string `help:"Document set artifact written by normalize."`
	Output    string `help:"Final index JSON file. Skipped if empty."`
	Bolt      string `help:"BoltDB file to export the index to. Skipped if empty."`
	LevelDB   string `help:"LevelDB directory to export the index to. Skipped if empty."`
	Strict    bool   `help:"Fail when two identifiers share a canonical key instead of keeping the last."`
	LogPath   string `help:"Log file. Logs go to stderr if empty."`
	Verbose   bool   `help:"Log every collision."`

	Log fdk.Logger `flag:"-"`

	// Report and Indexed are set by Run.
	Report  fdk.ReindexReport `flag:"-"`
	Indexed int               `flag:"-"`
}

// NewMain returns a Main with default values.
func NewMain() *Main {
	return &Main{
		Documents: "normalized.json",
		Output:    "normalized_by_cnpj.json",
	}
}

// Run loads the document set and writes the final index.
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

	docs, err := json.LoadDocuments(m.Documents)
	if err != nil {
		return errors.Wrap(err, "loading documents")
	}
	idx, report, err := Write(docs, m.policy(), log, m.writers()...)
	m.Report = report
	if err != nil {
		return err
	}
	m.Indexed = len(idx)
	log.Printf("indexed %d documents, %d collisions, %d without key, duration: %s",
		len(idx), len(report.Collisions), len(report.Unkeyed), time.Since(start))
	return nil
}

func (m *Main) policy() fdk.CollisionPolicy {
	if m.Strict {
		return fdk.StrictCollisions
	}
	return fdk.LastWriteWins
}

// writers returns a Target for each configured destination.
func (m *Main) writers() []Target {
	var ts []Target
	if m.Output != "" {
		ts = append(ts, Target{Name: m.Output, Open: func() (fdk.IndexWriter, func() error, error) {
			return json.NewIndexStore(m.Output), func() error { return nil }, nil
		}})
	}
	if m.Bolt != "" {
		ts = append(ts, Target{Name: m.Bolt, Open: func() (fdk.IndexWriter, func() error, error) {
			s, err := boltdb.Open(m.Bolt)
			if err != nil {
				return nil, nil, err
			}
			return s, s.Close, nil
		}})
	}
	if m.LevelDB != "" {
		ts = append(ts, Target{Name: m.LevelDB, Open: func() (fdk.IndexWriter, func() error, error) {
			s, err := leveldb.Open(m.LevelDB)
			if err != nil {
				return nil, nil, err
			}
			return s, s.Close, nil
		}})
	}
	return ts
}

// Target is a destination of the final index, opened only once the index
// has been built.
type Target struct {
	Name string
	Open func() (w fdk.IndexWriter, closeFn func() error, err error)
}

// Write re-keys docs and writes the result to every target. Nothing is
// opened if reindexing fails.
func Write(docs fdk.Documents, policy fdk.CollisionPolicy, log fdk.Logger, targets ...Target) (fdk.Index, fdk.ReindexReport, error) {
	idx, report, err := fdk.Reindex(docs, policy)
	if err != nil {
		return nil, report, errors.Wrap(err, "reindexing")
	}
	for _, c := range report.Collisions {
		log.Debugf("%s: %s replaced by %s", c.Key, c.Replaced, c.Kept)
	}
	for _, id := range report.Unkeyed {
		log.Debugf("%q has no digits, left out", id)
	}
	for _, t := range targets {
		w, closeFn, err := t.Open()
		if err != nil {
			return nil, report, errors.Wrapf(err, "opening %s", t.Name)
		}
		err = w.WriteIndex(idx)
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, report, errors.Wrapf(err, "writing %s", t.Name)
		}
		log.Printf("wrote %d documents to %s", len(idx), t.Name)
	}
	return idx, report, nil
}
