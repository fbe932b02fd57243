// Package json reads and writes the persisted artifacts of the pipeline: the
// Accumulator, the normalized document set, and the final index. All of them
// are indented JSON with sorted keys, so unchanged inputs produce
// byte-identical files.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"sync"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/file"
	"github.com/pkg/errors"
)

// LoadAccumulator reads the Accumulator at path. A missing or empty file is
// a fresh start and yields an empty Accumulator. A file with content which
// does not decode is an fdk.ErrCorruptArtifact.
func LoadAccumulator(path string) (fdk.Accumulator, error) {
	acc := fdk.NewAccumulator()
	if _, err := load(path, &acc, true); err != nil {
		return nil, err
	}
	if acc == nil {
		acc = fdk.NewAccumulator()
	}
	for id, files := range acc {
		if files == nil {
			return nil, errors.Wrapf(fdk.ErrCorruptArtifact, "%s: identifier %q has no files", path, id)
		}
	}
	return acc, nil
}

// SaveAccumulator replaces the Accumulator at path.
func SaveAccumulator(path string, acc fdk.Accumulator) error {
	return save(path, acc)
}

// LoadDocuments reads a document set written by SaveDocuments. Unlike the
// Accumulator, a missing document set is an error.
func LoadDocuments(path string) (fdk.Documents, error) {
	docs := make(fdk.Documents)
	if _, err := load(path, &docs, false); err != nil {
		return nil, err
	}
	if err := checkDocuments(path, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// SaveDocuments replaces the document set at path.
func SaveDocuments(path string, docs fdk.Documents) error {
	return save(path, docs)
}

// LoadIndex reads a final index written by SaveIndex.
func LoadIndex(path string) (fdk.Index, error) {
	idx := make(fdk.Index)
	if _, err := load(path, &idx, false); err != nil {
		return nil, err
	}
	if err := checkDocuments(path, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// SaveIndex replaces the final index at path.
func SaveIndex(path string, idx fdk.Index) error {
	return save(path, idx)
}

// load decodes the file at path into v. It reports false when the file was
// missing (only allowed with allowMissing) or empty, leaving v untouched.
func load(path string, v interface{}, allowMissing bool) (bool, error) {
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) && allowMissing {
		return false, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "reading %s", path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(fdk.ErrCorruptArtifact, "%s: %v", path, err)
	}
	return true, nil
}

// checkDocuments rejects keys decoded from null, which carry no document.
func checkDocuments(path string, docs map[string]*fdk.Document) error {
	for id, doc := range docs {
		if doc == nil {
			return errors.Wrapf(fdk.ErrCorruptArtifact, "%s: %q has no document", path, id)
		}
	}
	return nil
}

func save(path string, v interface{}) error {
	return file.WriteAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding")
	})
}

// IndexStore is the final index kept as a single JSON file. It is both the
// IndexWriter producing the file and the DocumentReader the lookup side uses.
type IndexStore struct {
	path string

	mu  sync.Mutex
	idx fdk.Index
}

var (
	_ fdk.IndexWriter    = &IndexStore{}
	_ fdk.DocumentReader = &IndexStore{}
)

// NewIndexStore returns an IndexStore for the file at path. Nothing is read
// until the first lookup.
func NewIndexStore(path string) *IndexStore {
	return &IndexStore{path: path}
}

// WriteIndex replaces the file with idx.
func (s *IndexStore) WriteIndex(idx fdk.Index) error {
	if err := SaveIndex(s.path, idx); err != nil {
		return err
	}
	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()
	return nil
}

// Document returns the document for id, given in any formatting.
func (s *IndexStore) Document(id string) (*fdk.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx == nil {
		idx, err := LoadIndex(s.path)
		if err != nil {
			return nil, errors.Wrap(err, "loading index")
		}
		s.idx = idx
	}
	doc, ok := s.idx[fdk.Canonicalize(id)]
	if !ok {
		return nil, errors.Wrapf(fdk.ErrNotFound, "%s", id)
	}
	return doc, nil
}
