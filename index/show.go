package index

import (
	"encoding/json"
	"io"
	"os"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/boltdb"
	fdkjson "github.com/cvmdata/fdk/json"
	"github.com/cvmdata/fdk/leveldb"
	"github.com/pkg/errors"
)

// Show prints the document of one identifier from a final store. Bolt is
// used if set, then LevelDB, then the JSON index.
type Show struct {
	Index   string `help:"Final index JSON file."`
	Bolt    string `help:"BoltDB file written by index."`
	LevelDB string `help:"LevelDB directory written by index."`
	ID      string `flag:"-"`

	Out io.Writer `flag:"-"`
}

// NewShow returns a Show reading the default JSON index.
func NewShow() *Show {
	return &Show{
		Index: "normalized_by_cnpj.json",
		Out:   os.Stdout,
	}
}

// Run looks the identifier up and prints its document as JSON.
func (s *Show) Run() error {
	if s.ID == "" {
		return errors.New("an identifier is required")
	}
	r, closeFn, err := s.reader()
	if err != nil {
		return err
	}
	defer closeFn()
	doc, err := r.Document(s.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(s.Out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "printing document")
}

func (s *Show) reader() (fdk.DocumentReader, func() error, error) {
	switch {
	case s.Bolt != "":
		st, err := boltdb.Open(s.Bolt)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case s.LevelDB != "":
		st, err := leveldb.Open(s.LevelDB)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
	return fdkjson.NewIndexStore(s.Index), func() error { return nil }, nil
}
