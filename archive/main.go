package archive

import (
	"github.com/cvmdata/fdk"
	"github.com/pkg/errors"
)

// Main expands the archives of a directory.
type Main struct {
	Src     string `help:"Directory holding the downloaded archives."`
	Dst     string `help:"Directory the files are expanded into."`
	LogPath string `help:"Log file. Logs go to stderr if empty."`
	Verbose bool   `help:"Log every archive."`

	Log fdk.Logger `flag:"-"`

	// Report is set by Run.
	Report Report `flag:"-"`
}

// NewMain returns a Main with default values.
func NewMain() *Main {
	return &Main{
		Src: "temp",
		Dst: "data",
	}
}

// Run expands every archive of Src into Dst.
func (m *Main) Run() error {
	log := m.Log
	if log == nil {
		l, closer, err := fdk.NewLogger(m.LogPath, m.Verbose)
		if err != nil {
			return errors.Wrap(err, "getting logger")
		}
		defer closer.Close()
		log = l
	}
	report, err := ExpandDir(m.Src, m.Dst, log)
	m.Report = report
	if err != nil {
		return err
	}
	log.Printf("expanded %d files, %d archives failed", len(report.Files), len(report.Failed))
	return nil
}
