// Package archive expands downloaded archives into a flat directory of
// files. Zip archives may hold any number of files; zstd streams (.zst) hold
// one file named after the stream.
package archive

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/file"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Extensions are the archive kinds ExpandDir picks up.
var Extensions = []string{".zip", ".zst"}

// Report lists what ExpandDir wrote and which archives it could not expand.
type Report struct {
	Files  []string
	Failed map[string]error
}

// ExpandDir expands every archive of src into dst. Directory structure
// inside archives is dropped: every member lands directly in dst, replacing
// any file of the same name. An archive which cannot be expanded is logged
// and recorded in the report; the others are still expanded.
func ExpandDir(src, dst string, log fdk.Logger) (Report, error) {
	report := Report{Failed: make(map[string]error)}
	paths, err := file.List(src, Extensions...)
	if err != nil {
		return report, errors.Wrap(err, "listing archives")
	}
	for _, path := range paths {
		files, err := ExpandFile(path, dst)
		report.Files = append(report.Files, files...)
		if err != nil {
			log.Printf("could not expand %s: %v", path, err)
			report.Failed[path] = err
			continue
		}
		log.Debugf("expanded %s: %d files", path, len(files))
	}
	return report, nil
}

// ExpandFile expands the archive at path into dst and returns the paths it
// wrote.
func ExpandFile(path, dst string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return expandZip(path, dst)
	case ".zst":
		return expandZstd(path, dst)
	}
	return nil, errors.Errorf("unknown archive type %s", path)
}

func expandZip(path, dst string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening zip")
	}
	defer r.Close()

	var written []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(filepath.FromSlash(f.Name))
		out := filepath.Join(dst, name)
		err := file.WriteAtomic(out, func(w io.Writer) error {
			rc, err := f.Open()
			if err != nil {
				return errors.Wrap(err, "opening member")
			}
			defer rc.Close()
			_, err = io.Copy(w, rc)
			return errors.Wrap(err, "copying member")
		})
		if err != nil {
			return written, errors.Wrapf(err, "expanding %s", f.Name)
		}
		written = append(written, out)
	}
	return written, nil
}

func expandZstd(path, dst string) ([]string, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening stream")
	}
	defer in.Close()
	dec, err := zstd.NewReader(in)
	if err != nil {
		return nil, errors.Wrap(err, "creating zstd decoder")
	}
	defer dec.Close()

	base := filepath.Base(path)
	out := filepath.Join(dst, strings.TrimSuffix(base, filepath.Ext(base)))
	err = file.WriteAtomic(out, func(w io.Writer) error {
		_, err := io.Copy(w, dec)
		return errors.Wrap(err, "decompressing")
	})
	if err != nil {
		return nil, err
	}
	return []string{out}, nil
}
