package fdk

import "sort"

// NullValue marks a cell which was missing from its source file. It is
// distinct from the empty string so consumers can tell "absent" from "empty".
// The literal matches what earlier accumulator artifacts used.
const NullValue = "NaN"

// RawRecord is one row of one source file, keyed by column name. Values are
// kept exactly as read; missing cells hold NullValue. The set of columns
// depends on the file and is not fixed.
type RawRecord map[string]string

// Get returns the value of col, and false if the column is absent or null.
func (r RawRecord) Get(col string) (string, bool) {
	v, ok := r[col]
	if !ok || v == NullValue {
		return "", false
	}
	return v, true
}

// Groups maps entity identifiers to the rows a single file holds for each of
// them, in file order.
type Groups map[string][]RawRecord

// Accumulator is the persisted intermediate state of ingestion. It maps an
// entity identifier (verbatim from the source data) to a map of source file
// name to that file's rows for the identifier.
//
// A file's contribution is always replaced as a whole, never appended to, so
// ingesting the same file twice leaves the Accumulator unchanged.
type Accumulator map[string]map[string][]RawRecord

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() Accumulator {
	return make(Accumulator)
}

// Replace installs groups as the complete contribution of file. Every slot
// previously held by file is removed first, so identifiers which no longer
// appear in the file keep no stale rows from it. Identifiers left without
// any file are removed.
func (a Accumulator) Replace(file string, groups Groups) {
	a.ReplaceWithin(file, groups, nil)
}

// ReplaceWithin is Replace restricted to the identifiers for which scope
// reports true: slots of file held by other identifiers are left as they
// are. A nil scope covers every identifier.
func (a Accumulator) ReplaceWithin(file string, groups Groups, scope func(id string) bool) {
	for id, files := range a {
		if scope != nil && !scope(id) {
			continue
		}
		if _, ok := files[file]; !ok {
			continue
		}
		delete(files, file)
		if len(files) == 0 {
			delete(a, id)
		}
	}
	for id, rows := range groups {
		files := a[id]
		if files == nil {
			files = make(map[string][]RawRecord)
			a[id] = files
		}
		files[file] = rows
	}
}

// Identifiers returns every identifier in the Accumulator, sorted.
func (a Accumulator) Identifiers() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Files returns the names of the files contributing rows to id, sorted.
func (a Accumulator) Files(id string) []string {
	files := make([]string, 0, len(a[id]))
	for name := range a[id] {
		files = append(files, name)
	}
	sort.Strings(files)
	return files
}
