// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package csv ingests directories of delimited files published with no fixed
// schema, encoding or delimiter. Every file is decoded into a Table with the
// first Candidate that works, its identifier column is found with a
// ColumnMatcher, and its rows are grouped by identifier and merged into an
// fdk.Accumulator.
package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cvmdata/fdk"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Encoding is a character encoding a file may be written in.
type Encoding string

// Supported encodings.
const (
	UTF8   Encoding = "utf-8"
	Latin1 Encoding = "latin-1"
)

// Auto asks the decoder to sniff the delimiter from the header line.
const Auto rune = 0

// Candidate is one (encoding, delimiter) combination to try on a file.
type Candidate struct {
	Encoding  Encoding
	Delimiter rune
}

func (c Candidate) String() string {
	switch c.Delimiter {
	case Auto:
		return string(c.Encoding) + "/auto"
	case '\t':
		return string(c.Encoding) + "/tab"
	}
	return fmt.Sprintf("%s/%c", c.Encoding, c.Delimiter)
}

// DefaultCandidates is the order in which combinations are tried. Auto comes
// first for each encoding, the explicit delimiters cover files where
// sniffing picks the wrong character.
var DefaultCandidates = []Candidate{
	{UTF8, Auto}, {UTF8, ';'}, {UTF8, ','},
	{Latin1, Auto}, {Latin1, ';'}, {Latin1, ','},
}

// sniffable are the delimiters Auto chooses from, in order of preference on
// ties.
var sniffable = []rune{';', ',', '\t', '|'}

// naTokens are read as missing cells, on top of empty fields.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Table is a decoded file. Every row has a value for every header column,
// missing cells holding fdk.NullValue.
type Table struct {
	Header    []string
	Rows      []fdk.RawRecord
	Candidate Candidate
}

// ReadTable decodes data with the first candidate which succeeds. A
// candidate fails when the bytes are not valid in its encoding, when the
// file has no header, when the csv reader reports an error, or when a row
// has non-empty cells past the end of the header.
func ReadTable(data []byte, candidates []Candidate) (*Table, error) {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	var errs []string
	for _, c := range candidates {
		t, err := readTable(data, c)
		if err == nil {
			return t, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %v", c, err))
	}
	return nil, errors.Errorf("no candidate could decode the file: %s", strings.Join(errs, "; "))
}

func readTable(data []byte, c Candidate) (*Table, error) {
	text, err := decode(data, c.Encoding)
	if err != nil {
		return nil, err
	}
	delim := c.Delimiter
	if delim == Auto {
		delim = sniffDelimiter(text)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("empty file")
	} else if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	header = normalizeHeader(header)

	t := &Table{Header: header, Rows: make([]fdk.RawRecord, 0), Candidate: Candidate{c.Encoding, delim}}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "reading row")
		}
		rec, err := parseRecord(header, row)
		if err != nil {
			line, _ := r.FieldPos(0)
			return nil, errors.Wrapf(err, "line %d", line)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func decode(data []byte, enc Encoding) (string, error) {
	switch enc {
	case UTF8:
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", errors.New("invalid utf-8")
		}
		return string(data), nil
	case Latin1:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", errors.Wrap(err, "decoding latin-1")
		}
		return string(out), nil
	}
	return "", errors.Errorf("unknown encoding %q", enc)
}

// sniffDelimiter picks the most frequent of the sniffable delimiters on the
// first line of text, defaulting to comma.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		line = text[:i]
	}
	best, bestN := ',', 0
	for _, d := range sniffable {
		if n := strings.Count(line, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// normalizeHeader names unnamed columns after their position and suffixes
// repeated names with their occurrence count, so every column has a unique
// key in the records.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	repeats := make(map[string]int)
	for i, name := range header {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		col := name
		for used[col] {
			repeats[name]++
			col = name + "." + strconv.Itoa(repeats[name])
		}
		used[col] = true
		out[i] = col
	}
	return out
}

// parseRecord maps row onto header. Cells missing from a short row, empty
// cells and NA tokens become fdk.NullValue.
func parseRecord(header []string, row []string) (fdk.RawRecord, error) {
	for _, extra := range row[min(len(row), len(header)):] {
		if strings.TrimSpace(extra) != "" {
			return nil, errors.Errorf("%d fields for %d columns", len(row), len(header))
		}
	}
	rec := make(fdk.RawRecord, len(header))
	for i, col := range header {
		v := fdk.NullValue
		if i < len(row) && !isNA(row[i]) {
			v = row[i]
		}
		rec[col] = v
	}
	return rec, nil
}

func isNA(v string) bool {
	if v == "" {
		return true
	}
	_, ok := naTokens[v]
	return ok
}
