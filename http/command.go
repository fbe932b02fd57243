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

package http

import (
	"context"
	"strconv"
	"time"

	"github.com/cvmdata/fdk"
	"github.com/pkg/errors"
)

// Main downloads the archives of the selected datasets for every
// combination of years and months.
type Main struct {
	Datasets    []string `help:"Datasets to fetch: diario, balancete, composicao, lamina."`
	Years       []string `help:"Years to fetch (2010 up to next year)."`
	Months      []string `help:"Months to fetch (1-12)."`
	Dir         string   `help:"Directory the archives are stored in."`
	BaseURL     string   `help:"Root of the open data portal."`
	Concurrency int      `help:"Number of downloads in flight."`
	Timeout     int      `help:"Seconds allowed for each download."`
	LogPath     string   `help:"Log file. Logs go to stderr if empty."`
	Verbose     bool     `help:"Log every download."`

	Log fdk.Logger       `flag:"-"`
	Now func() time.Time `flag:"-"`

	// Report is set by Run.
	Report fdk.FetchReport `flag:"-"`
}

// NewMain returns a Main fetching every dataset for the months of the
// current year.
func NewMain() *Main {
	return &Main{
		Datasets:    []string{"diario", "balancete", "composicao"},
		Years:       []string{strconv.Itoa(time.Now().Year())},
		Months:      []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"},
		Dir:         "temp",
		BaseURL:     fdk.DefaultBaseURL,
		Concurrency: 4,
		Timeout:     300,
	}
}

// Run fetches the archives. Failed downloads are logged and reported; only
// invalid configuration makes Run fail.
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
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}

	datasets := make([]fdk.Dataset, 0, len(m.Datasets))
	for _, name := range m.Datasets {
		d, ok := fdk.LookupDataset(name)
		if !ok {
			return errors.Errorf("unknown dataset %q", name)
		}
		datasets = append(datasets, d)
	}
	years, err := atois(m.Years)
	if err != nil {
		return errors.Wrap(err, "parsing years")
	}
	months, err := atois(m.Months)
	if err != nil {
		return errors.Wrap(err, "parsing months")
	}
	periods, err := fdk.MonthPeriods(years, months, now())
	if err != nil {
		return err
	}

	names := fdk.ArchiveNames(datasets, periods)
	f := NewFetcher(m.Dir, WithBaseURL(m.BaseURL), WithTimeout(time.Duration(m.Timeout)*time.Second))
	log.Printf("fetching %d archives into %s", len(names), m.Dir)
	report, err := fdk.FetchAll(context.Background(), f, names, m.Concurrency, log)
	m.Report = report
	if err != nil {
		return err
	}
	log.Printf("fetched %d archives, %d failed", len(report.Paths), len(report.Failed))
	return nil
}

func atois(ss []string) ([]int, error) {
	is := make([]int, len(ss))
	for i, s := range ss {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %q", s)
		}
		is[i] = n
	}
	return is, nil
}
