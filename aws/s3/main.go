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

package s3

import (
	"context"

	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/archive"
	"github.com/pkg/errors"
)

// Main contains the configuration for fetching every archive of an S3
// mirror.
type Main struct {
	Bucket      string `help:"S3 bucket name from which to read objects."`
	Prefix      string `help:"Only objects in the bucket matching this prefix will be used."`
	Region      string `help:"AWS region to use."`
	Dir         string `help:"Directory the archives are stored in."`
	Concurrency int    `help:"Number of downloads in flight."`
	LogPath     string `help:"Log file. Logs go to stderr if empty."`
	Verbose     bool   `help:"Log every download."`

	Client s3iface.S3API `flag:"-"`
	Log    fdk.Logger    `flag:"-"`

	// Report is set by Run.
	Report fdk.FetchReport `flag:"-"`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Bucket:      "cvm-dados-fi",
		Prefix:      "DOC/",
		Region:      "sa-east-1",
		Dir:         "temp",
		Concurrency: 4,
	}
}

// Run lists the archives of the bucket and fetches them all.
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
	opts := []FetcherOption{OptFetcherPrefix(m.Prefix)}
	if m.Client != nil {
		opts = append(opts, OptFetcherClient(m.Client))
	}
	f, err := NewFetcher(m.Region, m.Bucket, m.Dir, opts...)
	if err != nil {
		return errors.Wrap(err, "getting s3 fetcher")
	}

	ctx := context.Background()
	names, err := f.List(ctx, archive.Extensions...)
	if err != nil {
		return err
	}
	log.Printf("fetching %d archives from s3://%s/%s", len(names), m.Bucket, m.Prefix)
	report, err := fdk.FetchAll(ctx, f, names, m.Concurrency, log)
	m.Report = report
	if err != nil {
		return err
	}
	log.Printf("fetched %d archives, %d failed", len(report.Paths), len(report.Failed))
	return nil
}
