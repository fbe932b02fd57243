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

// Package http fetches the regulator's published archives over HTTP.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/file"
	"github.com/pkg/errors"
)

var _ fdk.Fetcher = &Fetcher{}

// Fetcher implements fdk.Fetcher by downloading archives from the open data
// portal into a local directory.
type Fetcher struct {
	baseURL string
	dir     string
	client  *http.Client
}

// FetcherOption is a functional option type for Fetcher.
type FetcherOption func(f *Fetcher)

// WithBaseURL is an option which points the Fetcher at a mirror of the
// portal.
func WithBaseURL(u string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(u, "/")
	}
}

// WithClient is an option which replaces the HTTP client.
func WithClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithTimeout is an option which bounds each download.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d}
		}
	}
}

// NewFetcher returns a Fetcher storing archives in dir.
func NewFetcher(dir string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		baseURL: fdk.DefaultBaseURL,
		dir:     dir,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL returns where the archive name is published.
func (f *Fetcher) URL(name string) (string, error) {
	d, ok := fdk.DatasetOf(name)
	if !ok {
		return "", errors.Errorf("no dataset publishes %s", name)
	}
	return fmt.Sprintf("%s/%s/DADOS/%s", f.baseURL, d.Dir, name), nil
}

// Fetch downloads the archive name into the Fetcher's directory and returns
// its path. Anything but a 200 response is an error. The file only appears
// once it has been downloaded completely.
func (f *Fetcher) Fetch(ctx context.Context, name string) (string, error) {
	url, err := f.URL(name)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	resp, err := f.client.Do(req.WithContext(ctx))
	if err != nil {
		return "", errors.Wrapf(err, "getting %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("getting %s: status %s", url, resp.Status)
	}

	path := filepath.Join(f.dir, name)
	err = file.WriteAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, resp.Body)
		return errors.Wrap(err, "downloading")
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
