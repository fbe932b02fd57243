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

// Package s3 fetches archives from an S3 bucket mirroring the regulator's
// portal.
package s3

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/cvmdata/fdk"
	"github.com/cvmdata/fdk/file"
	"github.com/pkg/errors"
)

var _ fdk.Fetcher = &Fetcher{}

// Fetcher implements fdk.Fetcher over the objects under a prefix of a
// bucket. Archive names are object keys relative to the prefix.
type Fetcher struct {
	bucket string
	prefix string
	dir    string

	s3 s3iface.S3API
}

// FetcherOption is a functional option type for Fetcher.
type FetcherOption func(f *Fetcher)

// OptFetcherPrefix sets the key prefix the archives live under.
func OptFetcherPrefix(prefix string) FetcherOption {
	return func(f *Fetcher) {
		f.prefix = prefix
	}
}

// OptFetcherClient replaces the S3 client.
func OptFetcherClient(c s3iface.S3API) FetcherOption {
	return func(f *Fetcher) {
		f.s3 = c
	}
}

// NewFetcher returns a Fetcher storing archives of bucket in dir. Unless a
// client is given, one is created for region from the default credential
// chain.
func NewFetcher(region, bucket, dir string, opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		bucket: bucket,
		dir:    dir,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.s3 == nil {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(region)},
		)
		if err != nil {
			return nil, errors.Wrap(err, "getting new session")
		}
		f.s3 = s3.New(sess)
	}
	return f, nil
}

// List returns the names of the archives under the prefix, sorted.
func (f *Fetcher) List(ctx context.Context, exts ...string) ([]string, error) {
	var names []string
	err := f.s3.ListObjectsPagesWithContext(ctx, &s3.ListObjectsInput{
		Bucket: aws.String(f.bucket),
		Prefix: aws.String(f.prefix),
	}, func(page *s3.ListObjectsOutput, last bool) bool {
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), f.prefix)
			if name == "" || strings.HasSuffix(name, "/") || !hasExt(name, exts) {
				continue
			}
			names = append(names, name)
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "listing objects")
	}
	sort.Strings(names)
	return names, nil
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return true
		}
	}
	return false
}

// Fetch downloads the object prefix+name into the Fetcher's directory.
func (f *Fetcher) Fetch(ctx context.Context, name string) (string, error) {
	key := f.prefix + name
	result, err := f.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.Wrapf(err, "fetching %v", key)
	}
	defer result.Body.Close()

	out := filepath.Join(f.dir, path.Base(name))
	err = file.WriteAtomic(out, func(w io.Writer) error {
		_, err := io.Copy(w, result.Body)
		return errors.Wrap(err, "downloading")
	})
	if err != nil {
		return "", err
	}
	return out, nil
}
