package fdk

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Fetcher acquires a named resource (usually an archive) and returns the
// local path it was stored at.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// FetchReport lists what FetchAll stored and what it could not fetch.
type FetchReport struct {
	Paths  []string
	Failed map[string]error
}

// FetchAll fetches every name with at most concurrency fetches in flight. A
// failed fetch is logged and recorded in the report; it does not stop the
// others. Only cancellation of ctx is returned as an error.
func FetchAll(ctx context.Context, f Fetcher, names []string, concurrency int, log Logger) (FetchReport, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	report := FetchReport{Failed: make(map[string]error)}
	var mu sync.Mutex

	parent := ctx
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for _, name := range names {
		name := name
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			path, err := f.Fetch(ctx, name)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("could not fetch %s: %v", name, err)
				report.Failed[name] = err
				return nil
			}
			log.Debugf("fetched %s to %s", name, path)
			report.Paths = append(report.Paths, path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return report, errors.Wrap(err, "fetching")
	}
	if err := parent.Err(); err != nil {
		return report, errors.Wrap(err, "fetching")
	}
	sort.Strings(report.Paths)
	return report, nil
}
