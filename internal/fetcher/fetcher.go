// Package fetcher runs the assessment pipeline over many URLs at once.
package fetcher

import (
	"context"
	"errors"
	"sync"

	"github.com/raysh454/ethicheck/internal/app"
	"github.com/raysh454/ethicheck/internal/logging"
)

// Assessor is the part of app.Pipeline the fetcher drives.
type Assessor interface {
	Assess(ctx context.Context, rawURL string) (*app.Outcome, error)
}

// Result is one URL's outcome. Index is the URL's position in the input.
type Result struct {
	Index   int
	URL     string
	Outcome *app.Outcome
	Err     error
}

// Fetcher assesses pages with bounded concurrency.
type Fetcher struct {
	MaxConcurrency int
	pipeline       Assessor
	logger         logging.Logger
}

// New creates a Fetcher over pipeline.
func New(cfg Config, pipeline Assessor, logger logging.Logger) (*Fetcher, error) {
	if pipeline == nil {
		return nil, errors.New("fetcher: pipeline is nil")
	}
	n := cfg.MaxConcurrency
	if n <= 0 {
		n = DefaultMaxConcurrency
	}
	return &Fetcher{
		MaxConcurrency: n,
		pipeline:       pipeline,
		logger:         logging.OrNop(logger).With(logging.Component("fetcher")),
	}, nil
}

// Stream assesses every URL and hands each result to fn as it completes.
// fn is called from a single goroutine. URLs not started before ctx ends
// are skipped.
func (f *Fetcher) Stream(ctx context.Context, urls []string, fn func(Result)) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.MaxConcurrency)
	resCh := make(chan Result)
	collectorDone := make(chan struct{})

	go func() {
		defer close(collectorDone)
		for r := range resCh {
			fn(r)
		}
	}()

	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-sem }()

			out, err := f.pipeline.Assess(ctx, u)
			if err != nil {
				f.logger.Warn("assessment failed", logging.Field{Key: "url", Value: u}, logging.Err(err))
			}
			resCh <- Result{Index: i, URL: u, Outcome: out, Err: err}
		}(i, u)
	}

	wg.Wait()
	close(resCh)
	<-collectorDone
}

// Fetch assesses every URL and returns results in input order. Entries for
// URLs skipped because ctx ended carry ctx's error.
func (f *Fetcher) Fetch(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	done := make([]bool, len(urls))
	f.Stream(ctx, urls, func(r Result) {
		results[r.Index] = r
		done[r.Index] = true
	})
	for i, u := range urls {
		if !done[i] {
			results[i] = Result{Index: i, URL: u, Err: context.Cause(ctx)}
		}
	}
	return results
}
