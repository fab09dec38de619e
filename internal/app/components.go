package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/benchmark"
	"github.com/raysh454/ethicheck/internal/classifier"
	"github.com/raysh454/ethicheck/internal/extractor"
	"github.com/raysh454/ethicheck/internal/logging"
	"github.com/raysh454/ethicheck/internal/webclient"
)

// Components are the long-lived parts built from a Config.
type Components struct {
	// WebClient fetches pages. With the chromedp backend it is also the live
	// tab the watch command follows.
	WebClient webclient.WebClient

	// Store and Benchmark are nil when no database or AI key is configured.
	Store     *benchmark.Store
	Benchmark *benchmark.Service

	Pipeline *Pipeline

	remoteWC webclient.WebClient
}

// NewComponents builds the pipeline. The risk chain uses the remote endpoint
// when one is configured, otherwise the local benchmark service if there is
// one, and always ends in the keyword scan.
func NewComponents(ctx context.Context, cfg *Config, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger = logging.OrNop(logger)
	c := &Components{}

	wc, err := webclient.NewWebClient(cfg.WebClient, logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}
	c.WebClient = wc

	if err := c.openBenchmark(ctx, cfg, logger); err != nil {
		_ = c.Close()
		return nil, err
	}

	var remote assessor.Remote
	switch {
	case cfg.Risk.Endpoint != "":
		// The page backend may be GET-only, so the endpoint gets its own client.
		rwc, err := webclient.NewNetHTTPClient(webclient.Config{Timeout: cfg.Risk.Timeout}, logger, nil)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("new remote webclient: %w", err)
		}
		c.remoteWC = rwc
		rc, err := assessor.NewRemoteClient(cfg.Risk, rwc, logger)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("new remote client: %w", err)
		}
		remote = rc
	case c.Benchmark != nil:
		remote = c.Benchmark.AsRemote()
	}

	c.Pipeline = NewPipeline(
		classifier.New(),
		wc,
		extractor.NewResolver(logger),
		assessor.NewResolver(remote, nil, logger),
		logger,
	)
	return c, nil
}

func (c *Components) openBenchmark(ctx context.Context, cfg *Config, logger logging.Logger) error {
	var lookup benchmark.Lookuper
	if cfg.Benchmark.DBPath != "" {
		store, err := benchmark.Open(cfg.Benchmark.DBPath, logger)
		if err != nil {
			return fmt.Errorf("open benchmark: %w", err)
		}
		c.Store = store
		lookup = store

		if cfg.Benchmark.SeedFile != "" {
			if _, err := benchmark.SeedIfEmpty(ctx, store, cfg.Benchmark.SeedFile); err != nil {
				return fmt.Errorf("seed benchmark: %w", err)
			}
		}
	}

	var ai benchmark.AIAssessor
	if cfg.AI.APIKey != "" {
		g, err := benchmark.NewGeminiAssessor(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			return fmt.Errorf("new ai assessor: %w", err)
		}
		ai = g
	}

	if lookup != nil || ai != nil {
		c.Benchmark = benchmark.NewService(lookup, ai, logger)
	}
	return nil
}

// Close releases every component that was built.
func (c *Components) Close() error {
	var errs []error
	if c.WebClient != nil {
		if err := c.WebClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close webclient: %w", err))
		}
	}
	if c.remoteWC != nil {
		if err := c.remoteWC.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close remote webclient: %w", err))
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close benchmark store: %w", err))
		}
	}
	return errors.Join(errs...)
}
