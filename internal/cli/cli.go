// Package cli wires the application into the ethicheck command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/ethicheck/internal/app"
	"github.com/raysh454/ethicheck/internal/banner"
	"github.com/raysh454/ethicheck/internal/benchmark"
	"github.com/raysh454/ethicheck/internal/fetcher"
	"github.com/raysh454/ethicheck/internal/logging"
	"github.com/raysh454/ethicheck/internal/monitor"
	"github.com/raysh454/ethicheck/internal/server"
	"github.com/raysh454/ethicheck/internal/webclient"
)

// globalOptions are the persistent flags every subcommand sees.
type globalOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the command tree. Tests call it directly with
// SetArgs and SetOut.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "ethicheck",
		Short: "Flag supply-chain ethical risk on checkout pages",
		Long: `ethicheck classifies shopping pages, works out the brand being bought
and shows a risk banner backed by benchmark data, an AI estimate or a
keyword scan of the page.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "ethicheck.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newScanCommand(opts),
		newWatchCommand(opts),
		newServeCommand(opts),
		newSeedCommand(opts),
	)
	return root
}

// Execute runs the root command until ctx is canceled by SIGINT or SIGTERM.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func (o *globalOptions) load() (*app.Config, logging.Logger, error) {
	cfg, err := app.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	logger, err := app.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

func withApplication(ctx context.Context, cfg *app.Config, logger logging.Logger, fn func(*app.Application) error) error {
	a, err := app.NewApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Shutdown(context.Background()); err != nil {
			logger.Warn("shutdown", logging.Err(err))
		}
	}()
	return fn(a)
}

// ─── scan ──────────────────────────────────────────────────────────────

func newScanCommand(opts *globalOptions) *cobra.Command {
	var (
		asJSON      bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "scan <url>...",
		Short: "Assess pages and print their banners",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			return withApplication(cmd.Context(), cfg, logger, func(a *app.Application) error {
				if len(args) == 1 {
					out, err := a.Components.Pipeline.Assess(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return printOutcome(cmd.OutOrStdout(), out, asJSON)
				}

				f, err := fetcher.New(fetcher.Config{MaxConcurrency: concurrency}, a.Components.Pipeline, logger)
				if err != nil {
					return err
				}
				var failed int
				for _, r := range f.Fetch(cmd.Context(), args) {
					if r.Err != nil {
						failed++
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.URL, r.Err)
						continue
					}
					if !asJSON {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\n", r.URL)
					}
					if err := printOutcome(cmd.OutOrStdout(), r.Outcome, asJSON); err != nil {
						return err
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d pages could not be assessed", failed, len(args))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full outcome as JSON")
	cmd.Flags().IntVar(&concurrency, "concurrency", fetcher.DefaultMaxConcurrency, "pages assessed at once when several URLs are given")
	return cmd
}

func printOutcome(w io.Writer, out *app.Outcome, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if !out.Checkout {
		_, err := fmt.Fprintf(w, "not a checkout page: %s\n", out.Classification.Reason)
		return err
	}
	if out.FetchError != "" {
		if _, err := fmt.Fprintf(w, "page unavailable (%s), assessed from the URL only\n", out.FetchError); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, banner.Render(*out.Banner))
	return err
}

// ─── watch ─────────────────────────────────────────────────────────────

// liveTab is the chromedp client's long-lived tab.
type liveTab interface {
	monitor.LocationSource
	Open(ctx context.Context, url string) error
}

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var headless bool
	cmd := &cobra.Command{
		Use:   "watch [url]",
		Short: "Open a browser and show banners as you shop",
		Long: `watch starts Chrome, optionally opens url, and follows the tab. Every
time the address changes to a checkout-like page the pipeline runs and a
banner is printed. Leaving checkout clears it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			cfg.WebClient.Client = webclient.ClientChromedp
			cfg.WebClient.ShowBrowser = !headless

			return withApplication(cmd.Context(), cfg, logger, func(a *app.Application) error {
				tab, ok := a.Components.WebClient.(liveTab)
				if !ok {
					return errors.New("watch: web client cannot follow a browser tab")
				}
				if len(args) == 1 {
					if err := tab.Open(cmd.Context(), args[0]); err != nil {
						return err
					}
				}

				surface := banner.NewTerminalSurface(cmd.OutOrStdout())
				mon := monitor.New(a.Components.Pipeline, banner.NewPresenter(surface, logger),
					monitor.Config{PollInterval: cfg.Monitor.PollInterval}, logger)
				mon.OnOutcome = func(out *app.Outcome) {
					fields := []logging.Field{{Key: "url", Value: out.URL}}
					if out.Signal != nil {
						fields = append(fields,
							logging.Field{Key: "brand", Value: out.Signal.Brand},
							logging.Field{Key: "strategy", Value: out.Signal.Strategy})
					}
					logger.Info("banner updated", fields...)
				}
				logger.Info("watching browser tab", logging.Field{Key: "session", Value: mon.Session().ID})
				return mon.Run(cmd.Context(), tab)
			})
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "run Chrome without a window")
	return cmd
}

// ─── serve ─────────────────────────────────────────────────────────────

func newServeCommand(opts *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.ListenAddr = addr
			}
			return withApplication(cmd.Context(), cfg, logger, func(a *app.Application) error {
				var assess server.Assessor
				if a.Components.Benchmark != nil {
					assess = a.Components.Benchmark
				}
				srv, err := server.NewServer(server.Config{
					ListenAddr:     cfg.Server.ListenAddr,
					AllowedOrigins: allowedOrigins(cfg.Server.AllowedOrigins),
					Token:          cfg.Risk.Token,
					Logger:         logger,
				}, a.Components.Pipeline, assess)
				if err != nil {
					return err
				}
				return listen(cmd.Context(), srv.HTTPServer(), logger)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override server.listen_addr")
	return cmd
}

// allowedOrigins treats a lone "*" as no restriction.
func allowedOrigins(origins []string) []string {
	if len(origins) == 1 && origins[0] == "*" {
		return nil
	}
	return origins
}

func listen(ctx context.Context, hs *http.Server, logger logging.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api listening", logging.Field{Key: "addr", Value: hs.Addr})
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown api: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// ─── seed ──────────────────────────────────────────────────────────────

func newSeedCommand(opts *globalOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load companies from a YAML seed file into the benchmark store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.Benchmark.DBPath = dbPath
			}
			if cfg.Benchmark.DBPath == "" {
				return errors.New("seed: no benchmark database (set benchmark.db_path or --db)")
			}

			store, err := benchmark.Open(cfg.Benchmark.DBPath, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := benchmark.Seed(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d companies (%d in store)\n", n, total)
			return err
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "override benchmark.db_path")
	return cmd
}
