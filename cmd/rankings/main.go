// Command rankings estimates a consensus college football ranking from a
// season's game results, or serves rankings over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ahrav/go-rankings/infrastructure/httpapi"
	"github.com/ahrav/go-rankings/infrastructure/middleware"
	"github.com/ahrav/go-rankings/internal/application"
	"github.com/ahrav/go-rankings/internal/domain"
	"github.com/ahrav/go-rankings/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "rankings:", err)
		if errors.Is(err, domain.ErrInput) || errors.Is(err, domain.ErrInvalidConfiguration) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	configPath string
	logLevel   string
	top        int
	serve      bool
}

// parseFlags loads the configuration file, if any, and applies the flags
// that were set explicitly on top of it.
func parseFlags(args []string, stderr io.Writer) (application.Config, options, error) {
	fs := flag.NewFlagSet("rankings", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts    options
		year    = fs.Int("year", 0, "Season year (default: config or current year)")
		week    = fs.Int("week", 0, "Last week to include (default: every played week)")
		local   = fs.Bool("local", false, "Read the cached schedule only")
		dataDir = fs.String("data-dir", "", "Schedule cache directory")
		trials  = fs.Int("trials", 0, "Number of trials")
		seed    = fs.Uint64("seed", 0, "Random seed (default: random)")
		workers = fs.Int("workers", 0, "Number of goroutines running trials")
		addr    = fs.String("addr", "", "HTTP listen address for -serve")
	)
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (default: LOG_LEVEL or info)")
	fs.IntVar(&opts.top, "top", 25, "Number of teams to print; 0 prints all")
	fs.BoolVar(&opts.serve, "serve", false, "Serve the HTTP API instead of printing a ranking")

	if err := fs.Parse(args); err != nil {
		return application.Config{}, opts, err
	}
	if fs.NArg() > 0 {
		return application.Config{}, opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := application.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := application.LoadConfig(opts.configPath)
		if err != nil {
			return application.Config{}, opts, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "year":
			cfg.Season.Year = *year
		case "week":
			cfg.Season.Week = week
		case "local":
			cfg.Source.Local = *local
		case "data-dir":
			cfg.Source.DataDir = *dataDir
		case "trials":
			cfg.Ranking.TrialCount = *trials
		case "seed":
			cfg.Ranking.Seed = seed
		case "workers":
			cfg.Ranking.Workers = *workers
		case "addr":
			cfg.Server.Addr = *addr
		}
	})

	if err := cfg.Validate(); err != nil {
		return application.Config{}, opts, err
	}
	return cfg, opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewPrometheusMetrics(reg)

	source := application.NewScheduleSource(cfg.Source, metrics, logger)
	svc := application.NewRankingService(source, cfg.Ranking, metrics, logger)

	if opts.serve {
		return serve(ctx, cfg, svc, reg, logger)
	}

	res, err := svc.Rank(ctx, application.RankRequest{Year: cfg.Season.Year, Week: cfg.Season.Week})
	if err != nil {
		return err
	}
	return printRanking(stdout, res, opts.top)
}

func serve(
	ctx context.Context,
	cfg application.Config,
	svc *application.RankingService,
	reg *prometheus.Registry,
	logger *zap.Logger,
) error {
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(httpapi.Config{
			Ranker:      svc,
			DefaultYear: cfg.Season.Year,
			Gatherer:    reg,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving rankings", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func printRanking(w io.Writer, res *application.RankResult, top int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tTEAM\tSCORE")
	for _, s := range res.Ranking.Top(top) {
		fmt.Fprintf(tw, "%d\t%s\t%.3f\n", s.Position, s.Entity, s.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d season through week %d: %d teams, %d games, %d trials, seed %d\n",
		res.Year, res.Cutoff, res.Entities, res.Outcomes, res.Trials, res.Seed)
	return err
}
