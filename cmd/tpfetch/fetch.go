package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ssephillip/newsleak/internal/catalog"
	"github.com/ssephillip/newsleak/internal/config"
	"github.com/ssephillip/newsleak/internal/coordinator"
	"github.com/ssephillip/newsleak/internal/fetcher"
	tphttp "github.com/ssephillip/newsleak/internal/http"
	"github.com/ssephillip/newsleak/internal/progress"
	"github.com/ssephillip/newsleak/internal/tui"
)

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)

	configPath := fs.String("config", "", "YAML configuration file")
	storage := fs.String("storage", "", "Destination directory or bucket URL (required)")
	catalogSrc := fs.String("catalog", "", "Catalog file or http(s) URL (required)")
	report := fs.String("report", "", "Report file, interim reports go to <report>--temp.txt")
	formats := fs.String("formats", "", "Comma-separated formats to download (default: all)")
	quota := fs.Int("quota", 0, "Maximum number of documents to attempt (default: whole catalog)")
	workers := fs.Int("workers", 0, "Number of parallel workers (default 16)")
	fetchTimeout := fs.Duration("fetch-timeout", 0, "Timeout for a single document (default 15m)")
	rateLimit := fs.Float64("rate-limit", 0, "Maximum document requests per second (default: unlimited)")
	snapshotEvery := fs.Int("snapshot-every", 0, "Write an interim report every N documents (default 500)")
	pollInterval := fs.Duration("poll-interval", 0, "How often progress is checked (default 100ms)")
	userAgent := fs.String("user-agent", "", "User-Agent header for document requests")
	showProgress := fs.Bool("progress", false, "Show progress on stderr")
	showTUI := fs.Bool("tui", false, "Show an interactive progress view")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: tpfetch fetch [options]

Download the documents listed in a catalog into a directory or bucket.
Each document is stored as <id>.<format>. A failed document is counted
and skipped, never retried. The run ends when the quota or the catalog
is exhausted.

Options can also be set in a YAML file (-config) or through TPFETCH_*
environment variables. Flags take precedence.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	cfg = cfg.Merge(config.Config{
		Storage:       *storage,
		Catalog:       *catalogSrc,
		Report:        *report,
		Formats:       config.ParseFormats(*formats),
		Quota:         *quota,
		Workers:       *workers,
		FetchTimeout:  *fetchTimeout,
		RateLimit:     *rateLimit,
		SnapshotEvery: *snapshotEvery,
		PollInterval:  *pollInterval,
		UserAgent:     *userAgent,
		Progress:      *showProgress,
		TUI:           *showTUI,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\n[tpfetch] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return fetch(ctx, cancel, cfg)
}

func fetch(ctx context.Context, cancel context.CancelFunc, cfg config.Config) int {
	start := time.Now()

	logger := log.New(os.Stderr, "[tpfetch] ", log.LstdFlags)
	if cfg.TUI {
		logger = log.New(io.Discard, "", 0)
	}

	client := tphttp.NewClient(tphttp.Options{UserAgent: cfg.UserAgent})
	defer client.CloseIdleConnections()

	cat, err := catalog.NewProvider(cfg.Catalog, cfg.Formats, client).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCatalogError
	}
	fmt.Fprintf(os.Stderr, "[tpfetch] Catalog: %d records (%d ill-formed, %d duplicate), %d documents, %d of requested formats\n",
		cat.Stats.Records, cat.Stats.IllFormed, cat.Stats.Duplicates, cat.Stats.Items, cat.Stats.Relevant)

	bucketURL, err := cfg.BucketURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitStorageError
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening storage: %v\n", err)
		return ExitStorageError
	}
	defer bucket.Close()

	f := fetcher.NewBucketFetcher(bucket, fetcher.Options{
		Timeout:   cfg.FetchTimeout,
		RateLimit: cfg.RateLimit,
		Client:    client,
	})

	var output io.Writer
	if cfg.Progress && !cfg.TUI {
		output = os.Stderr
	}

	c := coordinator.New(cat, f, coordinator.Options{
		Workers:       cfg.Workers,
		Quota:         cfg.Quota,
		Start:         start,
		Formats:       cfg.Formats,
		ReportPath:    cfg.Report,
		PollInterval:  cfg.PollInterval,
		SnapshotEvery: cfg.SnapshotEvery,
		Output:        output,
		Logger:        logger,
	})

	var snap progress.Snapshot
	if cfg.TUI {
		title := fmt.Sprintf("tpfetch %s", c.RunID())
		err = tui.Watch(title, c.Distributor(), cancel, func() error {
			var runErr error
			snap, runErr = c.Run(ctx)
			return runErr
		}, tea.WithOutput(os.Stderr))
	} else {
		snap, err = c.Run(ctx)
	}

	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "[tpfetch] Interrupted: %d downloaded, %d failed\n",
			snap.Counts.Succeeded, snap.Counts.Failed)
		return ExitInterrupted
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitReportError
	}

	fmt.Fprintf(os.Stderr, "[tpfetch] Run %s complete: %d downloaded (%s), %d failed in %s\n",
		snap.RunID, snap.Counts.Succeeded, progress.FormatBytes(snap.Bytes), snap.Counts.Failed,
		snap.Elapsed.Round(time.Millisecond))
	return ExitSuccess
}
