package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ssephillip/newsleak/internal/catalog"
	"github.com/ssephillip/newsleak/internal/distributor"
	"github.com/ssephillip/newsleak/internal/fetcher"
	"github.com/ssephillip/newsleak/internal/metrics"
	"github.com/ssephillip/newsleak/internal/progress"
)

// DefaultWorkers is used when Options.Workers is not positive.
const DefaultWorkers = 16

// Options configures a run.
type Options struct {
	// Workers is the number of parallel fetch workers.
	Workers int

	// Quota is the maximum number of outcomes. Zero or less means the
	// whole catalog.
	Quota int

	// RunID identifies the run in reports. Default: a random UUID.
	RunID string

	// Start is the beginning of the run, used for elapsed time.
	// Default: when Run is called.
	Start time.Time

	// Formats are the requested formats, for reports.
	Formats []string

	// ReportPath is the final report file. The interim report goes to
	// ReportPath + "--temp.txt". Empty disables report files.
	ReportPath string

	// PollInterval and SnapshotEvery are passed to the progress reporter.
	PollInterval  time.Duration
	SnapshotEvery int

	// Output receives human-readable progress. Nil disables it.
	Output io.Writer

	// Logger receives per-item failures and worker lifecycle messages.
	// Nil discards.
	Logger *log.Logger

	// Metrics collects throughput. Default: a private registry.
	Metrics *metrics.Metrics
}

// Coordinator runs a pool of workers against one distributor.
type Coordinator struct {
	opts    Options
	cat     catalog.Catalog
	fetcher fetcher.Fetcher
	dist    *distributor.Distributor
	metrics *metrics.Metrics
	owned   bool
}

// New prepares a run over cat.
func New(cat catalog.Catalog, f fetcher.Fetcher, opts Options) *Coordinator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	c := &Coordinator{
		opts:    opts,
		cat:     cat,
		fetcher: f,
		dist:    distributor.New(cat.Items, opts.Quota),
		metrics: opts.Metrics,
	}
	if c.metrics == nil {
		c.metrics = metrics.New(nil)
		c.owned = true
	}
	return c
}

// Distributor returns the run's distributor, for observers.
func (c *Coordinator) Distributor() *distributor.Distributor {
	return c.dist
}

// Metrics returns the run's metrics.
func (c *Coordinator) Metrics() *metrics.Metrics {
	return c.metrics
}

// RunID returns the run identifier.
func (c *Coordinator) RunID() string {
	return c.opts.RunID
}

// Run starts the workers, reports progress until the run is complete, and
// waits for the workers to exit. Per-item failures are counted, never
// returned. If ctx is cancelled, workers stop taking new items and the
// interrupted snapshot is returned with ctx.Err().
func (c *Coordinator) Run(ctx context.Context) (progress.Snapshot, error) {
	if c.owned {
		defer c.metrics.Stop()
	}

	start := c.opts.Start
	if start.IsZero() {
		start = time.Now()
	}

	var final, interim progress.Sink
	if c.opts.ReportPath != "" {
		f, i := progress.Sinks(c.opts.ReportPath)
		final, interim = f, i
	}

	reporter := progress.NewReporter(c.dist, progress.Options{
		RunID:         c.opts.RunID,
		Start:         start,
		Workers:       c.opts.Workers,
		Catalog:       c.cat.Stats,
		Formats:       c.opts.Formats,
		PollInterval:  c.opts.PollInterval,
		SnapshotEvery: c.opts.SnapshotEvery,
		Final:         final,
		Interim:       interim,
		Output:        c.opts.Output,
		Metrics:       c.metrics,
		Logger:        c.opts.Logger,
	})

	c.opts.Logger.Printf("run %s: %d documents, quota %d, %d workers",
		c.opts.RunID, c.dist.Total(), c.dist.Quota(), c.opts.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.opts.Workers; i++ {
		id := i + 1
		g.Go(func() error {
			c.work(gctx, id)
			return nil
		})
	}

	snap, err := reporter.Run(ctx)
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return snap, fmt.Errorf("run %s: %w", c.opts.RunID, err)
	}
	return snap, err
}

// work is the worker loop. It returns when the catalog is exhausted, when
// it draws a ticket at or past the quota, or when ctx is done.
func (c *Coordinator) work(ctx context.Context, id int) {
	quota := c.dist.Quota()
	for {
		if ctx.Err() != nil {
			c.opts.Logger.Printf("worker %d: stopped", id)
			return
		}

		t, err := c.dist.Next()
		if errors.Is(err, distributor.ErrExhausted) {
			c.opts.Logger.Printf("worker %d: finished", id)
			return
		}
		if t.Position >= quota {
			c.opts.Logger.Printf("worker %d: quota reached", id)
			return
		}

		res := c.fetcher.Fetch(ctx, t.Item)
		if !res.OK() && ctx.Err() != nil {
			c.opts.Logger.Printf("worker %d: %s interrupted", id, res.Key)
			return
		}

		c.metrics.Observe(t.Item.Format, res.Bytes, res.Duration, res.OK())
		if res.OK() {
			c.dist.RecordSuccess()
			continue
		}
		c.dist.RecordFailure()
		c.opts.Logger.Printf("worker %d: document %d of %d (%s) failed: %v",
			id, t.Position+1, c.dist.Total(), res.Key, res.Err)
	}
}
