package progress

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ssephillip/newsleak/internal/catalog"
	"github.com/ssephillip/newsleak/internal/distributor"
	"github.com/ssephillip/newsleak/internal/metrics"
)

// Defaults for Options.
const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultSnapshotEvery = 500
)

// Source is the run state polled by the reporter.
type Source interface {
	Complete() bool
	Counts() distributor.Counts
	TakeInterim(threshold int) (distributor.Counts, bool)
}

// Options configures the progress reporter.
type Options struct {
	// RunID is stamped into every snapshot.
	RunID string

	// Start is the beginning of the run. Default: when Run is called.
	Start time.Time

	// Workers is the number of parallel workers.
	Workers int

	// Catalog describes how the item list was built.
	Catalog catalog.Stats

	// Formats are the requested formats.
	Formats []string

	// PollInterval is how often completion is checked.
	// Default: 100ms
	PollInterval time.Duration

	// SnapshotEvery writes an interim snapshot after this many outcomes.
	// Default: 500. Negative disables interim snapshots.
	SnapshotEvery int

	// Final receives the final snapshot. Interim receives interim ones.
	// Either may be nil.
	Final   Sink
	Interim Sink

	// Output receives human-readable progress lines. Nil disables them.
	Output io.Writer

	// Metrics adds byte counts and fetch latency. Optional.
	Metrics *metrics.Metrics

	// Logger reports sink failures. Nil discards.
	Logger *log.Logger
}

// Reporter polls a Source until the run is complete and writes snapshots.
type Reporter struct {
	opts Options
	src  Source

	lastDone int
}

// NewReporter creates a new progress reporter.
func NewReporter(src Source, opts Options) *Reporter {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SnapshotEvery == 0 {
		opts.SnapshotEvery = DefaultSnapshotEvery
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	return &Reporter{
		opts:     opts,
		src:      src,
		lastDone: -1,
	}
}

// Run blocks until the source is complete, then writes and returns the
// final snapshot. If ctx is cancelled first, an interrupted snapshot is
// written to the final sink and ctx.Err() is returned.
func (r *Reporter) Run(ctx context.Context) (Snapshot, error) {
	if r.opts.Start.IsZero() {
		r.opts.Start = time.Now()
	}

	r.printHeader()

	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			snap := r.snapshot(KindInterrupted, r.src.Counts())
			if err := r.write(r.opts.Final, snap); err != nil {
				r.opts.Logger.Printf("write interrupted report: %v", err)
			}
			r.printFinalStatus(snap)
			return snap, ctx.Err()
		case <-ticker.C:
		}

		if r.src.Complete() {
			snap := r.snapshot(KindFinal, r.src.Counts())
			r.printFinalStatus(snap)
			if err := r.write(r.opts.Final, snap); err != nil {
				return snap, fmt.Errorf("write final report: %w", err)
			}
			return snap, nil
		}

		if r.opts.SnapshotEvery > 0 {
			if c, ok := r.src.TakeInterim(r.opts.SnapshotEvery); ok {
				if err := r.write(r.opts.Interim, r.snapshot(KindInterim, c)); err != nil {
					r.opts.Logger.Printf("write interim report: %v", err)
				}
			}
		}

		r.printProgress(r.src.Counts())
	}
}

func (r *Reporter) write(sink Sink, snap Snapshot) error {
	if sink == nil {
		return nil
	}
	return sink.Write(snap)
}

func (r *Reporter) snapshot(kind Kind, c distributor.Counts) Snapshot {
	now := time.Now()
	snap := Snapshot{
		RunID:   r.opts.RunID,
		Kind:    kind,
		Time:    now,
		Workers: r.opts.Workers,
		Catalog: r.opts.Catalog,
		Counts:  c,
		Elapsed: now.Sub(r.opts.Start),
		Formats: r.opts.Formats,
	}
	if r.opts.Metrics != nil {
		v := r.opts.Metrics.View()
		snap.Bytes = v.Bytes
		snap.MeanFetch = v.MeanDuration
		snap.PerFormat = r.opts.Metrics.FormatCounts()
	}
	return snap
}

func (r *Reporter) printHeader() {
	if r.opts.Output == nil {
		return
	}
	fmt.Fprintf(r.opts.Output, "[tpfetch] Documents: %d of %d records (%d ill-formed) | Workers: %d\n",
		r.opts.Catalog.Relevant,
		r.opts.Catalog.Records,
		r.opts.Catalog.IllFormed,
		r.opts.Workers,
	)
}

// printProgress outputs the current progress when it changed.
func (r *Reporter) printProgress(c distributor.Counts) {
	if r.opts.Output == nil || c.Done() == r.lastDone {
		return
	}
	r.lastDone = c.Done()

	var rate float64
	var bytes int64
	if r.opts.Metrics != nil {
		v := r.opts.Metrics.View()
		rate = v.Rate1
		bytes = v.Bytes
	}

	fmt.Fprintf(r.opts.Output, "\r[tpfetch] Progress: %.1f%% | %d / %d | %d ok | %d failed | %s | %.1f docs/s    ",
		percent(c),
		c.Done(),
		c.Quota,
		c.Succeeded,
		c.Failed,
		formatBytes(bytes),
		rate,
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus(s Snapshot) {
	if r.opts.Output == nil {
		return
	}

	status := "Complete!"
	if s.Kind == KindInterrupted {
		status = "Interrupted"
	}

	fmt.Fprintf(r.opts.Output, "\r[tpfetch] Progress: %.1f%% | %d / %d | %s    \n",
		percent(s.Counts),
		s.Counts.Done(),
		s.Counts.Quota,
		status,
	)
	fmt.Fprintf(r.opts.Output, "[tpfetch] Documents: %d downloaded | %d failed | %s\n",
		s.Counts.Succeeded,
		s.Counts.Failed,
		formatBytes(s.Bytes),
	)
	fmt.Fprintf(r.opts.Output, "[tpfetch] Total time: %s | Average: %.2f docs/s\n",
		formatDuration(s.Elapsed),
		s.Throughput(),
	)
}

func percent(c distributor.Counts) float64 {
	if c.Quota == 0 {
		return 100
	}
	return float64(c.Done()) / float64(c.Quota) * 100
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes renders b with a binary unit, e.g. "1.50 MB".
func FormatBytes(b int64) string {
	return formatBytes(b)
}
