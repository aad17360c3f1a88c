package progress

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ssephillip/newsleak/internal/catalog"
	"github.com/ssephillip/newsleak/internal/distributor"
)

// Kind tells interim snapshots from the final one.
type Kind string

const (
	KindInterim     Kind = "interim"
	KindFinal       Kind = "final"
	KindInterrupted Kind = "interrupted"
)

const separator = "----------------------------------------------------------------------------------------------------"

// Snapshot is the state of a run at one point in time.
type Snapshot struct {
	RunID     string
	Kind      Kind
	Time      time.Time
	Workers   int
	Catalog   catalog.Stats
	Counts    distributor.Counts
	Bytes     int64
	Elapsed   time.Duration
	MeanFetch time.Duration
	Formats   []string         // requested formats, empty means all
	PerFormat map[string]int64 // successful downloads per format
}

// Throughput returns successful documents per second. It is zero when no
// time has elapsed.
func (s Snapshot) Throughput() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Counts.Succeeded) / secs
}

// WriteTo writes the snapshot as a text block.
func (s Snapshot) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	formats := "all"
	if len(s.Formats) > 0 {
		formats = strings.Join(s.Formats, ", ")
	}

	fmt.Fprintln(&b, separator)
	fmt.Fprintf(&b, "Run: %s (%s, id %s)\n", s.Time.UTC().Format(time.RFC3339), s.Kind, s.RunID)
	fmt.Fprintf(&b, "Number of workers: %d\n", s.Workers)
	fmt.Fprintf(&b, "Total number of records: %d\n", s.Catalog.Records)
	fmt.Fprintf(&b, "Number of ill-formed records: %d\n", s.Catalog.IllFormed)
	fmt.Fprintf(&b, "Number of duplicate records: %d\n", s.Catalog.Duplicates)
	fmt.Fprintf(&b, "Total number of documents: %d\n", s.Catalog.Items)
	fmt.Fprintf(&b, "Number of documents of requested formats: %d\n", s.Catalog.Relevant)
	fmt.Fprintf(&b, "Quota: %d\n", s.Counts.Quota)
	fmt.Fprintf(&b, "Number of documents downloaded: %d\n", s.Counts.Succeeded)
	fmt.Fprintf(&b, "Number of documents failed to download: %d\n", s.Counts.Failed)
	fmt.Fprintf(&b, "Bytes downloaded: %d (%s)\n", s.Bytes, formatBytes(s.Bytes))
	fmt.Fprintf(&b, "Time elapsed: %d\n", int64(s.Elapsed.Seconds()))
	fmt.Fprintf(&b, "Documents per second: %.3f\n", s.Throughput())
	fmt.Fprintf(&b, "Mean fetch time: %s\n", s.MeanFetch.Round(time.Millisecond))
	fmt.Fprintf(&b, "Formats requested: %s\n", formats)
	if len(s.PerFormat) > 0 {
		fmt.Fprintf(&b, "Downloaded per format: %s\n", formatCounts(s.PerFormat))
	}
	fmt.Fprintln(&b, separator)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func formatCounts(counts map[string]int64) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
