package catalog

import (
	"fmt"
	"strings"
	"time"
)

// UnknownDate is used when a record carries no usable publishing date.
const UnknownDate = "1900-01-01"

// Item is a single downloadable document.
type Item struct {
	ID           string
	URL          string
	Format       string
	Name         string
	DatasetTitle string
	DatasetDate  string
}

// Key returns the destination object key, id.format.
func (it Item) Key() string {
	return it.ID + "." + it.Format
}

// Record is a catalog entry grouping several documents of one dataset.
// Formats, URLs and Names are parallel lists.
type Record struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	PublishingDate string   `json:"publishing_date" yaml:"publishing_date"`
	Formats        []string `json:"res_format" yaml:"res_format"`
	URLs           []string `json:"res_url" yaml:"res_url"`
	Names          []string `json:"res_name" yaml:"res_name"`
}

// WellFormed reports whether the mandatory fields are present and the
// parallel lists have equal length.
func (r Record) WellFormed() bool {
	if r.ID == "" || len(r.Formats) == 0 || len(r.URLs) == 0 || len(r.Names) == 0 {
		return false
	}
	return len(r.Formats) == len(r.URLs) && len(r.Formats) == len(r.Names)
}

// Items expands the record into one Item per document. The record must be
// well formed.
func (r Record) Items() []Item {
	date := normalizeDate(r.PublishingDate)
	items := make([]Item, 0, len(r.URLs))
	for i, u := range r.URLs {
		items = append(items, Item{
			ID:           fmt.Sprintf("%s_%d", r.ID, i),
			URL:          u,
			Format:       strings.ToLower(strings.TrimSpace(r.Formats[i])),
			Name:         r.Names[i],
			DatasetTitle: r.Title,
			DatasetDate:  date,
		})
	}
	return items
}

// Stats summarizes how a catalog was built.
type Stats struct {
	Records    int // records read
	IllFormed  int // records discarded by WellFormed
	Duplicates int // well-formed records whose ID was already seen
	Items      int // documents in kept records
	Relevant   int // documents left after format filtering
}

// Catalog is the ordered list of items handed to the distributor.
type Catalog struct {
	Items []Item
	Stats Stats
}

// Flatten expands records into items in record order. Ill-formed records
// are dropped and counted. Only the first record with a given ID is kept,
// so item IDs and keys are unique.
func Flatten(records []Record) ([]Item, Stats) {
	var (
		items []Item
		stats Stats
	)
	stats.Records = len(records)
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if !r.WellFormed() {
			stats.IllFormed++
			continue
		}
		if _, dup := seen[r.ID]; dup {
			stats.Duplicates++
			continue
		}
		seen[r.ID] = struct{}{}
		items = append(items, r.Items()...)
	}
	stats.Items = len(items)
	stats.Relevant = len(items)
	return items, stats
}

// Filter returns the items whose format is in formats, preserving order.
// Matching is case-insensitive. An empty formats list keeps every item.
func Filter(items []Item, formats []string) []Item {
	if len(formats) == 0 {
		return items
	}
	allowed := make(map[string]struct{}, len(formats))
	for _, f := range formats {
		allowed[strings.ToLower(strings.TrimSpace(f))] = struct{}{}
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if _, ok := allowed[it.Format]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Build flattens records and applies the format allow-list.
func Build(records []Record, formats []string) Catalog {
	items, stats := Flatten(records)
	items = Filter(items, formats)
	stats.Relevant = len(items)
	return Catalog{Items: items, Stats: stats}
}

// FormatCounts returns the number of items per format.
func FormatCounts(items []Item) map[string]int {
	counts := make(map[string]int)
	for _, it := range items {
		counts[it.Format]++
	}
	return counts
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < len(time.DateOnly) {
		return UnknownDate
	}
	if _, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err != nil {
		return UnknownDate
	}
	return s[:len(time.DateOnly)]
}
