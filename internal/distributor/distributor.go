package distributor

import (
	"errors"
	"sync"

	"github.com/ssephillip/newsleak/internal/catalog"
)

// ErrExhausted is returned by Next when every item has been handed out.
var ErrExhausted = errors.New("distributor: catalog exhausted")

// Ticket is an item handed out by Next together with its zero-based
// position in the catalog.
type Ticket struct {
	Item     catalog.Item
	Position int
}

// Counts is a consistent copy of the distributor counters.
type Counts struct {
	Total     int // items in the catalog
	Quota     int // effective outcome quota, never above Total
	Handed    int // items handed out by Next
	Succeeded int
	Failed    int
}

// Done returns the number of recorded outcomes.
func (c Counts) Done() int {
	return c.Succeeded + c.Failed
}

// Distributor hands out catalog items to workers and tracks outcomes.
// All methods are safe for concurrent use.
type Distributor struct {
	mu            sync.Mutex
	items         []catalog.Item
	quota         int
	cursor        int
	succeeded     int
	failed        int
	sinceSnapshot int
}

// New creates a distributor over items. A quota of zero or less, or one
// larger than the catalog, means the catalog length bounds the run.
func New(items []catalog.Item, quota int) *Distributor {
	if quota <= 0 || quota > len(items) {
		quota = len(items)
	}
	return &Distributor{
		items: items,
		quota: quota,
	}
}

// Next returns the next item and advances the cursor. The cursor advances
// even once the quota is reached; callers compare Ticket.Position with
// Quota before using the item.
func (d *Distributor) Next() (Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cursor >= len(d.items) {
		return Ticket{}, ErrExhausted
	}
	t := Ticket{Item: d.items[d.cursor], Position: d.cursor}
	d.cursor++
	return t, nil
}

// Position returns the zero-based position of the most recently handed-out
// item, or -1 if Next has not returned an item yet.
func (d *Distributor) Position() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor - 1
}

// RecordSuccess records a successful fetch.
func (d *Distributor) RecordSuccess() {
	d.mu.Lock()
	d.succeeded++
	d.sinceSnapshot++
	d.mu.Unlock()
}

// RecordFailure records a failed fetch.
func (d *Distributor) RecordFailure() {
	d.mu.Lock()
	d.failed++
	d.sinceSnapshot++
	d.mu.Unlock()
}

// Complete reports whether the number of outcomes has reached the quota or
// the catalog size, whichever is smaller. An empty catalog is complete
// from the start.
func (d *Distributor) Complete() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.succeeded+d.failed >= d.quota
}

// Quota returns the effective outcome quota.
func (d *Distributor) Quota() int {
	return d.quota
}

// Total returns the catalog size.
func (d *Distributor) Total() int {
	return len(d.items)
}

// Counts returns a copy of the counters taken under one lock.
func (d *Distributor) Counts() Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.countsLocked()
}

// TakeInterim returns the counters and true if at least threshold outcomes
// were recorded since the previous successful call. The since-last counter
// is reset in the same critical section.
func (d *Distributor) TakeInterim(threshold int) (Counts, bool) {
	if threshold <= 0 {
		return Counts{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sinceSnapshot < threshold {
		return Counts{}, false
	}
	d.sinceSnapshot = 0
	return d.countsLocked(), true
}

func (d *Distributor) countsLocked() Counts {
	return Counts{
		Total:     len(d.items),
		Quota:     d.quota,
		Handed:    d.cursor,
		Succeeded: d.succeeded,
		Failed:    d.failed,
	}
}
