// Package distributor hands out catalog items to a pool of workers.
//
// A Distributor owns a forward-only cursor over the catalog, the outcome
// quota, and the succeeded/failed counters. A single mutex guards all of
// it. Workers loop on Next until ErrExhausted, drop a ticket whose
// position is at or beyond the quota, and record each outcome with
// RecordSuccess or RecordFailure.
//
// Complete is the only completion signal. It turns true once
//
//	succeeded + failed >= min(len(items), quota)
//
// Because Next advances the cursor unconditionally, each worker may take
// one item past the quota and drop it. The number of recorded outcomes
// therefore never exceeds the quota.
//
// # Usage
//
//	d := distributor.New(cat.Items, quota)
//	for {
//	    t, err := d.Next()
//	    if errors.Is(err, distributor.ErrExhausted) {
//	        return
//	    }
//	    if t.Position >= d.Quota() {
//	        return
//	    }
//	    if fetch(t.Item) == nil {
//	        d.RecordSuccess()
//	    } else {
//	        d.RecordFailure()
//	    }
//	}
package distributor
