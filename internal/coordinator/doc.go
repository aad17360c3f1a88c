// Package coordinator runs concurrent document downloads.
//
// This package ties a catalog, a distributor, a fetcher, and the progress
// reporter together. It manages the worker pool and graceful shutdown.
//
// # Usage
//
//	c := coordinator.New(cat, f, coordinator.Options{
//	    Workers:    16,
//	    Quota:      1000,
//	    ReportPath: "/var/log/tpfetch/stats.txt",
//	    Output:     os.Stderr,
//	})
//	snap, err := c.Run(ctx)
//
// # Worker Pool
//
// Workers share one distributor. Each loops on Next, fetches the item,
// and records the outcome. A worker exits when the catalog is exhausted
// or when it draws a ticket past the quota. Failed documents are counted
// and logged, never retried.
//
// # Completion
//
// The calling goroutine polls the distributor through the progress
// reporter. Run returns once the reporter has written the final snapshot
// and every worker has exited.
//
// # Graceful Shutdown
//
// On context cancellation:
//   - Workers stop taking new items
//   - In-flight fetches are aborted and not counted
//   - An interrupted snapshot is written to the final report
package coordinator
