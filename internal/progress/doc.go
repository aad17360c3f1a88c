// Package progress reports the state of a fetch run.
//
// The Reporter runs on the coordinating goroutine. Every PollInterval it
// asks its Source whether the run is complete. When it is, the final
// Snapshot goes to the final sink and Run returns. Until then an interim
// snapshot goes to the interim sink each time SnapshotEvery outcomes have
// accumulated. Workers are never blocked by reporting.
//
// # Usage
//
//	final, interim := progress.Sinks("/var/log/tpfetch/stats.txt")
//	r := progress.NewReporter(dist, progress.Options{
//	    RunID:   runID,
//	    Workers: 16,
//	    Final:   final,
//	    Interim: interim,
//	    Output:  os.Stderr,
//	})
//	snap, err := r.Run(ctx)
//
// # Output Format
//
//	[tpfetch] Documents: 265 of 120 records (3 ill-formed) | Workers: 16
//	[tpfetch] Progress: 45.2% | 120 / 265 | 118 ok | 2 failed | 1.13 GB | 3.4 docs/s
//
// Report files receive appended text blocks:
//
//	-----------------------------------------------------------------
//	Run: 2026-01-02T03:04:05Z (final, id 6f1c...)
//	Number of workers: 16
//	Total number of records: 120
//	...
//	Documents per second: 2.750
//	-----------------------------------------------------------------
package progress
