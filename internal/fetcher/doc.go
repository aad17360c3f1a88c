// Package fetcher downloads single documents into blob storage.
//
// A fetch never panics and never returns a bare error: the outcome is a
// Result whose Err is nil on success or wraps one of ErrMalformedURL,
// ErrTransfer, or ErrStore. Each fetch has its own timeout; when it fires
// only that document fails.
//
// # Usage
//
//	bucket, err := blob.OpenBucket(ctx, "file:///data/docs")
//	f := fetcher.NewBucketFetcher(bucket, fetcher.Options{
//	    Timeout:   15 * time.Minute,
//	    RateLimit: 20,
//	})
//
//	res := f.Fetch(ctx, item)
//	if !res.OK() {
//	    log.Printf("fetch %s: %v", res.Key, res.Err)
//	}
package fetcher
