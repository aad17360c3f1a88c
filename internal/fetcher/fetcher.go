package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
	"golang.org/x/time/rate"

	"github.com/ssephillip/newsleak/internal/catalog"
	tphttp "github.com/ssephillip/newsleak/internal/http"
)

// Failure classes carried by Result.Err.
var (
	ErrMalformedURL = errors.New("fetcher: malformed url")
	ErrTransfer     = errors.New("fetcher: transfer failed")
	ErrStore        = errors.New("fetcher: store failed")
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 15 * time.Minute

// Result is the outcome of one fetch.
type Result struct {
	Key      string
	Bytes    int64
	Duration time.Duration
	Err      error
}

// OK reports whether the document was stored.
func (r Result) OK() bool {
	return r.Err == nil
}

// Fetcher copies one item to storage. Implementations never panic on
// per-item errors; they report them in Result.Err.
type Fetcher interface {
	Fetch(ctx context.Context, item catalog.Item) Result
}

// Func adapts a function to the Fetcher interface.
type Func func(ctx context.Context, item catalog.Item) Result

// Fetch implements Fetcher.
func (f Func) Fetch(ctx context.Context, item catalog.Item) Result {
	return f(ctx, item)
}

// Options configures a BucketFetcher.
type Options struct {
	// Timeout bounds a single fetch including the storage write.
	// Default: DefaultTimeout
	Timeout time.Duration

	// RateLimit caps fetch starts per second across all workers.
	// Zero means unlimited.
	RateLimit float64

	// Client is the HTTP client. Default: a client with DefaultOptions.
	Client *tphttp.Client
}

// BucketFetcher downloads items over HTTP into a blob bucket under
// Item.Key().
type BucketFetcher struct {
	bucket  *blob.Bucket
	client  *tphttp.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewBucketFetcher creates a fetcher writing into bucket.
func NewBucketFetcher(bucket *blob.Bucket, opts Options) *BucketFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Client == nil {
		opts.Client = tphttp.NewClient(tphttp.DefaultOptions())
	}

	f := &BucketFetcher{
		bucket:  bucket,
		client:  opts.Client,
		timeout: opts.Timeout,
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return f
}

// Fetch implements Fetcher. Nothing is committed to the bucket unless the
// whole body was copied.
func (f *BucketFetcher) Fetch(ctx context.Context, item catalog.Item) Result {
	start := time.Now()
	res := Result{Key: item.Key()}

	res.Bytes, res.Err = f.fetch(ctx, item, res.Key)
	res.Duration = time.Since(start)
	return res
}

func (f *BucketFetcher) fetch(ctx context.Context, item catalog.Item, key string) (int64, error) {
	if err := validateURL(item.URL); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("%w: rate limit: %w", ErrTransfer, err)
		}
	}

	resp, err := f.client.Get(ctx, item.URL)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	defer resp.Body.Close()

	// Cancelling wctx before Close discards the object.
	wctx, wcancel := context.WithCancel(ctx)
	defer wcancel()

	w, err := f.bucket.NewWriter(wctx, key, &blob.WriterOptions{
		ContentType: resp.ContentType,
		Metadata: map[string]string{
			"source_url": item.URL,
			"name":       item.Name,
		},
	})
	if err != nil {
		return 0, storeError("open writer", err)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		wcancel()
		w.Close()
		return n, fmt.Errorf("%w: copy %s: %w", ErrTransfer, key, err)
	}

	if err := w.Close(); err != nil {
		return n, storeError("close writer", err)
	}
	return n, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrMalformedURL, raw)
	}
	return nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s (%s): %w", ErrStore, op, gcerrors.Code(err), err)
}
