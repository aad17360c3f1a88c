// Package http provides the HTTP client used to fetch catalog files and
// documents.
//
// This package handles:
//   - Connection pooling for many concurrent workers
//   - A fixed User-Agent on every request
//   - Mapping of HTTP status codes to sentinel errors
//
// Requests are never retried: a failed document is a terminal outcome for
// that document.
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	resp, err := client.Get(ctx, url)
//	if errors.Is(err, http.ErrNotFound) {
//	    // ...
//	}
//	defer resp.Body.Close()
package http
