// Package httputil provides HTTP helpers shared by the backend API client.
//
// # Retry
//
// [Retry] wraps a request with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//
// Only errors wrapped in [RetryableError] are retried. The delay doubles
// after every failed attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return client.fetch(ctx, path, &page)
//	})
//
// Mutating requests (ingest, sync, enable toggles) must not be wrapped in
// Retry: the backend does not make them idempotent.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max attempts: 3
//   - Base backoff: 1 second
package httputil
