// Package cache stores backend responses and packed grids between runs.
//
// Three backends implement [Cache]:
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared entries for several server instances
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] so the CLI and the server agree on them.
// [ScopedKeyer] prefixes every key, which keeps separate backends (for
// instance a staging and a production API) apart in one shared store.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. hit is false when the key is absent
	// or expired; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey is the key of a cached backend response.
	HTTPKey(namespace, key string) string

	// RowsKey is the key of a packed grid for a page of sources.
	RowsKey(pageHash string, opts RowsKeyOpts) string
}

// RowsKeyOpts holds everything a packed grid depends on besides the page.
type RowsKeyOpts struct {
	Columns int `json:"columns"`
}

// DefaultKeyer is the unprefixed [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// RowsKey hashes the page hash together with opts.
func (DefaultKeyer) RowsKey(pageHash string, opts RowsKeyOpts) string {
	return hashKey("rows", pageHash, opts)
}
