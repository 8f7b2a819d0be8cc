package cache

// ScopedKeyer wraps a Keyer with a prefix.
//
// Example usage:
//
//	// Keys of the staging backend
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for backend response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// RowsKey generates a prefixed key for packed grid caching.
func (k *ScopedKeyer) RowsKey(pageHash string, opts RowsKeyOpts) string {
	return k.prefix + k.inner.RowsKey(pageHash, opts)
}
