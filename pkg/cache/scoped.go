package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each served network its
// own namespace in a shared backend.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "net:pathways:")
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

// NetworkKey generates a prefixed key for network documents.
func (k *ScopedKeyer) NetworkKey(source, name string) string {
	return k.prefix + k.inner.NetworkKey(source, name)
}

// SnapshotKey generates a prefixed key for rendered snapshots.
func (k *ScopedKeyer) SnapshotKey(sceneHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(sceneHash, opts)
}
