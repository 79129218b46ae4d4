package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The server uses one scope per family tree so that clearing a tree's
// entries never touches a neighbor's.
//
// Example usage:
//
//	treeKeyer := cache.NewScopedKeyer(nil, "tree:"+treeID+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys. A nil inner keyer falls
// back to the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// SnapshotKey generates a prefixed key for assembled snapshot caching.
func (k *ScopedKeyer) SnapshotKey(treeHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(treeHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifact caching.
func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(snapshotHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
