package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pngexport:staging:")
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

// ArtifactKey generates a prefixed payload key.
func (k *ScopedKeyer) ArtifactKey(markupHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(markupHash, opts)
}

// SourceKey generates a prefixed source document key.
func (k *ScopedKeyer) SourceKey(kind, contentHash string) string {
	return k.prefix + k.inner.SourceKey(kind, contentHash)
}
