package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. It keeps the entries
// of several deployments apart on one Redis or Mongo backend:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TourKey generates a prefixed tour key.
func (k *ScopedKeyer) TourKey(matrixHash string, opts TourKeyOpts) string {
	return k.prefix + k.inner.TourKey(matrixHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(tourHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(tourHash, opts)
}
