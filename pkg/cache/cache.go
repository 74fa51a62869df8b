// Package cache stores computed tours and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several API instances
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// All backends implement [Cache] and store opaque byte slices; callers decide
// the encoding.
//
// # Keys
//
// A [Keyer] derives keys from the content that determines a result, so two
// runs over the same matrix with the same options share an entry regardless
// of the file the matrix came from:
//
//	key := keyer.TourKey(cache.Hash(matrixJSON), cache.TourKeyOpts{
//	    Start: "Paris",
//	    Mode:  "symmetric",
//	})
//
// Wrap a keyer with [NewScopedKeyer] to isolate namespaces on a shared
// backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value stored under key. A missing or expired entry is a
	// miss (hit == false), not an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Default expiry per entry type.
const (
	TTLTour     = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// TourKeyOpts are the inputs besides the matrix that change a tour.
type TourKeyOpts struct {
	Start string `json:"start"`
	Mode  string `json:"mode"`
}

// ArtifactKeyOpts are the inputs besides the tour that change a rendering.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	HideCosts  bool   `json:"hide_costs,omitempty"`
	ShowMatrix bool   `json:"show_matrix,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// TourKey returns the key of a tour computed over the matrix with the
	// given content hash.
	TourKey(matrixHash string, opts TourKeyOpts) string

	// ArtifactKey returns the key of a rendering of the tour with the given
	// content hash.
	ArtifactKey(tourHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes all key inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TourKey implements [Keyer].
func (DefaultKeyer) TourKey(matrixHash string, opts TourKeyOpts) string {
	return hashKey("tour", matrixHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(tourHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", tourHash, opts)
}
