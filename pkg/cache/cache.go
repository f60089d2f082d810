// Package cache stores finished export payloads and rendered documents.
//
// Two things are worth keeping across runs: the PNG produced for a given
// snapshot and size, and the SVG document graphviz renders from a DOT file.
// Both are keyed by a content hash, so an unchanged graphic exported at the
// same size is served without rasterizing again.
//
// Backends:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer]; [ScopedKeyer] namespaces them.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TTLArtifact = 7 * 24 * time.Hour
	TTLSource   = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts are the render parameters that distinguish two payloads
// produced from the same snapshot.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`
	Strict bool    `json:"strict"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey identifies an encoded payload by the hash of the snapshot
	// markup it was rendered from.
	ArtifactKey(markupHash string, opts ArtifactKeyOpts) string

	// SourceKey identifies a document rendered from a source file of the
	// given kind (e.g. "dot") by the hash of its content.
	SourceKey(kind, contentHash string) string
}

// DefaultKeyer produces "artifact:<sha256>" and "source:<kind>:<sha256>"
// keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(markupHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", markupHash, opts)
}

// SourceKey implements Keyer.
func (DefaultKeyer) SourceKey(kind, contentHash string) string {
	return hashKey("source:"+kind, contentHash)
}
