// Package cache provides result caching for terrace analyses.
//
// Counting or detecting on large inputs can take a long time, and the
// result is a pure function of the inputs. The cache stores results keyed
// by hashes of the Newick tree, the data matrix, and the requested modes.
//
// Three backends are provided: NullCache (disabled), FileCache (local
// JSON files) and RedisCache (shared deployments). Keys are produced by a
// Keyer so that callers never concatenate raw input into key strings.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys from analysis inputs.
type Keyer interface {
	// AnalysisKey returns the key for an analysis result, given the
	// hashes of the Newick input and the matrix and the requested output
	// flags.
	AnalysisKey(newickHash, matrixHash string, flags int) string
}

// DefaultKeyer hashes the inputs into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AnalysisKey implements Keyer.
func (DefaultKeyer) AnalysisKey(newickHash, matrixHash string, flags int) string {
	return hashKey("analysis", newickHash, matrixHash, flags)
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation,
// e.g. per-user namespaces in a shared redis.
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AnalysisKey generates a prefixed key for an analysis result.
func (k *ScopedKeyer) AnalysisKey(newickHash, matrixHash string, flags int) string {
	return k.prefix + k.inner.AnalysisKey(newickHash, matrixHash, flags)
}
