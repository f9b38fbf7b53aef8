// Package cache stores rendered figure bytes between runs.
//
// Rendering is a pure function of the figure and its render profile, so the
// encoded artifact can be reused whenever the same data is drawn with the
// same profile. Three backends implement [Cache]:
//
//   - [FileCache]: JSON entries with an expiry under the user cache dir (CLI)
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: never stores anything (--no-cache, tests)
//
// Keys come from a [Keyer], which hashes every input that changes the output.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey is the key of a rendered figure. subject identifies what
	// was drawn: a data digest for loaded series, the figure name for
	// gallery figures.
	ArtifactKey(subject string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the inputs besides the subject that change a
// rendered figure.
type ArtifactKeyOpts struct {
	Kind    string `json:"kind"`
	Format  string `json:"format"`
	Profile any    `json:"profile"` // the render profile, hashed as JSON
	Version string `json:"version"`
}

// DefaultKeyer hashes the subject and options with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements Keyer. Keys look like "artifact:<sha256 hex>".
func (DefaultKeyer) ArtifactKey(subject string, opts ArtifactKeyOpts) string {
	// Marshalling a string and a struct of plain fields cannot fail.
	data, _ := json.Marshal([]any{subject, opts})
	return "artifact:" + Hash(data)
}

// Hash returns the hex SHA-256 of data. The pipeline uses it for data
// digests as well as keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ScopedKeyer prefixes every key of the embedded Keyer so several
// deployments can share one backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pubfig:")
type ScopedKeyer struct {
	Keyer
	Prefix string
}

// NewScopedKeyer returns inner with prefix in front of its keys. A nil
// inner means DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Keyer: inner, Prefix: prefix}
}

// ArtifactKey implements Keyer.
func (k ScopedKeyer) ArtifactKey(subject string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Keyer.ArtifactKey(subject, opts)
}

// NullCache misses on every Get and drops every Set.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

// TTL for rendered artifacts.
const ArtifactTTL = 7 * 24 * time.Hour
