// Package storage defines the object-storage capability the uploader
// depends on, plus the backends that satisfy it.
package storage

import (
	"context"
	"errors"
)

// Backend error sentinels, mapped to HTTP status classes at the transport
// boundary via errors.Is().
var (
	// ErrAuth indicates the backend rejected the configured credentials.
	// Once seen, further uploads in the same request are pointless.
	ErrAuth = errors.New("storage authentication failed")

	// ErrTransport indicates a network or backend failure for one asset.
	ErrTransport = errors.New("storage transport failed")
)

// Backend is the capability a CDN/object store must provide.
//
// Store must be safe to call more than once with the same key and bytes:
// deduplication correctness under concurrent identical uploads relies on
// this idempotency, not on client-side coordination.
//
// Probe reports whether key already exists and, if so, its URL. Backends
// whose credential mode cannot support existence lookups return ok=false
// for every key; callers then fall through to Store.
type Backend interface {
	Probe(ctx context.Context, key string) (url string, ok bool, err error)
	Store(ctx context.Context, key string, data []byte) (url string, err error)
}
