// Package webcache implements a caching intermediary that sits in front of
// an origin web server. Requests are served from a shared, external
// key-value store when possible; otherwise the origin is fetched, the store
// is populated, and the fresh response is returned. Last-Modified/304
// semantics are synthesized so that clients and origins that don't implement
// conditional GET still benefit from client-side caching.
package webcache

import "errors"

// ErrNotFound is returned by Store.CAS when the key is absent or the token
// supplied no longer matches the stored value (the key was overwritten or
// evicted since it was read).
var ErrNotFound = errors.New("webcache: key not found or token stale")

// Token is an opaque value returned alongside a Gets read, required to
// serialize a subsequent CAS write. Stores are free to use whatever
// representation suits them (a CAS id, a version counter, an etag) — callers
// never inspect it.
type Token interface{}

// Store is the narrow facade every cache backend must provide. It models the
// five primitives a distributed KV store offers: unconditional get/set,
// insert-if-absent, compare-and-swap with an opaque token, and delete. A
// conforming Store may evict any key at any time; callers are written to
// tolerate that.
type Store interface {
	// Get returns the raw value stored at key, or (nil, false) if absent.
	Get(key string) (value []byte, ok bool)

	// Gets returns the raw value and a token for use with CAS. Returns
	// (nil, nil, false) if the key is absent.
	Gets(key string) (value []byte, token Token, ok bool)

	// Add stores value at key only if no entry currently exists there.
	// Returns true iff the insert happened.
	Add(key string, value []byte) (ok bool, err error)

	// CAS stores value at key only if the key's current token still
	// matches the one supplied. Returns ErrNotFound if the key is absent
	// or the token is stale.
	CAS(key string, value []byte, token Token) (ok bool, err error)

	// Set stores value at key unconditionally.
	Set(key string, value []byte) error

	// Delete removes key. It is not an error for key to already be absent.
	Delete(key string) error
}
