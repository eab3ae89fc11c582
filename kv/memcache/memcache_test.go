//go:build integration

package memcache

import (
	"testing"

	"github.com/mchtech/webcache/kv/kvtest"
)

// TestMemcacheStore requires a memcached listening on 127.0.0.1:11211; run
// with `go test -tags=integration`. Mirrors the teacher's appengine-gated
// memcache test, which also needed a live backend to exercise.
func TestMemcacheStore(t *testing.T) {
	store := New("127.0.0.1:11211")
	kvtest.Exercise(t, store)
}
