//go:build integration

package redis

import (
	"testing"

	"github.com/gomodule/redigo/redis"

	"github.com/mchtech/webcache/kv/kvtest"
)

// TestRedisStore requires a redis listening on 127.0.0.1:6379; run with
// `go test -tags=integration`.
func TestRedisStore(t *testing.T) {
	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", "127.0.0.1:6379")
		},
	}
	defer pool.Close()

	store := NewWithPool(pool)
	kvtest.Exercise(t, store)
}
