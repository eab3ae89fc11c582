// Package redis adapts github.com/gomodule/redigo/redis to the
// webcache.Store interface. Redis has no native compare-and-swap verb, so
// CAS is synthesized with small Lua scripts that compare a companion
// version counter before writing — the same "get tokens from gets, only
// honor the CAS write if the token still matches" contract the spec names,
// just implemented server-side instead of relying on a client-visible CAS id.
package redis

import (
	"strconv"

	"github.com/gomodule/redigo/redis"

	"github.com/mchtech/webcache"
)

var (
	addScript = redis.NewScript(1, `
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[1] .. ':v', 1)
return 1
`)

	getsScript = redis.NewScript(1, `
local v = redis.call('GET', KEYS[1])
if v == false then
	return false
end
local ver = redis.call('GET', KEYS[1] .. ':v')
return {v, ver}
`)

	casScript = redis.NewScript(1, `
local cur = redis.call('GET', KEYS[1] .. ':v')
if cur == false then
	return -1
end
if cur ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('INCR', KEYS[1] .. ':v')
return 1
`)

	setScript = redis.NewScript(1, `
redis.call('SET', KEYS[1], ARGV[1])
redis.call('INCR', KEYS[1] .. ':v')
return 1
`)
)

// Store is a webcache.Store backed by a redis.Pool.
type Store struct {
	pool *redis.Pool
}

// NewWithPool returns a Store using the provided redigo connection pool.
func NewWithPool(pool *redis.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) conn() redis.Conn {
	return s.pool.Get()
}

func (s *Store) Get(key string) ([]byte, bool) {
	conn := s.conn()
	defer conn.Close()

	value, err := redis.Bytes(conn.Do("GET", key))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (s *Store) Gets(key string) ([]byte, webcache.Token, bool) {
	conn := s.conn()
	defer conn.Close()

	reply, err := redis.Values(getsScript.Do(conn, key))
	if err != nil {
		return nil, nil, false
	}

	var value []byte
	var version int64
	if _, err := redis.Scan(reply, &value, &version); err != nil {
		return nil, nil, false
	}
	return value, version, true
}

func (s *Store) Add(key string, value []byte) (bool, error) {
	conn := s.conn()
	defer conn.Close()

	added, err := redis.Int(addScript.Do(conn, key, value))
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (s *Store) CAS(key string, value []byte, token webcache.Token) (bool, error) {
	version, ok := token.(int64)
	if !ok {
		return false, webcache.ErrNotFound
	}

	conn := s.conn()
	defer conn.Close()

	result, err := redis.Int(casScript.Do(conn, key, value, strconv.FormatInt(version, 10)))
	if err != nil {
		return false, err
	}
	switch result {
	case 1:
		return true, nil
	case -1, 0:
		return false, webcache.ErrNotFound
	default:
		return false, nil
	}
}

func (s *Store) Set(key string, value []byte) error {
	conn := s.conn()
	defer conn.Close()

	_, err := setScript.Do(conn, key, value)
	return err
}

func (s *Store) Delete(key string) error {
	conn := s.conn()
	defer conn.Close()

	_, err := conn.Do("DEL", key, key+":v")
	return err
}
