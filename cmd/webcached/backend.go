package main

import (
	"fmt"

	gomemcache "github.com/bradfitz/gomemcache/memcache"
	"github.com/gomodule/redigo/redis"

	"github.com/mchtech/webcache"
	"github.com/mchtech/webcache/config"
	"github.com/mchtech/webcache/kv/badger"
	"github.com/mchtech/webcache/kv/diskv"
	"github.com/mchtech/webcache/kv/leveldb"
	"github.com/mchtech/webcache/kv/memcache"
	webcacheredis "github.com/mchtech/webcache/kv/redis"
)

// openStore builds the Store named by cfg.KV.Backend. Badger and LevelDB
// open their data directory for the lifetime of the process; the caller is
// expected to keep the binary running for as long as the store is in use.
func openStore(cfg config.KVConfig) (webcache.Store, error) {
	switch cfg.Backend {
	case config.BackendMemcache:
		if len(cfg.Servers) == 0 {
			return nil, fmt.Errorf("kv.servers is required for the memcache backend")
		}
		client := gomemcache.New(cfg.Servers...)
		return memcache.NewWithClient(client), nil

	case config.BackendRedis:
		if cfg.Address == "" {
			return nil, fmt.Errorf("kv.address is required for the redis backend")
		}
		pool := &redis.Pool{
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", cfg.Address)
			},
		}
		return webcacheredis.NewWithPool(pool), nil

	case config.BackendDiskv:
		if cfg.Path == "" {
			return nil, fmt.Errorf("kv.path is required for the diskv backend")
		}
		return diskv.New(cfg.Path), nil

	case config.BackendBadger:
		if cfg.Path == "" {
			return nil, fmt.Errorf("kv.path is required for the badger backend")
		}
		return badger.New(cfg.Path)

	case config.BackendLevelDB:
		if cfg.Path == "" {
			return nil, fmt.Errorf("kv.path is required for the leveldb backend")
		}
		return leveldb.New(cfg.Path)

	default:
		return nil, fmt.Errorf("unknown kv.backend %q", cfg.Backend)
	}
}
