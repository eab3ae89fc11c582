// Package config loads webcached's YAML configuration file: the listen
// address, the origin server's address, which KV backend to bind the cache
// to, and the cache's own tunables (spec §9's Config fields).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mchtech/webcache"
)

// Backend names recognized under kv.backend.
const (
	BackendMemcache = "memcache"
	BackendRedis    = "redis"
	BackendDiskv    = "diskv"
	BackendBadger   = "badger"
	BackendLevelDB  = "leveldb"
)

// File is the top-level shape of webcached.yaml.
type File struct {
	Listen string       `yaml:"listen"`
	Origin OriginConfig `yaml:"origin"`
	KV     KVConfig     `yaml:"kv"`
	Cache  CacheConfig  `yaml:"cache"`
}

// OriginConfig describes the backing web server.
type OriginConfig struct {
	BaseURL        string        `yaml:"base_url"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	MaxConcurrent  int64         `yaml:"max_concurrent"`
}

// KVConfig selects and parametrizes one of the kv/* store backends.
type KVConfig struct {
	Backend string `yaml:"backend"`

	// Memcache
	Servers []string `yaml:"servers"`

	// Redis
	Address string `yaml:"address"`

	// Diskv / LevelDB / Badger
	Path string `yaml:"path"`
}

// CacheConfig mirrors webcache.Config, expressed as YAML-friendly types
// (seconds as float64 rather than time.Duration, matching the original's
// plain-number constants). REQUEST_TIMEOUT is configured separately, under
// Origin, since it bounds the origin fetch rather than the cache logic.
type CacheConfig struct {
	SleepPollInterval     float64 `yaml:"sleep_poll_interval"`
	SleepMultiplyInterval int     `yaml:"sleep_multiply_interval"`
	SleepMaxSeconds       int     `yaml:"sleep_max_seconds"`
	UpdateMaxAttempts     int     `yaml:"update_max_attempts"`
	ExpireSecs            float64 `yaml:"expire_secs"`
	DropNotOKStatus       bool    `yaml:"drop_not_ok_status"`
}

// Default returns the File populated with the spec's documented defaults,
// ready to be overridden field-by-field by a loaded YAML document.
func Default() File {
	return File{
		Listen: ":8080",
		Origin: OriginConfig{
			BaseURL:        "http://127.0.0.1",
			ConnectTimeout: 500 * time.Millisecond,
			ReadTimeout:    15 * time.Second,
		},
		KV: KVConfig{
			Backend: BackendDiskv,
			Path:    "./webcache-data",
		},
		Cache: CacheConfig{
			SleepPollInterval:     0.5,
			SleepMultiplyInterval: 5,
			SleepMaxSeconds:       30,
			UpdateMaxAttempts:     20,
			ExpireSecs:            30,
			DropNotOKStatus:       true,
		},
	}
}

// Load reads and parses the YAML file at path, starting from Default() and
// letting the document override whichever fields it sets.
func Load(path string) (File, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ToCacheConfig converts the YAML cache section into webcache.Config.
func (f File) ToCacheConfig() webcache.Config {
	c := f.Cache
	return webcache.Config{
		SleepPollInterval:     c.SleepPollInterval,
		SleepMultiplyInterval: c.SleepMultiplyInterval,
		SleepMaxSeconds:       c.SleepMaxSeconds,
		UpdateMaxAttempts:     c.UpdateMaxAttempts,
		ExpireSecs:            c.ExpireSecs,
		DropNotOKStatus:       c.DropNotOKStatus,
	}
}
