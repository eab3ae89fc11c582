// Package diskv adapts github.com/peterbourgon/diskv to the webcache.Store
// interface, as a single-process development/test backend. Diskv has no
// notion of a CAS token, so one is synthesized with an in-process version
// map guarded by a mutex — adequate for a single process, explicitly not a
// substitute for the distributed add/cas primitive the production backends
// provide.
package diskv

import (
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/peterbourgon/diskv"

	"github.com/mchtech/webcache"
)

// Store is a webcache.Store backed by a diskv.Diskv, the same on-disk
// layout as the teacher's diskcache.Cache.
type Store struct {
	d *diskv.Diskv

	mu       sync.Mutex
	versions map[string]int64
}

// New returns a Store that will store files under basePath.
func New(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 100 * 1024 * 1024,
		}),
		versions: make(map[string]int64),
	}
}

func keyToFilename(key string) string {
	h := md5.New()
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) Get(key string) ([]byte, bool) {
	data, err := s.d.Read(keyToFilename(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *Store) Gets(key string) ([]byte, webcache.Token, bool) {
	data, ok := s.Get(key)
	if !ok {
		return nil, nil, false
	}

	s.mu.Lock()
	version := s.versions[key]
	s.mu.Unlock()

	return data, version, true
}

func (s *Store) Add(key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.d.Has(keyToFilename(key)) {
		return false, nil
	}
	if err := s.d.Write(keyToFilename(key), value); err != nil {
		return false, err
	}
	s.versions[key] = 1
	return true, nil
}

func (s *Store) CAS(key string, value []byte, token webcache.Token) (bool, error) {
	version, ok := token.(int64)
	if !ok {
		return false, webcache.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.d.Has(keyToFilename(key)) {
		return false, webcache.ErrNotFound
	}
	if s.versions[key] != version {
		return false, webcache.ErrNotFound
	}
	if err := s.d.Write(keyToFilename(key), value); err != nil {
		return false, err
	}
	s.versions[key]++
	return true, nil
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.d.Write(keyToFilename(key), value); err != nil {
		return err
	}
	s.versions[key]++
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.versions, key)
	return s.d.Erase(keyToFilename(key))
}
