// Package leveldb adapts github.com/syndtr/goleveldb/leveldb to the
// webcache.Store interface, as a single-process embedded backend. Like
// kv/diskv, leveldb has no native CAS, so a version is tracked in an
// in-process map guarded by a mutex and written alongside the value in one
// leveldb batch.
package leveldb

import (
	"encoding/binary"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/mchtech/webcache"
)

// Store is a webcache.Store backed by a leveldb.DB.
type Store struct {
	db *leveldb.DB

	mu       sync.Mutex
	versions map[string]int64
}

// New opens (or creates) a leveldb database at path.
func New(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an already-open leveldb.DB.
func NewWithDB(db *leveldb.DB) *Store {
	return &Store{db: db, versions: make(map[string]int64)}
}

func versionKey(key string) []byte {
	return []byte(key + "\x00v")
}

func encodeVersion(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}

func (s *Store) Get(key string) ([]byte, bool) {
	data, err := s.db.Get([]byte(key), nil)
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

	has, err := s.db.Has([]byte(key), nil)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(key), value)
	batch.Put(versionKey(key), encodeVersion(1))
	if err := s.db.Write(batch, nil); err != nil {
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

	has, err := s.db.Has([]byte(key), nil)
	if err != nil {
		return false, err
	}
	if !has || s.versions[key] != version {
		return false, webcache.ErrNotFound
	}

	batch := new(leveldb.Batch)
	batch.Put([]byte(key), value)
	batch.Put(versionKey(key), encodeVersion(version+1))
	if err := s.db.Write(batch, nil); err != nil {
		return false, err
	}
	s.versions[key]++
	return true, nil
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.versions[key] + 1
	batch := new(leveldb.Batch)
	batch.Put([]byte(key), value)
	batch.Put(versionKey(key), encodeVersion(next))
	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	s.versions[key] = next
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.versions, key)

	batch := new(leveldb.Batch)
	batch.Delete([]byte(key))
	batch.Delete(versionKey(key))
	return s.db.Write(batch, nil)
}
