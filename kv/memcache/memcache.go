// Package memcache adapts github.com/bradfitz/gomemcache/memcache to the
// webcache.Store interface. It is the production backend: memcache's native
// Get/Gets-via-Item/Add/CompareAndSwap/Set/Delete map almost one-to-one onto
// the get/gets/add/cas/set/delete contract the spec names.
package memcache

import (
	"errors"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/mchtech/webcache"
)

// Store is a webcache.Store backed by a memcache cluster.
type Store struct {
	client *memcache.Client
}

// New returns a Store using the provided memcache server(s) with equal
// weight, the same constructor shape as the teacher's memcache.New.
func New(servers ...string) *Store {
	return NewWithClient(memcache.New(servers...))
}

// NewWithClient returns a Store wrapping an already-constructed client.
func NewWithClient(client *memcache.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(key string) ([]byte, bool) {
	item, err := s.client.Get(key)
	if err != nil {
		return nil, false
	}
	return item.Value, true
}

// Gets returns the value at key along with a token suitable for CAS. The
// token is the *memcache.Item itself, since gomemcache tracks the CAS id on
// the Item rather than exposing it as a standalone value.
func (s *Store) Gets(key string) ([]byte, webcache.Token, bool) {
	item, err := s.client.Get(key)
	if err != nil {
		return nil, nil, false
	}
	return item.Value, item, true
}

func (s *Store) Add(key string, value []byte) (bool, error) {
	err := s.client.Add(&memcache.Item{Key: key, Value: value})
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) CAS(key string, value []byte, token webcache.Token) (bool, error) {
	item, ok := token.(*memcache.Item)
	if !ok || item == nil {
		return false, webcache.ErrNotFound
	}
	item.Value = value
	err := s.client.CompareAndSwap(item)
	if errors.Is(err, memcache.ErrCASConflict) || errors.Is(err, memcache.ErrNotStored) || errors.Is(err, memcache.ErrCacheMiss) {
		return false, webcache.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Set(key string, value []byte) error {
	return s.client.Set(&memcache.Item{Key: key, Value: value})
}

func (s *Store) Delete(key string) error {
	err := s.client.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}
