// Package badger adapts github.com/dgraph-io/badger/v2 to the
// webcache.Store interface, as a single-process embedded backend. Badger
// transactions give us atomic add/cas for free: a version counter is kept
// alongside each key and checked-and-bumped within the same transaction that
// writes the value.
package badger

import (
	"encoding/binary"

	badger "github.com/dgraph-io/badger/v2"

	"github.com/mchtech/webcache"
)

// Store is a webcache.Store backed by a badger.DB.
type Store struct {
	db *badger.DB
}

// New opens (or creates) a badger database at path.
func New(path string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open badger.DB.
func NewWithDB(db *badger.DB) *Store {
	return &Store{db: db}
}

func versionKey(key string) []byte {
	return []byte(key + "\x00v")
}

func (s *Store) Get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return value, true
}

func (s *Store) Gets(key string) ([]byte, webcache.Token, bool) {
	var value []byte
	var version int64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		if value, err = item.ValueCopy(nil); err != nil {
			return err
		}

		verItem, err := txn.Get(versionKey(key))
		if err != nil {
			return nil // missing version, treat as 0
		}
		raw, err := verItem.ValueCopy(nil)
		if err != nil {
			return err
		}
		version = int64(binary.BigEndian.Uint64(raw))
		return nil
	})
	if err != nil {
		return nil, nil, false
	}
	return value, version, true
}

func (s *Store) Add(key string, value []byte) (bool, error) {
	added := false
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set([]byte(key), value); err != nil {
			return err
		}
		if err := txn.Set(versionKey(key), encodeVersion(1)); err != nil {
			return err
		}
		added = true
		return nil
	})
	return added, err
}

func (s *Store) CAS(key string, value []byte, token webcache.Token) (bool, error) {
	version, ok := token.(int64)
	if !ok {
		return false, webcache.ErrNotFound
	}

	ok2 := false
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}

		var cur int64
		verItem, err := txn.Get(versionKey(key))
		if err == nil {
			raw, err := verItem.ValueCopy(nil)
			if err != nil {
				return err
			}
			cur = int64(binary.BigEndian.Uint64(raw))
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if cur != version {
			return nil
		}
		if err := txn.Set([]byte(key), value); err != nil {
			return err
		}
		if err := txn.Set(versionKey(key), encodeVersion(cur+1)); err != nil {
			return err
		}
		ok2 = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !ok2 {
		return false, webcache.ErrNotFound
	}
	return true, nil
}

func (s *Store) Set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var cur int64
		if verItem, err := txn.Get(versionKey(key)); err == nil {
			raw, err := verItem.ValueCopy(nil)
			if err != nil {
				return err
			}
			cur = int64(binary.BigEndian.Uint64(raw))
		}
		if err := txn.Set([]byte(key), value); err != nil {
			return err
		}
		return txn.Set(versionKey(key), encodeVersion(cur+1))
	})
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(key)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Delete(versionKey(key)); err != nil && err != badger.ErrKeyNotFound {
			return err
		}
		return nil
	})
}

func encodeVersion(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}
