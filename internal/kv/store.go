// ABOUTME: Badger KV store implementing the activity Repository.
// ABOUTME: Records are JSON values under typed key prefixes; queries filter in memory.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/pace/internal/query"
	"github.com/harperreed/pace/internal/storage"
)

const (
	WorkoutPrefix   = "workout:"
	DistancePrefix  = "distance:"
	HeartRatePrefix = "heartrate:"
	RoutePrefix     = "route:"
	PointPrefix     = "point:"
)

// DefaultBatchSize is how many records a query delivers per batch.
const DefaultBatchSize = 500

// Store wraps a Badger database.
type Store struct {
	db        *badger.DB
	batchSize int
	closed    bool
	mu        sync.RWMutex
}

var _ storage.Repository = (*Store)(nil)

// Open opens or creates a Badger store in dir.
func Open(dir string, batchSize int) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", classify(err))
	}
	return open(badger.DefaultOptions(dir).WithLogger(nil), batchSize)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory(batchSize int) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil), batchSize)
}

func open(opts badger.Options, batchSize int) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", classify(err))
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Store{db: db, batchSize: batchSize}, nil
}

// Close closes the KV database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// set stores values under their keys. A write batch splits large imports
// across as many transactions as Badger needs.
func (s *Store) set(entries map[string][]byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return query.ErrStoreUnavailable
	}

	wb := s.db.NewWriteBatch()
	for key, data := range entries {
		if err := wb.Set([]byte(key), data); err != nil {
			wb.Cancel()
			return classify(err)
		}
	}
	return classify(wb.Flush())
}

// setNew stores an entry, failing if the key already exists.
func (s *Store) setNew(key string, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return query.ErrStoreUnavailable
	}

	return classify(s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err == nil {
			return fmt.Errorf("duplicate key %s", key)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set([]byte(key), data)
	}))
}

// deletePrefixes removes every key under any of the prefixes.
func (s *Store) deletePrefixes(prefixes ...string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return query.ErrStoreUnavailable
	}

	return classify(s.db.Update(func(txn *badger.Txn) error {
		var keys [][]byte
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		for _, prefix := range prefixes {
			p := []byte(prefix)
			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
			}
		}
		it.Close()

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	}))
}

// listByPrefix returns all values whose keys start with prefix, in key order.
func (s *Store) listByPrefix(prefix string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, query.ErrStoreUnavailable
	}

	var values [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return values, nil
}

// keysByPrefix returns all keys that start with prefix.
func (s *Store) keysByPrefix(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, query.ErrStoreUnavailable
	}

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return keys, nil
}

// resolveID finds the single full ID under prefix that starts with idOrPrefix.
func (s *Store) resolveID(prefix, idOrPrefix string) (string, error) {
	keys, err := s.keysByPrefix(prefix + strings.ToLower(idOrPrefix))
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: %s", query.ErrNoWorkoutsFound, idOrPrefix)
	}
	if len(keys) > 1 {
		return "", fmt.Errorf("%w %s: matches multiple records", query.ErrAmbiguousWorkout, idOrPrefix)
	}
	return strings.TrimPrefix(keys[0], prefix), nil
}

// decodeAll unmarshals JSON values. A value that does not decode means the
// store is corrupt and fails the whole read.
func decodeAll[T any](values [][]byte) ([]T, error) {
	out := make([]T, 0, len(values))
	for i, data := range values {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrDBClosed):
		return fmt.Errorf("%w: %v", query.ErrStoreUnavailable, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %v", query.ErrNoPermission, err)
	}
	return err
}
