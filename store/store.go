// Package store provides the shared persistent key-value layer.
//
// Values are stored as JSON under string keys. Reads never fail: a
// missing key or a malformed value yields the type's zero value, which
// is indistinguishable from "nothing saved yet". Writes replace the
// whole value under a key; callers that want to mutate a collection do
// read-modify-write, and concurrent writers race with last-write-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
)

// Store is a badger-backed durable KV store. One Store is shared by
// every view in the process; views observe each other's writes through
// Watch.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the backing store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Read decodes the JSON value under key into a T. A missing key or a
// value that fails to decode yields T's zero value; Read never reports
// an error to the caller.
func Read[T any](s *Store, key string) T {
	var v T
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			slog.Debug("store read degraded to default", "key", key, "error", err)
		}
		var zero T
		return zero
	}
	return v
}

// Write encodes v as JSON and replaces the whole value under key.
func (s *Store) Write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// ReadString returns the raw string stored under key, or "" when the
// key is absent. Used for the scalar session fields and ad-hoc flags.
func (s *Store) ReadString(key string) string {
	var v string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v = string(val)
			return nil
		})
	})
	if err != nil {
		return ""
	}
	return v
}

// WriteString stores a raw string under key.
func (s *Store) WriteString(key, val string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(val))
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// ReadBool interprets the value under key as a boolean flag. Anything
// other than the literal "true" is false.
func (s *Store) ReadBool(key string) bool {
	return s.ReadString(key) == "true"
}

// WriteBool stores a boolean flag under key.
func (s *Store) WriteBool(key string, val bool) error {
	if val {
		return s.WriteString(key, "true")
	}
	return s.WriteString(key, "false")
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Watch delivers change notifications for every write or delete to the
// store, including those performed by other views sharing this Store.
// Notifications are asynchronous and carry only the changed key names,
// never values: watchers must re-read. Watch returns immediately; the
// subscription runs until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, fn func(keys []string)) {
	go func() {
		matches := []pb.Match{{Prefix: nil}}
		err := s.db.Subscribe(ctx, func(kvs *badger.KVList) error {
			keys := make([]string, 0, len(kvs.Kv))
			for _, kv := range kvs.Kv {
				keys = append(keys, string(kv.Key))
			}
			fn(keys)
			return nil
		}, matches)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("store watch ended", "error", err)
		}
	}()
}
