package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// List identifies one of the four pattern lists.
type List string

const (
	PhoneBlacklist List = "phone_blacklist"
	PhoneWhitelist List = "phone_whitelist"
	TextBlacklist  List = "text_blacklist"
	TextWhitelist  List = "text_whitelist"
)

// Lists enumerates every list kind.
var Lists = []List{PhoneBlacklist, PhoneWhitelist, TextBlacklist, TextWhitelist}

func (l List) String() string { return string(l) }

// Store is the generic interface for pattern-list storage.
// It allows for easy swapping of the real database with a mock in tests.
// Put and Delete report whether the call actually changed the list, which
// is what drives "notify only on genuine change" in the remote executor.
type Store interface {
	Contains(ctx context.Context, list List, value string) (bool, error)
	Put(ctx context.Context, list List, value string) (bool, error)
	Delete(ctx context.Context, list List, value string) (bool, error)
	Entries(ctx context.Context, list List) ([]string, error)
	Close() error
}

// --- BADGERDB IMPLEMENTATION (PRODUCTION) ---

// BadgerStore is the production implementation of the Store interface.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to be used as a logger for BadgerDB.
type badgerLogger struct {
	*slog.Logger
}

func (l *badgerLogger) Warningf(f string, v ...any) { l.Warn(fmt.Sprintf(f, v...)) }
func (l *badgerLogger) Errorf(f string, v ...any)   { l.Error(fmt.Sprintf(f, v...)) }
func (l *badgerLogger) Infof(f string, v ...any)    {}
func (l *badgerLogger) Debugf(f string, v ...any)   {}

// NewBadgerStore initializes and returns a new, optimized BadgerStore.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)

	// Pattern entries are tiny; keep them in the faster LSM-tree rather
	// than the separate value log.
	opts.ValueThreshold = 1024

	// Redirect BadgerDB's internal logs to the application's main slog logger.
	opts.Logger = &badgerLogger{slog.Default()}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// Close gracefully closes the database connection.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func key(list List, value string) []byte {
	return []byte(string(list) + ":" + value)
}

// Contains checks whether a value is present in the given list.
func (s *BadgerStore) Contains(ctx context.Context, list List, value string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(list, value))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put inserts a value into the given list. The value is stored as a bare
// key, as only its existence matters. Returns false when the value was
// already present.
func (s *BadgerStore) Put(ctx context.Context, list List, value string) (bool, error) {
	changed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		k := key(list, value)
		_, err := txn.Get(k)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		changed = true
		return txn.Set(k, nil)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// Delete removes a value from the given list. Returns false when the value
// was not present.
func (s *BadgerStore) Delete(ctx context.Context, list List, value string) (bool, error) {
	changed := false
	err := s.db.Update(func(txn *badger.Txn) error {
		k := key(list, value)
		_, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		changed = true
		return txn.Delete(k)
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// Entries returns every value in the given list.
func (s *BadgerStore) Entries(ctx context.Context, list List) ([]string, error) {
	prefix := []byte(string(list) + ":")
	var entries []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().Key()
			entries = append(entries, string(k[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
