package content

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

var keyPrefix = []byte("motion/")

// BadgerConfig configures a [BadgerStore].
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// Logger receives Badger's own log output. Nil disables it.
	Logger *slog.Logger
}

// BadgerStore keeps motions in an embedded Badger database. The commit
// version of each entry orders Keys.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func OpenBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func dbKey(key string) []byte {
	return append(slices.Clip(keyPrefix), key...)
}

func (s *BadgerStore) Get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return data, err
}

func (s *BadgerStore) Put(key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dbKey(key), data)
	})
}

func (s *BadgerStore) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(dbKey(key)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %q", ErrNotFound, key)
			}
			return err
		}
		return txn.Delete(dbKey(key))
	})
}

// Rename moves from to to in a single transaction.
func (s *BadgerStore) Rename(from, to string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(from))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %q", ErrNotFound, from)
		}
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Set(dbKey(to), data); err != nil {
			return err
		}
		return txn.Delete(dbKey(from))
	})
}

func (s *BadgerStore) Keys() ([]string, error) {
	type entry struct {
		key     string
		version uint64
	}
	var entries []entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			k := item.Key()[len(keyPrefix):]
			entries = append(entries, entry{string(k), item.Version()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.version, a.version); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
