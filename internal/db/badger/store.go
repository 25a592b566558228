package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgsearch/internal/db"
)

// rootPath is the only JSON path documents are read and written at.
const rootPath = "$"

// Config holds key-value store settings.
type Config struct {
	// Dir is the data directory. Empty keeps data in memory.
	Dir string
}

// Store implements db.JSONStore and db.Pinger over BadgerDB. Documents are
// stored whole; only the root path is supported.
type Store struct {
	db *badger.DB
}

// zapAdapter adapts zap to the badger.Logger interface.
type zapAdapter struct {
	log *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, items ...any)   { a.log.Errorf(msg, items...) }
func (a *zapAdapter) Warningf(msg string, items ...any) { a.log.Warnf(msg, items...) }
func (a *zapAdapter) Infof(msg string, items ...any)    { a.log.Infof(msg, items...) }
func (a *zapAdapter) Debugf(msg string, items ...any)   { a.log.Debugf(msg, items...) }

// Open opens (or creates) a store.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.Dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts.Logger = &zapAdapter{log: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

// Ping fails once the store is closed.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("ping: store is closed")
	}
	return nil
}

// WaitForReady returns immediately for an open store.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// JSONSet stores a JSON document at the given key.
func (s *Store) JSONSet(_ context.Context, key, path string, data []byte) error {
	if err := checkDocument(path, data); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONSetMulti stores multiple documents in one transaction.
func (s *Store) JSONSetMulti(_ context.Context, items []db.JSONSetItem) error {
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if err := checkDocument(item.Path, item.Data); err != nil {
			return &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("key %s: %w", item.Key, err)}
		}
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, item := range items {
			if err := txn.Set([]byte(item.Key), item.Data); err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONGet retrieves a document by key.
func (s *Store) JSONGet(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	return out, nil
}

// JSONMGet reads multiple documents in one read transaction, nil where absent.
func (s *Store) JSONMGet(_ context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	out := make([][]byte, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
			if out[i], err = item.ValueCopy(nil); err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONMGet, Err: err}
	}
	return out, nil
}

// Del removes a key. Removing an absent key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

func checkDocument(path string, data []byte) error {
	if path != rootPath {
		return fmt.Errorf("unsupported path %q", path)
	}
	if !json.Valid(data) {
		return errors.New("invalid JSON document")
	}
	return nil
}
