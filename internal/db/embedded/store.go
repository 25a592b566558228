// Package embedded is a single-process db.Store: documents live in BadgerDB
// and search indexes in bleve.
package embedded

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/db/badger"
	"github.com/kailas-cloud/pkgsearch/internal/db/bleve"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds embedded store settings.
type Config struct {
	// Dir is the data directory. Empty keeps everything in memory.
	Dir string
}

// Store routes document operations to the key-value store and index
// operations to the index store.
type Store struct {
	docs    *badger.Store
	indexes *bleve.Store
}

// Open opens both stores under cfg.Dir.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	var kvDir, indexDir string
	if cfg.Dir != "" {
		kvDir = filepath.Join(cfg.Dir, "kv")
		indexDir = filepath.Join(cfg.Dir, "index")
	}

	docs, err := badger.Open(badger.Config{Dir: kvDir}, logger)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	indexes, err := bleve.NewStore(bleve.Config{Dir: indexDir}, logger)
	if err != nil {
		docs.Close()
		return nil, fmt.Errorf("open index store: %w", err)
	}
	return &Store{docs: docs, indexes: indexes}, nil
}

// Ping checks the document store.
func (s *Store) Ping(ctx context.Context) error { return s.docs.Ping(ctx) }

// WaitForReady returns once the document store is open.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return s.docs.WaitForReady(ctx, timeout)
}

// Close closes the indexes, then the document store.
func (s *Store) Close() {
	s.indexes.Close()
	s.docs.Close()
}

func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) error {
	return s.docs.JSONSet(ctx, key, path, data)
}

func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	return s.docs.JSONSetMulti(ctx, items)
}

func (s *Store) JSONGet(ctx context.Context, key string) ([]byte, error) {
	return s.docs.JSONGet(ctx, key)
}

func (s *Store) JSONMGet(ctx context.Context, keys []string) ([][]byte, error) {
	return s.docs.JSONMGet(ctx, keys)
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.docs.Del(ctx, key)
}

func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	return s.indexes.CreateIndex(ctx, def)
}

func (s *Store) DropIndex(ctx context.Context, name string) error {
	return s.indexes.DropIndex(ctx, name)
}

func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	return s.indexes.IndexExists(ctx, name)
}

func (s *Store) IndexDocuments(ctx context.Context, def *db.IndexDefinition, docs []db.Document) error {
	return s.indexes.IndexDocuments(ctx, def, docs)
}

func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	return s.indexes.Search(ctx, q)
}

func (s *Store) Lookup(ctx context.Context, def *db.IndexDefinition, ids []string) ([][]byte, error) {
	return s.indexes.Lookup(ctx, def, ids)
}
