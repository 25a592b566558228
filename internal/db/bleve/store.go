package bleve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgsearch/internal/db"
)

// Config holds embedded index settings.
type Config struct {
	// Dir holds one sub-directory per index. Empty keeps indexes in memory.
	Dir string
}

// Store manages bleve indexes built from db.IndexDefinition.
type Store struct {
	dir    string
	logger *zap.Logger

	mu      sync.RWMutex
	indexes map[string]bleve.Index
}

// NewStore creates an index store. Indexes are opened lazily.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		dir:     cfg.Dir,
		logger:  logger,
		indexes: make(map[string]bleve.Index),
	}, nil
}

// CreateIndex creates an index with a mapping derived from def.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}

	m := buildMapping(def)
	var (
		idx bleve.Index
		err error
	)
	if s.dir == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.New(s.path(def.Name), m)
		if errors.Is(err, bleve.ErrorIndexPathExists) {
			return db.ErrIndexExists
		}
	}
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.indexes[def.Name] = idx
	s.logger.Info("index created", zap.String("index", def.Name), zap.Bool("in_memory", s.dir == ""))
	return nil
}

// DropIndex closes the index and removes its files.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.openLocked(name)
	if err != nil {
		return err
	}
	delete(s.indexes, name)

	if err := idx.Close(); err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	if s.dir != "" {
		if err := os.RemoveAll(s.path(name)); err != nil {
			return &db.Error{Op: db.OpDropIndex, Err: err}
		}
	}
	return nil
}

// IndexExists reports whether the index is open or present on disk.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.openLocked(name); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close closes every open index.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, idx := range s.indexes {
		if err := idx.Close(); err != nil {
			s.logger.Warn("close index", zap.String("index", name), zap.Error(err))
		}
	}
	s.indexes = make(map[string]bleve.Index)
}

func (s *Store) index(name string) (bleve.Index, error) {
	s.mu.RLock()
	idx, ok := s.indexes[name]
	s.mu.RUnlock()
	if ok {
		return idx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(name)
}

// openLocked returns an open index, opening it from disk if needed.
// Callers hold s.mu for writing.
func (s *Store) openLocked(name string) (bleve.Index, error) {
	if idx, ok := s.indexes[name]; ok {
		return idx, nil
	}
	if s.dir == "" {
		return nil, db.ErrIndexNotFound
	}

	idx, err := bleve.Open(s.path(name))
	if err != nil {
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			return nil, db.ErrIndexNotFound
		}
		return nil, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	s.indexes[name] = idx
	return idx, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".bleve")
}
