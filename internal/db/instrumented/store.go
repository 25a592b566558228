// Package instrumented decorates a db.Store with request metrics and error logging.
package instrumented

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/metrics"
)

// Store wraps a db.Store and records duration and errors per operation.
type Store struct {
	inner  db.Store
	driver string
	logger *zap.Logger
}

var _ db.Store = (*Store)(nil)

// New wraps inner. driver labels every metric.
func New(inner db.Store, driver string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{inner: inner, driver: driver, logger: logger}
}

// observe records one operation. Missing keys and indexes are expected
// outcomes, not store errors.
func (s *Store) observe(op string, start time.Time, err error) {
	metrics.IndexRequestDuration.WithLabelValues(s.driver, op).Observe(time.Since(start).Seconds())
	if err == nil || errors.Is(err, db.ErrKeyNotFound) ||
		errors.Is(err, db.ErrIndexNotFound) || errors.Is(err, db.ErrIndexExists) {
		return
	}
	metrics.IndexErrorsTotal.WithLabelValues(s.driver, op).Inc()
	s.logger.Error("Store request failed",
		zap.String("driver", s.driver),
		zap.String("op", op),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
}

// Ping delegates without recording.
func (s *Store) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// WaitForReady delegates to the wrapped store.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return s.inner.WaitForReady(ctx, timeout)
}

// Close delegates to the wrapped store.
func (s *Store) Close() { s.inner.Close() }

func (s *Store) JSONSet(ctx context.Context, key, path string, data []byte) (err error) {
	defer func(start time.Time) { s.observe(db.OpJSONSet, start, err) }(time.Now())
	return s.inner.JSONSet(ctx, key, path, data)
}

func (s *Store) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) (err error) {
	defer func(start time.Time) { s.observe(db.OpJSONSet, start, err) }(time.Now())
	return s.inner.JSONSetMulti(ctx, items)
}

func (s *Store) JSONGet(ctx context.Context, key string) (_ []byte, err error) {
	defer func(start time.Time) { s.observe(db.OpJSONGet, start, err) }(time.Now())
	return s.inner.JSONGet(ctx, key)
}

func (s *Store) JSONMGet(ctx context.Context, keys []string) (_ [][]byte, err error) {
	defer func(start time.Time) { s.observe(db.OpJSONMGet, start, err) }(time.Now())
	return s.inner.JSONMGet(ctx, keys)
}

func (s *Store) Del(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { s.observe(db.OpDel, start, err) }(time.Now())
	return s.inner.Del(ctx, key)
}

func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) (err error) {
	defer func(start time.Time) { s.observe(db.OpCreateIndex, start, err) }(time.Now())
	return s.inner.CreateIndex(ctx, def)
}

func (s *Store) DropIndex(ctx context.Context, name string) (err error) {
	defer func(start time.Time) { s.observe(db.OpDropIndex, start, err) }(time.Now())
	return s.inner.DropIndex(ctx, name)
}

func (s *Store) IndexExists(ctx context.Context, name string) (_ bool, err error) {
	defer func(start time.Time) { s.observe(db.OpIndexInfo, start, err) }(time.Now())
	return s.inner.IndexExists(ctx, name)
}

func (s *Store) IndexDocuments(ctx context.Context, def *db.IndexDefinition, docs []db.Document) (err error) {
	defer func(start time.Time) { s.observe(db.OpIndex, start, err) }(time.Now())
	return s.inner.IndexDocuments(ctx, def, docs)
}

func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (_ *db.SearchResult, err error) {
	defer func(start time.Time) { s.observe(db.OpSearch, start, err) }(time.Now())
	return s.inner.Search(ctx, q)
}

func (s *Store) Lookup(ctx context.Context, def *db.IndexDefinition, ids []string) (_ [][]byte, err error) {
	defer func(start time.Time) { s.observe(db.OpLookup, start, err) }(time.Now())
	return s.inner.Lookup(ctx, def, ids)
}
