package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	indexExistsFn    func(ctx context.Context, name string) (bool, error)
	createIndexFn    func(ctx context.Context, def *db.IndexDefinition) error
	indexDocumentsFn func(ctx context.Context, def *db.IndexDefinition, docs []db.Document) error
	searchFn         func(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexDocuments(ctx context.Context, def *db.IndexDefinition, docs []db.Document) error {
	if m.indexDocumentsFn != nil {
		return m.indexDocumentsFn(ctx, def, docs)
	}
	return nil
}

func (m *mockStore) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, PackageIndex("pkgsearch:packages", "pkgsearch:"), 100)
	return repo, ms
}

func compile(t *testing.T, raw string) *request.Query {
	t.Helper()
	q, err := request.NewCompiler(request.DefaultOptions()).Compile(raw, params.Pagination{})
	if err != nil {
		t.Fatalf("compile %q: %v", raw, err)
	}
	return &q
}
