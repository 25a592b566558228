package pkgsearch

import (
	"context"

	"github.com/kailas-cloud/pkgsearch/internal/domain/pkginfo"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn      func(ctx context.Context, raw string, page params.Pagination) (result.Page, error)
	suggestionsFn func(ctx context.Context, raw string, size *int) ([]result.Result, error)
	explainFn     func(raw string, page params.Pagination) (request.Explanation, error)
}

func (m *mockSearchUC) Search(ctx context.Context, raw string, page params.Pagination) (result.Page, error) {
	return m.searchFn(ctx, raw, page)
}

func (m *mockSearchUC) Suggestions(ctx context.Context, raw string, size *int) ([]result.Result, error) {
	return m.suggestionsFn(ctx, raw, size)
}

func (m *mockSearchUC) Explain(raw string, page params.Pagination) (request.Explanation, error) {
	return m.explainFn(raw, page)
}

// --- packageUseCase mock ---

type mockPackageUC struct {
	getFn  func(ctx context.Context, name string) (pkginfo.Info, error)
	mgetFn func(ctx context.Context, names []string) (map[string]pkginfo.Info, error)
}

func (m *mockPackageUC) Get(ctx context.Context, name string) (pkginfo.Info, error) {
	return m.getFn(ctx, name)
}

func (m *mockPackageUC) MGet(ctx context.Context, names []string) (map[string]pkginfo.Info, error) {
	return m.mgetFn(ctx, names)
}

// --- writers ---

type mockPackageWriter struct {
	ensureFn func(ctx context.Context) (bool, error)
	putFn    func(ctx context.Context, docs []result.Document) error
}

func (m *mockPackageWriter) EnsureIndex(ctx context.Context) (bool, error) { return m.ensureFn(ctx) }

func (m *mockPackageWriter) Put(ctx context.Context, docs []result.Document) error {
	return m.putFn(ctx, docs)
}

type mockMetadataWriter struct {
	putFn func(ctx context.Context, metas map[string]pkginfo.Metadata) error
}

func (m *mockMetadataWriter) Put(ctx context.Context, metas map[string]pkginfo.Metadata) error {
	return m.putFn(ctx, metas)
}

// --- helpers ---

func testClient(searchSvc searchUseCase, pkgSvc packageUseCase) *Client {
	return &Client{searchSvc: searchSvc, pkgSvc: pkgSvc}
}
