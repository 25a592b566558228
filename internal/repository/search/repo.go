package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
)

// store is the consumer interface for package search (ISP).
type store interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexDocuments(ctx context.Context, def *db.IndexDefinition, docs []db.Document) error
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository over the package index.
type Repo struct {
	store  store
	index  *db.IndexDefinition
	window int
}

// New creates a search repository. window is the number of top text-scored
// candidates the scoring expression re-ranks.
func New(s store, index *db.IndexDefinition, window int) *Repo {
	return &Repo{store: s, index: index, window: window}
}

// Index returns the package index definition.
func (r *Repo) Index() *db.IndexDefinition { return r.index }

// Search runs a compiled query and decodes the ranked page.
func (r *Repo) Search(ctx context.Context, q *request.Query) (result.Page, error) {
	sr, err := r.store.Search(ctx, &db.SearchQuery{Index: r.index, Query: q, Window: r.window})
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: search %s: %w", domain.ErrUpstreamUnavailable, r.index.Name, err)
	}
	if sr == nil {
		return result.NewPage(0, nil), nil
	}

	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		var doc result.Document
		if err := json.Unmarshal(e.Source, &doc); err != nil {
			return result.Page{}, fmt.Errorf("decode package %s: %w", e.ID, err)
		}
		hits = append(hits, result.Hit{Document: doc, SearchScore: e.Score, Highlight: e.Highlight})
	}
	return result.NewPage(sr.Total, hits), nil
}

// IndexReady reports whether the package index exists.
func (r *Repo) IndexReady(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.index.Name)
	if err != nil {
		return false, fmt.Errorf("%w: check index %s: %w", domain.ErrUpstreamUnavailable, r.index.Name, err)
	}
	return ok, nil
}

// EnsureIndex creates the package index when it does not exist yet.
// Returns true if the index was created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.index.Name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.index.Name, err)
	}
	if exists {
		return false, nil
	}
	if err := r.store.CreateIndex(ctx, r.index); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", r.index.Name, err)
	}
	return true, nil
}

// Put indexes package documents, replacing existing ones by name.
func (r *Repo) Put(ctx context.Context, docs []result.Document) error {
	if len(docs) == 0 {
		return nil
	}
	out := make([]db.Document, len(docs))
	for i := range docs {
		data, err := json.Marshal(&docs[i])
		if err != nil {
			return fmt.Errorf("marshal package %s: %w", docs[i].Name, err)
		}
		out[i] = db.Document{ID: docs[i].Name, Source: data}
	}
	if err := r.store.IndexDocuments(ctx, r.index, out); err != nil {
		return fmt.Errorf("index %d packages: %w", len(docs), err)
	}
	return nil
}
