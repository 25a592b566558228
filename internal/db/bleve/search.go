package bleve

import (
	"context"
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/pkgsearch/internal/db"
)

// highlightStyle renders fragments with <mark> tags.
const highlightStyle = "html"

// IndexDocuments indexes the documents in one batch, replacing existing ids.
func (s *Store) IndexDocuments(_ context.Context, def *db.IndexDefinition, docs []db.Document) error {
	if len(docs) == 0 {
		return nil
	}
	idx, err := s.index(def.Name)
	if err != nil {
		return err
	}

	batch := idx.NewBatch()
	for _, d := range docs {
		flat, err := flatten(def, d.Source)
		if err != nil {
			return &db.Error{Op: db.OpIndex, Err: fmt.Errorf("%s: %w", d.ID, err)}
		}
		if err := batch.Index(d.ID, flat); err != nil {
			return &db.Error{Op: db.OpIndex, Err: fmt.Errorf("%s: %w", d.ID, err)}
		}
	}
	if err := idx.Batch(batch); err != nil {
		return &db.Error{Op: db.OpIndex, Err: err}
	}
	return nil
}

// Search text-scores the top window candidates and ranks them with the
// query's scoring expression.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.Index == nil || q.Index.Name == "" {
		return nil, errors.New("index name is required")
	}
	if q.Query == nil {
		return nil, errors.New("query is required")
	}

	idx, err := s.index(q.Index.Name)
	if err != nil {
		return nil, err
	}

	bq, err := buildQuery(q.Index, q.Query, textAnalyzer(idx))
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	req := bleve.NewSearchRequestOptions(bq, q.Query.Window(q.Window), 0, false)
	req.Fields = []string{sourceField}

	var highlightField string
	if q.Query.Highlight() {
		if f, ok := q.Index.Field("name", db.IndexFieldText); ok {
			highlightField = f.FieldName()
			req.Highlight = bleve.NewHighlightWithStyle(highlightStyle)
			req.Highlight.AddField(highlightField)
		}
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		src, ok := hit.Fields[sourceField].(string)
		if !ok {
			continue
		}
		e := db.SearchEntry{ID: hit.ID, TextScore: hit.Score, Source: []byte(src)}
		if frags := hit.Fragments[highlightField]; highlightField != "" && len(frags) > 0 {
			e.Highlight = frags[0]
		}
		entries = append(entries, e)
	}

	ranked, err := db.Rank(entries, q.Query)
	if err != nil {
		return nil, err
	}
	return &db.SearchResult{Total: int(res.Total), Entries: ranked}, nil
}

// Lookup returns the stored source of each id, nil where the id is not indexed.
func (s *Store) Lookup(ctx context.Context, def *db.IndexDefinition, ids []string) ([][]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idx, err := s.index(def.Name)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDocIDQuery(ids), len(ids), 0, false)
	req.Fields = []string{sourceField}
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpLookup, Err: err}
	}

	byID := make(map[string][]byte, len(res.Hits))
	for _, hit := range res.Hits {
		if src, ok := hit.Fields[sourceField].(string); ok {
			byID[hit.ID] = []byte(src)
		}
	}

	out := make([][]byte, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out, nil
}
