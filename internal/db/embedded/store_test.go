package embedded

import (
	"context"
	"testing"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
)

func TestStore_RoutesDocumentsAndIndexes(t *testing.T) {
	s, err := Open(Config{Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.WaitForReady(ctx, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.JSONSet(ctx, "info:react", "$", []byte(`{"collected":{}}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs, err := s.JSONMGet(ctx, []string{"info:react"})
	if err != nil || docs[0] == nil {
		t.Fatalf("JSONMGet = %q, %v", docs, err)
	}

	def := db.NewIndex("pkg-idx").OnJSON().Text("$.name", "name_text").Tag("$.name", "name").MustBuild()
	if err := s.CreateIndex(ctx, def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := s.IndexExists(ctx, "pkg-idx"); !ok {
		t.Fatal("expected index to exist")
	}
	err = s.IndexDocuments(ctx, def, []db.Document{
		{ID: "react", Source: []byte(`{"name":"react","score":{"detail":{"quality":1,"popularity":1,"maintenance":1}}}`)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q, err := request.NewCompiler(request.DefaultOptions()).CompileSuggestions("reac", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := s.Search(ctx, &db.SearchQuery{Index: def, Query: &q})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Entries[0].ID != "react" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := s.JSONGet(ctx, "react"); err == nil {
		t.Error("indexed documents must not leak into the document store")
	}
}
