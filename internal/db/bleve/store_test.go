package bleve

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
)

// testIndex mirrors the package index layout.
func testIndex() *db.IndexDefinition {
	return db.NewIndex("pkg-idx").
		OnJSON().
		Prefix("pkg:").
		Text("$.name", "name_text").
		Text("$.description", "description").
		Text("$.keywords[*]", "keywords_text").
		Tag("$.name", "name").
		Tag("$.scope", "scope").
		Tag("$.keywords[*]", "keywords").
		Tag("$.author.name", "author_name").
		Tag("$.author.username", "author_username").
		Tag("$.author.email", "author_email").
		Tag("$.maintainers[*].username", "maintainers_username").
		Tag("$.maintainers[*].email", "maintainers_email").
		Marker("$.flags.deprecated", "flags_deprecated").
		Marker("$.flags.unstable", "flags_unstable").
		NumericMarker("$.flags.insecure", "flags_insecure").
		Numeric("$.score.final", "score").
		MustBuild()
}

var fixtures = []db.Document{
	{ID: "react", Source: []byte(`{"name":"react","scope":"unscoped","description":"React is a JavaScript library for building user interfaces.","keywords":["react"],"author":{"name":"Facebook"},"maintainers":[{"username":"gaearon","email":"dan@example.com"}],"score":{"final":0.8,"detail":{"quality":0.8,"popularity":0.9,"maintenance":0.9}}}`)},
	{ID: "react-dom", Source: []byte(`{"name":"react-dom","scope":"unscoped","description":"React package for working with the DOM.","keywords":["react","dom"],"maintainers":[{"username":"gaearon"}],"score":{"final":0.7,"detail":{"quality":0.7,"popularity":0.8,"maintenance":0.9}}}`)},
	{ID: "@babel/core", Source: []byte(`{"name":"@babel/core","scope":"babel","description":"Babel compiler core.","keywords":["babel","compiler"],"author":{"username":"sebmck"},"score":{"final":0.6,"detail":{"quality":0.6,"popularity":0.7,"maintenance":0.8}}}`)},
	{ID: "left-pad", Source: []byte(`{"name":"left-pad","scope":"unscoped","description":"String left pad","keywords":["pad","string"],"flags":{"deprecated":"use String.prototype.padStart()","insecure":1},"score":{"final":0.3,"detail":{"quality":0.3,"popularity":0.4,"maintenance":0.1}}}`)},
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(s.Close)

	ctx := context.Background()
	if err := s.CreateIndex(ctx, testIndex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.IndexDocuments(ctx, testIndex(), fixtures); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func search(t *testing.T, s *Store, raw string) *db.SearchResult {
	t.Helper()
	q, err := request.NewCompiler(request.DefaultOptions()).Compile(raw, params.Pagination{})
	if err != nil {
		t.Fatalf("compile %q: %v", raw, err)
	}
	res, err := s.Search(context.Background(), &db.SearchQuery{Index: testIndex(), Query: &q, Window: 50})
	if err != nil {
		t.Fatalf("search %q: %v", raw, err)
	}
	return res
}

func ids(res *db.SearchResult) []string {
	out := make([]string, len(res.Entries))
	for i, e := range res.Entries {
		out[i] = e.ID
	}
	return out
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestCreateIndex_Twice(t *testing.T) {
	s := newTestStore(t)
	err := s.CreateIndex(context.Background(), testIndex())
	if !errors.Is(err, db.ErrIndexExists) {
		t.Fatalf("expected ErrIndexExists, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.IndexExists(ctx, "pkg-idx")
	if err != nil || !ok {
		t.Fatalf("IndexExists = %v, %v", ok, err)
	}
	ok, err = s.IndexExists(ctx, "other")
	if err != nil || ok {
		t.Fatalf("IndexExists(other) = %v, %v", ok, err)
	}
}

func TestDropIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.DropIndex(ctx, "pkg-idx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.DropIndex(ctx, "pkg-idx"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestOnDiskIndex_Reopens(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CreateIndex(ctx, testIndex()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.IndexDocuments(ctx, testIndex(), fixtures[:1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Close()

	s2, err := NewStore(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s2.Close()

	docs, err := s2.Lookup(ctx, testIndex(), []string{"react"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs[0] == nil {
		t.Fatal("expected react to survive reopen")
	}
}

func TestSearch_ExactMatchFirst(t *testing.T) {
	s := newTestStore(t)
	res := search(t, s, "react")
	got := ids(res)
	if len(got) < 2 || got[0] != "react" {
		t.Fatalf("order = %v, want react first", got)
	}
	if !contains(got, "react-dom") {
		t.Errorf("expected react-dom in %v", got)
	}
	if contains(got, "left-pad") {
		t.Errorf("left-pad must not match react: %v", got)
	}
}

func TestSearch_TermsSplitAcrossFields(t *testing.T) {
	s := newTestStore(t)
	doc := db.Document{ID: "cross-spawn", Source: []byte(`{"name":"cross-spawn","scope":"unscoped","description":"Child process spawning that works on Windows.","keywords":["exec"],"score":{"final":0.5,"detail":{"quality":0.5,"popularity":0.5,"maintenance":0.5}}}`)}
	if err := s.IndexDocuments(context.Background(), testIndex(), []db.Document{doc}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, raw := range []string{"cross windows", "exec windows", "cross the windows"} {
		t.Run(raw, func(t *testing.T) {
			got := ids(search(t, s, raw))
			if !contains(got, "cross-spawn") {
				t.Errorf("expected cross-spawn in %v", got)
			}
		})
	}

	if got := ids(search(t, s, "cross babel")); len(got) != 0 {
		t.Errorf("every term is required, got %v", got)
	}
}

func TestSearch_Prefix(t *testing.T) {
	s := newTestStore(t)
	got := ids(search(t, s, "bab"))
	if !contains(got, "@babel/core") {
		t.Errorf("prefix search missed @babel/core: %v", got)
	}
}

func TestSearch_Filters(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		raw     string
		want    []string
		exclude []string
	}{
		{"scope:babel", []string{"@babel/core"}, []string{"react"}},
		{"keywords:dom", []string{"react-dom"}, []string{"react"}},
		{"keywords:react,-dom", []string{"react"}, []string{"react-dom"}},
		{"maintainer:gaearon", []string{"react", "react-dom"}, []string{"left-pad"}},
		{"author:facebook", []string{"react"}, []string{"react-dom"}},
		{"is:deprecated", []string{"left-pad"}, []string{"react"}},
		{"pad not:deprecated", nil, []string{"left-pad"}},
		{"is:insecure", []string{"left-pad"}, []string{"@babel/core"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ids(search(t, s, tt.raw))
			for _, w := range tt.want {
				if !contains(got, w) {
					t.Errorf("expected %s in %v", w, got)
				}
			}
			for _, x := range tt.exclude {
				if contains(got, x) {
					t.Errorf("did not expect %s in %v", x, got)
				}
			}
		})
	}
}

func TestSearch_FilterOnlyRanksBySignals(t *testing.T) {
	s := newTestStore(t)
	got := ids(search(t, s, "scope:unscoped"))
	if len(got) != 3 || got[0] != "react" || got[2] != "left-pad" {
		t.Errorf("order = %v", got)
	}
}

func TestSearch_SuggestionsHighlight(t *testing.T) {
	s := newTestStore(t)
	q, err := request.NewCompiler(request.DefaultOptions()).CompileSuggestions("react", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := s.Search(context.Background(), &db.SearchQuery{Index: testIndex(), Query: &q})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) == 0 {
		t.Fatal("expected suggestions")
	}
	if res.Entries[0].Highlight == "" {
		t.Error("expected a highlight fragment")
	}
}

func TestSearch_UnknownIndex(t *testing.T) {
	s, _ := NewStore(Config{}, nil)
	q, _ := request.NewCompiler(request.DefaultOptions()).Compile("react", params.Pagination{})
	_, err := s.Search(context.Background(), &db.SearchQuery{Index: &db.IndexDefinition{Name: "nope"}, Query: &q})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	s := newTestStore(t)
	docs, err := s.Lookup(context.Background(), testIndex(), []string{"left-pad", "missing", "react"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(docs))
	}
	if docs[0] == nil || docs[1] != nil || docs[2] == nil {
		t.Errorf("unexpected lookup result: %q", docs)
	}
}

func TestIndexDocuments_BadJSON(t *testing.T) {
	s := newTestStore(t)
	err := s.IndexDocuments(context.Background(), testIndex(), []db.Document{{ID: "x", Source: []byte("{")}})
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpIndex {
		t.Fatalf("expected index db.Error, got %v", err)
	}
}
