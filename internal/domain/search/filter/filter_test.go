package filter

import (
	"strings"
	"testing"
)

type mapDoc map[string][]string

func (d mapDoc) Values(field string) ([]string, bool) {
	v, ok := d[field]
	return v, ok
}

func mustTerm(t *testing.T, field, value string) Node {
	t.Helper()
	n, err := Term(field, value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return n
}

// --- Node constructors ---

func TestTerm_Valid(t *testing.T) {
	n, err := Term("keywords", "cli")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Kind() != KindTerm {
		t.Errorf("Kind() = %v", n.Kind())
	}
	if n.Field() != "keywords" || n.Value() != "cli" {
		t.Errorf("Field/Value = %q/%q", n.Field(), n.Value())
	}
	if n.IsEmpty() {
		t.Error("IsEmpty() = true for term")
	}
}

func TestTerm_EmptyField(t *testing.T) {
	_, err := Term("", "cli")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "field is required") {
		t.Errorf("error = %q", err)
	}
}

func TestTerm_EmptyValue(t *testing.T) {
	_, err := Term("keywords", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "term value") {
		t.Errorf("error = %q", err)
	}
}

func TestExists(t *testing.T) {
	n, err := Exists("flags.deprecated")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Kind() != KindExists || n.Field() != "flags.deprecated" {
		t.Errorf("got %v", n)
	}
	if _, err := Exists(""); err == nil {
		t.Error("expected error for empty field")
	}
}

func TestBool_Empty(t *testing.T) {
	n, err := Bool(nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.IsEmpty() {
		t.Error("IsEmpty() = false for empty bool")
	}
	if n.String() != "*" {
		t.Errorf("String() = %q", n.String())
	}
}

func TestBool_TooMany(t *testing.T) {
	nodes := make([]Node, MaxConditionsPerGroup+1)
	for i := range nodes {
		nodes[i] = mustTerm(t, "keywords", "k")
	}

	tests := []struct {
		name                  string
		must, should, mustNot []Node
		msg                   string
	}{
		{"must", nodes, nil, nil, "must conditions"},
		{"should", nil, nodes, nil, "should conditions"},
		{"must_not", nil, nil, nodes, "must_not conditions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Bool(tt.must, tt.should, tt.mustNot)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %q", err)
			}
		})
	}
}

// --- Matches ---

func TestMatches(t *testing.T) {
	cli := mustTerm(t, "keywords", "cli")
	react := mustTerm(t, "keywords", "react")
	deprecated, _ := Exists("flags.deprecated")

	anyKeyword, _ := Bool(nil, []Node{cli, react}, nil)
	root, _ := Bool([]Node{anyKeyword}, nil, []Node{deprecated})

	tests := []struct {
		name string
		doc  mapDoc
		want bool
	}{
		{"has cli", mapDoc{"keywords": {"cli", "tool"}}, true},
		{"has react", mapDoc{"keywords": {"react"}}, true},
		{"no keyword", mapDoc{"keywords": {"vue"}}, false},
		{"no keywords field", mapDoc{}, false},
		{"deprecated", mapDoc{"keywords": {"cli"}, "flags.deprecated": {"use x"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := root.Matches(tt.doc); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_EmptyMatchesAll(t *testing.T) {
	n, _ := Bool(nil, nil, nil)
	if !n.Matches(mapDoc{}) {
		t.Error("empty bool must match everything")
	}
}

func TestString(t *testing.T) {
	deprecated, _ := Exists("flags.deprecated")
	root, _ := Bool([]Node{mustTerm(t, "scope", "babel")}, nil, []Node{deprecated})
	want := `bool(must[scope="babel"] must_not[exists(flags.deprecated)])`
	if root.String() != want {
		t.Errorf("String() = %s, want %s", root.String(), want)
	}
}
