package result

import (
	"iter"
	"time"

	"github.com/kailas-cloud/pkgsearch/internal/domain/search/scoring"
)

// Person is an author, publisher or maintainer identity.
type Person struct {
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Package is the public package record.
type Package struct {
	Name        string            `json:"name"`
	Scope       string            `json:"scope"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
	Date        *time.Time        `json:"date,omitempty"`
	Links       map[string]string `json:"links,omitempty"`
	Author      *Person           `json:"author,omitempty"`
	Publisher   *Person           `json:"publisher,omitempty"`
	Maintainers []Person          `json:"maintainers,omitempty"`
}

// Flags are status markers. A zero field means the flag is absent.
type Flags struct {
	Deprecated string `json:"deprecated,omitempty"`
	Unstable   bool   `json:"unstable,omitempty"`
	Insecure   int    `json:"insecure,omitempty"`
}

// IsZero reports whether no flag is set.
func (f Flags) IsZero() bool { return f == Flags{} }

// Score is the precomputed package score.
type Score struct {
	Final  float64         `json:"final"`
	Detail scoring.Signals `json:"detail"`
}

// Document is the indexed form of a package.
type Document struct {
	Package
	Flags *Flags `json:"flags,omitempty"`
	Score Score  `json:"score"`
}

// Hit is a ranked document as returned by the index.
type Hit struct {
	Document    Document
	SearchScore float64
	Highlight   string
}

// Result is a single search hit in its public shape.
type Result struct {
	pkg         Package
	flags       *Flags
	score       Score
	searchScore float64
	highlight   string
}

// New creates a search result.
func New(pkg Package, flags *Flags, score Score, searchScore float64, highlight string) Result {
	return Result{pkg: pkg, flags: flags, score: score, searchScore: searchScore, highlight: highlight}
}

// Package returns the package record.
func (r *Result) Package() Package { return r.pkg }

// Flags returns the status flags, nil when none are set.
func (r *Result) Flags() *Flags { return r.flags }

// Score returns the precomputed package score.
func (r *Result) Score() Score { return r.score }

// SearchScore returns the final ranking score.
func (r *Result) SearchScore() float64 { return r.searchScore }

// Highlight returns the highlighted fragment, empty when none was produced.
func (r *Result) Highlight() string { return r.highlight }

// Project lazily maps hits to results in index order.
// The sequence is finite and can be iterated any number of times.
func Project(hits []Hit) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for _, h := range hits {
			var flags *Flags
			if h.Document.Flags != nil && !h.Document.Flags.IsZero() {
				f := *h.Document.Flags
				flags = &f
			}
			if !yield(New(h.Document.Package, flags, h.Document.Score, h.SearchScore, h.Highlight)) {
				return
			}
		}
	}
}

// Page is one page of search results.
type Page struct {
	total int
	hits  []Hit
}

// NewPage creates a page over already ranked hits.
func NewPage(total int, hits []Hit) Page {
	return Page{total: total, hits: hits}
}

// Total returns the number of matching packages in the index.
func (p Page) Total() int { return p.total }

// Len returns the number of results on the page.
func (p Page) Len() int { return len(p.hits) }

// Results returns the page's results in rank order.
func (p Page) Results() iter.Seq[Result] { return Project(p.hits) }
