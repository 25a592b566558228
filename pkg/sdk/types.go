package pkgsearch

import (
	"github.com/kailas-cloud/pkgsearch/internal/domain/pkginfo"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
)

// Indexed document types, shared with the server's wire format.
type (
	Document = result.Document
	Package  = result.Package
	Person   = result.Person
	Flags    = result.Flags
	Score    = result.Score
	Metadata = pkginfo.Metadata
	Info     = pkginfo.Info
)

// Explanation describes a compiled query.
type Explanation = request.Explanation

// SearchResult is a single ranked package.
type SearchResult struct {
	Package     Package
	Flags       *Flags
	Score       Score
	SearchScore float64
	Highlight   string
}

// SearchPage is one page of results and the total match count.
type SearchPage struct {
	Total   int
	Results []SearchResult
}

func fromResult(r result.Result) SearchResult {
	return SearchResult{
		Package:     r.Package(),
		Flags:       r.Flags(),
		Score:       r.Score(),
		SearchScore: r.SearchScore(),
		Highlight:   r.Highlight(),
	}
}

func fromPage(p result.Page) SearchPage {
	out := SearchPage{Total: p.Total(), Results: make([]SearchResult, 0, p.Len())}
	for r := range p.Results() {
		out.Results = append(out.Results, fromResult(r))
	}
	return out
}
