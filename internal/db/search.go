package db

import "github.com/kailas-cloud/pkgsearch/internal/domain/search/request"

// Document is one source document to index, addressed by id.
type Document struct {
	ID     string
	Source []byte
}

// SearchQuery is the input for a ranked search.
type SearchQuery struct {
	Index *IndexDefinition
	Query *request.Query
	// Window is the minimum number of text-scored candidates to rank.
	Window int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	ID        string
	Score     float64
	TextScore float64
	Source    []byte
	Highlight string
}
