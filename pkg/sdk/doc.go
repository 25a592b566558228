// Package pkgsearch embeds the package search engine in a Go program.
//
// The client compiles npms-style queries and runs them against a Redis
// search index or an embedded on-disk index:
//
//	client, _ := pkgsearch.New(ctx, pkgsearch.WithEmbedded("./data"))
//	defer client.Close()
//
//	_ = client.Index(ctx, docs, metadata)
//	page, _ := client.Search(ctx, "react author:fb not:deprecated", pkgsearch.Size(10))
//	for _, r := range page.Results {
//	    fmt.Println(r.Package.Name, r.SearchScore)
//	}
//
// Query qualifiers (scope:, author:, maintainer:, keywords:, is:, not:,
// boost-exact:, score-effect:, quality-weight:, popularity-weight:,
// maintenance-weight:) are described in the project README.
package pkgsearch
