package search

import "github.com/kailas-cloud/pkgsearch/internal/db"

// PackageKeyPrefix namespaces package documents under the configured key prefix.
const PackageKeyPrefix = "package:"

// PackageIndex returns the package index layout. Document paths match the
// filter field layout and the clause field table.
func PackageIndex(name, keyPrefix string) *db.IndexDefinition {
	return db.NewIndex(name).
		OnJSON().
		Prefix(keyPrefix+PackageKeyPrefix).
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
		Numeric("$.score.final", "score_final").
		Numeric("$.score.detail.quality", "score_quality").
		Numeric("$.score.detail.popularity", "score_popularity").
		Numeric("$.score.detail.maintenance", "score_maintenance").
		MustBuild()
}
