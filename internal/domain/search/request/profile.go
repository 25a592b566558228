package request

// MatchKind is the way a clause matches query text against its fields.
type MatchKind string

// Match kinds.
const (
	// MatchPhrase requires the terms in order, within Slop positions.
	MatchPhrase MatchKind = "phrase"
	// MatchCrossFields treats all fields as one combined field, every term required.
	MatchCrossFields MatchKind = "cross_fields"
	// MatchTerms is a plain per-field match.
	MatchTerms MatchKind = "match"
)

// FieldBoost is a field and its relevance multiplier.
type FieldBoost struct {
	Field string  `json:"field"`
	Boost float64 `json:"boost"`
}

// DefaultFieldBoosts is the field table shared by every search clause.
func DefaultFieldBoosts() []FieldBoost {
	return []FieldBoost{
		{Field: "name", Boost: 4},
		{Field: "description", Boost: 1},
		{Field: "keywords", Boost: 2},
	}
}

// ClauseTemplate describes one match clause independent of the query text.
// A template without Fields uses the profile's field table.
type ClauseTemplate struct {
	Kind     MatchKind
	Analyzer string
	Prefix   bool
	Fields   []FieldBoost
	Slop     int
	Boost    float64
}

// Profile is an ordered set of clause templates.
type Profile struct {
	Name      string
	Clauses   []ClauseTemplate
	Highlight bool
}

// SearchProfile ranks prefix phrase matches and stemmed matches of the package identifiers.
func SearchProfile() Profile {
	return Profile{
		Name: "search",
		Clauses: []ClauseTemplate{
			{Kind: MatchPhrase, Analyzer: "identifier_edge_ngram", Prefix: true, Slop: 3, Boost: 3},
			{Kind: MatchCrossFields, Analyzer: "identifier_english_docs", Boost: 3},
			{Kind: MatchCrossFields, Analyzer: "identifier_english_aggressive_docs", Boost: 1},
		},
	}
}

// SuggestionsProfile matches on the package name only, favouring autocomplete hits.
func SuggestionsProfile() Profile {
	return Profile{
		Name: "suggestions",
		Clauses: []ClauseTemplate{
			{Kind: MatchTerms, Analyzer: "autocomplete_keyword", Prefix: true, Fields: []FieldBoost{{Field: "name", Boost: 1}}, Boost: 3},
			{Kind: MatchPhrase, Fields: []FieldBoost{{Field: "name", Boost: 1}}, Boost: 2},
			{Kind: MatchPhrase, Analyzer: "autocomplete", Prefix: true, Fields: []FieldBoost{{Field: "name", Boost: 1}}, Slop: 2, Boost: 1},
		},
		Highlight: true,
	}
}

// MatchClause is a clause template bound to query text.
type MatchClause struct {
	Query    string       `json:"query"`
	Kind     MatchKind    `json:"kind"`
	Analyzer string       `json:"analyzer,omitempty"`
	Prefix   bool         `json:"prefix,omitempty"`
	Fields   []FieldBoost `json:"fields"`
	Operator string       `json:"operator"`
	Slop     int          `json:"slop,omitempty"`
	Boost    float64      `json:"boost"`
}

// Bind instantiates the profile for text. Empty text yields no clauses.
func (p Profile) Bind(text string, boosts []FieldBoost) []MatchClause {
	if text == "" {
		return nil
	}
	clauses := make([]MatchClause, 0, len(p.Clauses))
	for _, tpl := range p.Clauses {
		fields := tpl.Fields
		if len(fields) == 0 {
			fields = boosts
		}
		clauses = append(clauses, MatchClause{
			Query:    text,
			Kind:     tpl.Kind,
			Analyzer: tpl.Analyzer,
			Prefix:   tpl.Prefix,
			Fields:   append([]FieldBoost(nil), fields...),
			Operator: "and",
			Slop:     tpl.Slop,
			Boost:    tpl.Boost,
		})
	}
	return clauses
}
