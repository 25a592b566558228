package request

// Explanation is a serializable view of a compiled query.
type Explanation struct {
	Mode      string             `json:"mode"`
	Text      string             `json:"text"`
	Filter    string             `json:"filter"`
	Clauses   []MatchClause      `json:"clauses"`
	Scoring   string             `json:"scoring"`
	Formula   string             `json:"formula"`
	Bindings  map[string]float64 `json:"bindings"`
	From      int                `json:"from"`
	Size      int                `json:"size"`
	Highlight bool               `json:"highlight,omitempty"`
}

// Explain describes q.
func (q *Query) Explain() Explanation {
	clauses := q.clauses
	if clauses == nil {
		clauses = []MatchClause{}
	}
	return Explanation{
		Mode:      string(q.mode),
		Text:      q.Text(),
		Filter:    q.filters.String(),
		Clauses:   clauses,
		Scoring:   q.scoring.Kind().String(),
		Formula:   q.scoring.String(),
		Bindings:  q.scoring.Bindings(),
		From:      q.From(),
		Size:      q.Size(),
		Highlight: q.highlight,
	}
}
