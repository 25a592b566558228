package db

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/scoring"
)

type rankFields struct {
	Name  string `json:"name"`
	Score struct {
		Detail scoring.Signals `json:"detail"`
	} `json:"score"`
}

// Rank scores candidates with the query's expression and returns the
// [from, from+size) page. Sorting is stable, so equal final scores keep the
// backend's text-score order. Without match clauses every candidate has a
// text score of 1.
func Rank(entries []SearchEntry, q *request.Query) ([]SearchEntry, error) {
	expr := q.Scoring()
	noText := len(q.Clauses()) == 0
	for i := range entries {
		if noText {
			entries[i].TextScore = 1
		}
		var f rankFields
		if err := json.Unmarshal(entries[i].Source, &f); err != nil {
			return nil, &Error{Op: OpRank, Err: fmt.Errorf("decode %s: %w", entries[i].ID, err)}
		}
		entries[i].Score = expr.Evaluate(scoring.Candidate{
			RawName:   f.Name,
			Signals:   f.Score.Detail,
			TextScore: entries[i].TextScore,
		})
	}

	slices.SortStableFunc(entries, func(a, b SearchEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})

	from := q.From()
	if from >= len(entries) {
		return nil, nil
	}
	end := min(from+q.Size(), len(entries))
	return entries[from:end], nil
}
