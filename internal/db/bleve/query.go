package bleve

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
)

// filterBoost keeps filter clauses from contributing to the text score.
const filterBoost = 1e-6

const minPrefixLen = 2

// analyzeFunc splits text into the terms a text field stores for it.
type analyzeFunc func(text string) []string

// textAnalyzer analyzes with the index's text field analyzer, falling back
// to queryTerms when the mapping does not know it.
func textAnalyzer(idx bleve.Index) analyzeFunc {
	a := idx.Mapping().AnalyzerNamed(standard.Name)
	if a == nil {
		return queryTerms
	}
	return func(text string) []string {
		stream := a.Analyze([]byte(text))
		terms := make([]string, 0, len(stream))
		for _, tok := range stream {
			terms = append(terms, string(tok.Term))
		}
		return terms
	}
}

// buildQuery combines the filter tree and the match clauses. With neither,
// every document matches.
func buildQuery(def *db.IndexDefinition, q *request.Query, analyze analyzeFunc) (query.Query, error) {
	var parts []query.Query

	if !q.Filters().IsEmpty() {
		f, err := buildFilter(def, q.Filters())
		if err != nil {
			return nil, err
		}
		parts = append(parts, f)
	}

	text, err := buildText(def, q.Clauses(), analyze)
	if err != nil {
		return nil, err
	}
	if text != nil {
		parts = append(parts, text)
	}

	switch len(parts) {
	case 0:
		return bleve.NewMatchAllQuery(), nil
	case 1:
		return parts[0], nil
	}
	return bleve.NewConjunctionQuery(parts...), nil
}

// --- Filter building ---

func buildFilter(def *db.IndexDefinition, n filter.Node) (query.Query, error) {
	switch n.Kind() {
	case filter.KindTerm:
		f, ok := def.Field(n.Field(), db.IndexFieldTag)
		if !ok {
			return nil, fmt.Errorf("no tag field indexed at %q", n.Field())
		}
		value := n.Value()
		if !f.TagCaseSensitive {
			value = strings.ToLower(value)
		}
		tq := bleve.NewTermQuery(value)
		tq.SetField(f.FieldName())
		tq.SetBoost(filterBoost)
		return tq, nil

	case filter.KindExists:
		f, ok := def.FieldAt(n.Field())
		if !ok {
			return nil, fmt.Errorf("no field indexed at %q", n.Field())
		}
		tq := bleve.NewTermQuery(f.FieldName())
		tq.SetField(presentField)
		tq.SetBoost(filterBoost)
		return tq, nil
	}

	bq := bleve.NewBooleanQuery()
	for _, c := range n.Must() {
		sub, err := buildFilter(def, c)
		if err != nil {
			return nil, err
		}
		bq.AddMust(sub)
	}
	if len(n.Should()) > 0 {
		should := make([]query.Query, 0, len(n.Should()))
		for _, c := range n.Should() {
			sub, err := buildFilter(def, c)
			if err != nil {
				return nil, err
			}
			should = append(should, sub)
		}
		// A should group is a required disjunction, not an optional boost.
		bq.AddMust(bleve.NewDisjunctionQuery(should...))
	}
	for _, c := range n.MustNot() {
		sub, err := buildFilter(def, c)
		if err != nil {
			return nil, err
		}
		bq.AddMustNot(sub)
	}
	if len(n.Must()) == 0 && len(n.Should()) == 0 {
		bq.AddMust(bleve.NewMatchAllQuery())
	}
	return bq, nil
}

// --- Text building ---

func buildText(def *db.IndexDefinition, clauses []request.MatchClause, analyze analyzeFunc) (query.Query, error) {
	var parts []query.Query
	for _, c := range clauses {
		var (
			q   query.Query
			err error
		)
		if c.Kind == request.MatchCrossFields {
			q, err = buildCrossFields(def, c, analyze(c.Query))
		} else {
			q, err = buildClause(def, c)
		}
		if err != nil {
			return nil, err
		}
		if q != nil {
			parts = append(parts, q)
		}
	}
	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
		return parts[0], nil
	}
	return bleve.NewDisjunctionQuery(parts...), nil
}

// buildClause builds one disjunct per field. Prefix clauses require every
// term, as a prefix where it is long enough. Others use an AND match.
func buildClause(def *db.IndexDefinition, c request.MatchClause) (query.Query, error) {
	words := queryTerms(c.Query)
	if len(words) == 0 {
		return nil, nil
	}

	fields := make([]query.Query, 0, len(c.Fields))
	for _, fb := range c.Fields {
		f, ok := def.Field(fb.Field, db.IndexFieldText)
		if !ok {
			return nil, fmt.Errorf("no text field indexed at %q", fb.Field)
		}
		alias := f.FieldName()
		boost := fb.Boost * c.Boost

		var fq query.Query
		switch {
		case c.Prefix:
			terms := make([]query.Query, 0, len(words))
			for _, w := range words {
				if len(w) >= minPrefixLen {
					pq := bleve.NewPrefixQuery(w)
					pq.SetField(alias)
					terms = append(terms, pq)
					continue
				}
				tq := bleve.NewTermQuery(w)
				tq.SetField(alias)
				terms = append(terms, tq)
			}
			cq := bleve.NewConjunctionQuery(terms...)
			cq.SetBoost(boost)
			fq = cq
		case c.Kind == request.MatchPhrase:
			pq := bleve.NewMatchPhraseQuery(strings.Join(words, " "))
			pq.SetField(alias)
			pq.SetBoost(boost)
			fq = pq
		default:
			mq := bleve.NewMatchQuery(strings.Join(words, " "))
			mq.SetField(alias)
			mq.SetOperator(query.MatchQueryOperatorAnd)
			mq.SetBoost(boost)
			fq = mq
		}
		fields = append(fields, fq)
	}

	if len(fields) == 1 {
		return fields[0], nil
	}
	return bleve.NewDisjunctionQuery(fields...), nil
}

// buildCrossFields requires every term, each matching in any of the clause's
// fields with that field's boost.
func buildCrossFields(def *db.IndexDefinition, c request.MatchClause, terms []string) (query.Query, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	aliases := make([]string, len(c.Fields))
	boosts := make([]float64, len(c.Fields))
	for i, fb := range c.Fields {
		f, ok := def.Field(fb.Field, db.IndexFieldText)
		if !ok {
			return nil, fmt.Errorf("no text field indexed at %q", fb.Field)
		}
		aliases[i] = f.FieldName()
		boosts[i] = fb.Boost * c.Boost
	}

	required := make([]query.Query, len(terms))
	for i, term := range terms {
		alts := make([]query.Query, len(aliases))
		for j, alias := range aliases {
			tq := bleve.NewTermQuery(term)
			tq.SetField(alias)
			tq.SetBoost(boosts[j])
			alts[j] = tq
		}
		required[i] = bleve.NewDisjunctionQuery(alts...)
	}
	if len(required) == 1 {
		return required[0], nil
	}
	return bleve.NewConjunctionQuery(required...), nil
}

// queryTerms lowercases text and splits it on anything that is not a letter
// or digit.
func queryTerms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
