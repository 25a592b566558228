package filter

import (
	"fmt"

	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
)

// Fields names the index fields each qualifier filters on.
type Fields struct {
	Author      []string
	Maintainer  []string
	Scope       string
	Keywords    string
	FlagsPrefix string
}

// DefaultFields returns the package index field layout.
func DefaultFields() Fields {
	return Fields{
		Author:      []string{"author.name", "author.username", "author.email"},
		Maintainer:  []string{"maintainers.username", "maintainers.email"},
		Scope:       "scope",
		Keywords:    "keywords",
		FlagsPrefix: "flags.",
	}
}

// FlagField returns the marker field for f.
func (f Fields) FlagField(flag params.Flag) string {
	return f.FlagsPrefix + string(flag)
}

// Compile turns validated parameters into a conjunction of filter clauses.
// Absent qualifiers contribute nothing; with none set the result is empty.
func Compile(p params.Params, fields Fields) (Node, error) {
	var must, mustNot []Node

	for _, id := range []struct {
		value  string
		fields []string
	}{
		{p.Author(), fields.Author},
		{p.Maintainer(), fields.Maintainer},
	} {
		if id.value == "" {
			continue
		}
		n, err := anyOf(id.fields, id.value)
		if err != nil {
			return Node{}, err
		}
		must = append(must, n)
	}

	if p.Scope() != "" {
		n, err := Term(fields.Scope, p.Scope())
		if err != nil {
			return Node{}, err
		}
		must = append(must, n)
	}

	kw := p.Keywords()
	if len(kw.Include()) > 0 {
		nodes, err := terms(fields.Keywords, kw.Include())
		if err != nil {
			return Node{}, err
		}
		if kw.RequireAll() {
			must = append(must, nodes...)
		} else {
			n, err := Bool(nil, nodes, nil)
			if err != nil {
				return Node{}, err
			}
			must = append(must, n)
		}
	}
	if len(kw.Exclude()) > 0 {
		nodes, err := terms(fields.Keywords, kw.Exclude())
		if err != nil {
			return Node{}, err
		}
		mustNot = append(mustNot, nodes...)
	}

	for _, f := range p.Is() {
		n, err := Exists(fields.FlagField(f))
		if err != nil {
			return Node{}, err
		}
		must = append(must, n)
	}
	for _, f := range p.Not() {
		n, err := Exists(fields.FlagField(f))
		if err != nil {
			return Node{}, err
		}
		mustNot = append(mustNot, n)
	}

	root, err := Bool(must, nil, mustNot)
	if err != nil {
		return Node{}, fmt.Errorf("compile filters: %w", err)
	}
	return root, nil
}

func anyOf(fields []string, value string) (Node, error) {
	should := make([]Node, 0, len(fields))
	for _, f := range fields {
		n, err := Term(f, value)
		if err != nil {
			return Node{}, err
		}
		should = append(should, n)
	}
	return Bool(nil, should, nil)
}

func terms(field string, values []string) ([]Node, error) {
	out := make([]Node, 0, len(values))
	for _, v := range values {
		n, err := Term(field, v)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
