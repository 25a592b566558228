package redis

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/pkgsearch/internal/db"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/request"
)

// minPrefixLen matches the server's MINPREFIX default.
const minPrefixLen = 2

// buildQuery renders a compiled query as an FT.SEARCH DIALECT 2 query string:
// the filter tree first, then a union of the match clauses.
func buildQuery(def *db.IndexDefinition, q *request.Query) (string, error) {
	var parts []string

	f, err := buildFilter(def, q.Filters())
	if err != nil {
		return "", err
	}
	if f != "" {
		parts = append(parts, f)
	}

	text, err := buildText(def, q.Clauses())
	if err != nil {
		return "", err
	}
	if text != "" {
		parts = append(parts, text)
	}

	if len(parts) == 0 {
		return "*", nil
	}
	return strings.Join(parts, " "), nil
}

// --- Filter building ---

// buildFilter translates a filter tree into a query-string conjunction.
func buildFilter(def *db.IndexDefinition, n filter.Node) (string, error) {
	if n.IsEmpty() {
		return "", nil
	}
	return renderNode(def, n, false)
}

func renderNode(def *db.IndexDefinition, n filter.Node, nested bool) (string, error) {
	switch n.Kind() {
	case filter.KindTerm:
		return buildTagFilter(def, n.Field(), n.Value())
	case filter.KindExists:
		f, err := lookupField(def, n.Field())
		if err != nil {
			return "", err
		}
		return "-ismissing(@" + f.FieldName() + ")", nil
	}

	var parts []string

	for _, c := range n.Must() {
		s, err := renderNode(def, c, true)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	if len(n.Should()) > 0 {
		should := make([]string, 0, len(n.Should()))
		for _, c := range n.Should() {
			s, err := renderNode(def, c, true)
			if err != nil {
				return "", err
			}
			should = append(should, s)
		}
		parts = append(parts, "("+strings.Join(should, " | ")+")")
	}

	for _, c := range n.MustNot() {
		s, err := renderNegated(def, c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	out := strings.Join(parts, " ")
	if nested && len(parts) > 1 {
		out = "(" + out + ")"
	}
	return out, nil
}

// renderNegated renders -(n). A negated existence test is written as
// ismissing(@field) instead of a double negation.
func renderNegated(def *db.IndexDefinition, n filter.Node) (string, error) {
	if n.Kind() == filter.KindExists {
		f, err := lookupField(def, n.Field())
		if err != nil {
			return "", err
		}
		return "ismissing(@" + f.FieldName() + ")", nil
	}
	s, err := renderNode(def, n, true)
	if err != nil {
		return "", err
	}
	return "-" + s, nil
}

func buildTagFilter(def *db.IndexDefinition, path, value string) (string, error) {
	f, ok := def.Field(path, db.IndexFieldTag)
	if !ok {
		return "", fmt.Errorf("no tag field indexed at %q", path)
	}
	return fmt.Sprintf("@%s:{%s}", f.FieldName(), tagEscaper.Replace(value)), nil
}

func lookupField(def *db.IndexDefinition, path string) (*db.IndexField, error) {
	f, ok := def.FieldAt(path)
	if !ok {
		return nil, fmt.Errorf("no field indexed at %q", path)
	}
	if !f.IndexMissing {
		return nil, fmt.Errorf("field %q does not index missing values", f.FieldName())
	}
	return f, nil
}

// --- Text building ---

// buildText renders each clause and unions the clauses. Clauses whose text
// has no searchable terms are skipped.
func buildText(def *db.IndexDefinition, clauses []request.MatchClause) (string, error) {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		s, err := buildClause(def, c)
		if err != nil {
			return "", err
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " | ") + ")", nil
}

func buildClause(def *db.IndexDefinition, c request.MatchClause) (string, error) {
	words := queryTerms(c.Query)
	if len(words) == 0 {
		return "", nil
	}

	terms := make([]string, len(words))
	for i, w := range words {
		if c.Prefix && len(w) >= minPrefixLen {
			w += "*"
		}
		terms[i] = w
	}

	aliases := make([]string, len(c.Fields))
	weights := make([]string, len(c.Fields))
	for i, fb := range c.Fields {
		f, ok := def.Field(fb.Field, db.IndexFieldText)
		if !ok {
			return "", fmt.Errorf("no text field indexed at %q", fb.Field)
		}
		aliases[i] = f.FieldName()
		weights[i] = formatFloat(fb.Boost * c.Boost)
	}

	if c.Kind == request.MatchCrossFields {
		return crossFieldsClause(aliases, weights, terms), nil
	}

	body := strings.Join(terms, " ")
	groups := make([]string, len(aliases))
	for i, alias := range aliases {
		attrs := "$weight: " + weights[i] + ";"
		if c.Kind == request.MatchPhrase {
			attrs += " $slop: " + strconv.Itoa(c.Slop) + "; $inorder: true;"
		}
		groups[i] = fmt.Sprintf("(@%s:(%s)) => { %s }", alias, body, attrs)
	}

	if len(groups) == 1 {
		return groups[0], nil
	}
	return "(" + strings.Join(groups, " | ") + ")", nil
}

// crossFieldsClause intersects one group per term, each a union of the
// weighted fields, so every term is required but may match in any field.
func crossFieldsClause(aliases, weights, terms []string) string {
	groups := make([]string, len(terms))
	for i, term := range terms {
		alts := make([]string, len(aliases))
		for j, alias := range aliases {
			alts[j] = fmt.Sprintf("(@%s:%s) => { $weight: %s; }", alias, term, weights[j])
		}
		groups[i] = "(" + strings.Join(alts, " | ") + ")"
	}
	if len(groups) == 1 {
		return groups[0]
	}
	return "(" + strings.Join(groups, " ") + ")"
}

// queryTerms lowercases text and splits it on anything that is not a letter
// or digit, which also strips every query-syntax character.
func queryTerms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	"\\", "\\\\",
	" ", "\\ ",
)
