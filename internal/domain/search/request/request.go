package request

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/params"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/qualifier"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/scoring"
)

// MaxQueryLength is the maximum allowed raw query length in characters.
const MaxQueryLength = 4096

// Query is a compiled, backend-neutral index request.
type Query struct {
	mode      mode.Mode
	params    params.Params
	filters   filter.Node
	clauses   []MatchClause
	scoring   scoring.Expression
	highlight bool
}

// Mode returns the query mode.
func (q *Query) Mode() mode.Mode { return q.mode }

// Params returns the validated parameters the query was compiled from.
func (q *Query) Params() params.Params { return q.params }

// Text returns the normalized free text.
func (q *Query) Text() string { return q.params.Text() }

// Filters returns the filter tree.
func (q *Query) Filters() filter.Node { return q.filters }

// Clauses returns the match clauses, empty when there is no text.
func (q *Query) Clauses() []MatchClause { return q.clauses }

// Scoring returns the ranking expression.
func (q *Query) Scoring() scoring.Expression { return q.scoring }

// From returns the result offset.
func (q *Query) From() int { return q.params.From() }

// Size returns the page size.
func (q *Query) Size() int { return q.params.Size() }

// Highlight reports whether hits should carry highlighted fragments.
func (q *Query) Highlight() bool { return q.highlight }

// Window returns how many top text-scored candidates to rank, at least from+size.
func (q *Query) Window(candidates int) int {
	if need := q.From() + q.Size(); need > candidates {
		return need
	}
	return candidates
}

// Options configure a Compiler.
type Options struct {
	Unknown     qualifier.UnknownPolicy
	Fields      filter.Fields
	Boosts      []FieldBoost
	Search      Profile
	Suggestions Profile
}

// DefaultOptions returns the stock field layout and match profiles.
func DefaultOptions() Options {
	return Options{
		Unknown:     qualifier.UnknownAsText,
		Fields:      filter.DefaultFields(),
		Boosts:      DefaultFieldBoosts(),
		Search:      SearchProfile(),
		Suggestions: SuggestionsProfile(),
	}
}

// WithBoosts returns a copy of o with the named field boosts replaced.
// Field order is kept and unknown names are ignored.
func (o Options) WithBoosts(boosts map[string]float64) Options {
	out := make([]FieldBoost, len(o.Boosts))
	copy(out, o.Boosts)
	for i := range out {
		if b, ok := boosts[out[i].Field]; ok {
			out[i].Boost = b
		}
	}
	o.Boosts = out
	return o
}

// Compiler turns raw query strings into compiled queries. It holds no
// mutable state and is safe for concurrent use.
type Compiler struct {
	tokenizer *qualifier.Tokenizer
	opts      Options
}

// NewCompiler creates a compiler.
func NewCompiler(opts Options) *Compiler {
	if len(opts.Boosts) == 0 {
		opts.Boosts = DefaultFieldBoosts()
	}
	return &Compiler{tokenizer: qualifier.NewTokenizer(opts.Unknown), opts: opts}
}

// Compile compiles a search query.
func (c *Compiler) Compile(raw string, page params.Pagination) (Query, error) {
	return c.compile(mode.Search, raw, page)
}

// CompileSuggestions compiles a suggestions query.
func (c *Compiler) CompileSuggestions(raw string, size *int) (Query, error) {
	return c.compile(mode.Suggestions, raw, params.Pagination{Size: size})
}

// DiscardQualifiers returns only the free text of raw.
func (c *Compiler) DiscardQualifiers(raw string) string {
	return c.tokenizer.DiscardQualifiers(raw)
}

func (c *Compiler) compile(m mode.Mode, raw string, page params.Pagination) (Query, error) {
	if strings.TrimSpace(raw) == "" {
		return Query{}, domain.NewParameterError("q", "must not be empty")
	}
	if utf8.RuneCountInString(raw) > MaxQueryLength {
		return Query{}, domain.NewParameterError("q", "too long (max %d chars)", MaxQueryLength)
	}

	parsed, err := c.tokenizer.Tokenize(raw)
	if err != nil {
		return Query{}, err
	}

	bounds, profile := params.SearchBounds(), c.opts.Search
	if m == mode.Suggestions {
		bounds, profile = params.SuggestionBounds(), c.opts.Suggestions
	}

	p, err := params.Validate(parsed.Text, parsed.Qualifiers, page, bounds)
	if err != nil {
		return Query{}, err
	}

	filters, err := filter.Compile(p, c.opts.Fields)
	if err != nil {
		return Query{}, domain.NewParameterError("q", "%v", err)
	}

	return Query{
		mode:      m,
		params:    p,
		filters:   filters,
		clauses:   profile.Bind(p.Text(), c.opts.Boosts),
		scoring:   scoring.Build(p),
		highlight: profile.Highlight,
	}, nil
}
