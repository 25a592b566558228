// Package params validates tokenized qualifiers into typed, defaulted search parameters.
package params

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/qualifier"
)

// Parameter limits and defaults.
const (
	MaxTextLength     = 250
	MaxIdentityLength = 250
	MaxKeywords       = 10
	MaxKeywordLength  = 50
	MaxScoreEffect    = 25
	DefaultEffect     = 15.3
	DefaultSize       = 25
)

// Bounds limits pagination for one endpoint.
type Bounds struct {
	MaxFrom     int
	MaxSize     int
	DefaultSize int
}

// SearchBounds applies to the search endpoint.
func SearchBounds() Bounds {
	return Bounds{MaxFrom: 5000, MaxSize: 250, DefaultSize: DefaultSize}
}

// SuggestionBounds applies to the suggestions endpoint, which has no offset.
func SuggestionBounds() Bounds {
	return Bounds{MaxFrom: 0, MaxSize: 100, DefaultSize: DefaultSize}
}

// Pagination carries the optional from/size request parameters.
type Pagination struct {
	From *int
	Size *int
}

// Keywords splits keyword qualifiers into included and excluded sets.
type Keywords struct {
	include []string
	exclude []string
	all     bool
}

// Include returns keywords a package must carry.
func (k Keywords) Include() []string { return k.include }

// Exclude returns keywords a package must not carry.
func (k Keywords) Exclude() []string { return k.exclude }

// RequireAll reports whether every included keyword is required rather than any one.
func (k Keywords) RequireAll() bool { return k.all }

// Params is the validated, defaulted parameter record for one query.
type Params struct {
	text        string
	author      string
	maintainer  string
	scope       string
	keywords    Keywords
	is          []Flag
	not         []Flag
	boostExact  bool
	scoreEffect float64
	weights     Weights
	from        int
	size        int
}

// Text returns the trimmed, lower-cased free text.
func (p Params) Text() string { return p.text }

// Author returns the author filter, empty if unset.
func (p Params) Author() string { return p.author }

// Maintainer returns the maintainer filter, empty if unset.
func (p Params) Maintainer() string { return p.maintainer }

// Scope returns the scope filter without a leading "@", empty if unset.
func (p Params) Scope() string { return p.scope }

// Keywords returns keyword include/exclude sets.
func (p Params) Keywords() Keywords { return p.keywords }

// Is returns flags a package must carry.
func (p Params) Is() []Flag { return p.is }

// Not returns flags a package must not carry.
func (p Params) Not() []Flag { return p.not }

// BoostExact reports whether an exact name match outranks everything else.
func (p Params) BoostExact() bool { return p.boostExact }

// ScoreEffect returns the exponent applied to the weighted signal sum.
func (p Params) ScoreEffect() float64 { return p.scoreEffect }

// Weights returns the raw weights.
func (p Params) Weights() Weights { return p.weights }

// From returns the result offset.
func (p Params) From() int { return p.from }

// Size returns the page size.
func (p Params) Size() int { return p.size }

// Validate type-checks, bounds-checks and defaults tokenized qualifiers.
func Validate(text string, quals map[string]qualifier.Token, page Pagination, bounds Bounds) (Params, error) {
	p := Params{
		boostExact:  true,
		scoreEffect: DefaultEffect,
		weights:     DefaultWeights(),
		size:        bounds.DefaultSize,
	}

	p.text = fold(text)
	if utf8.RuneCountInString(p.text) > MaxTextLength {
		return Params{}, domain.NewParameterError("q", "text too long (max %d chars)", MaxTextLength)
	}

	var err error
	if p.author, err = identity(quals, qualifier.KeyAuthor, MaxIdentityLength); err != nil {
		return Params{}, err
	}
	if p.maintainer, err = identity(quals, qualifier.KeyMaintainer, MaxIdentityLength); err != nil {
		return Params{}, err
	}
	if p.scope, err = identity(quals, qualifier.KeyScope, MaxIdentityLength); err != nil {
		return Params{}, err
	}
	p.scope = strings.TrimPrefix(p.scope, "@")

	if p.keywords, err = keywords(quals); err != nil {
		return Params{}, err
	}
	if p.is, p.not, err = flags(quals); err != nil {
		return Params{}, err
	}

	if tok, ok := quals[qualifier.KeyBoostExact]; ok {
		raw, err := single(tok)
		if err != nil {
			return Params{}, err
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Params{}, domain.NewParameterError(tok.Key, "must be a boolean, got %q", raw)
		}
		p.boostExact = b
	}

	if p.scoreEffect, err = number(quals, qualifier.KeyScoreEffect, 0, MaxScoreEffect, p.scoreEffect); err != nil {
		return Params{}, err
	}
	if p.weights.Quality, err = number(quals, qualifier.KeyQualityWeight, 0, MaxWeight, p.weights.Quality); err != nil {
		return Params{}, err
	}
	if p.weights.Popularity, err = number(quals, qualifier.KeyPopularityWeight, 0, MaxWeight, p.weights.Popularity); err != nil {
		return Params{}, err
	}
	if p.weights.Maintenance, err = number(quals, qualifier.KeyMaintenanceWeight, 0, MaxWeight, p.weights.Maintenance); err != nil {
		return Params{}, err
	}

	if page.From != nil {
		if *page.From < 0 || *page.From > bounds.MaxFrom {
			return Params{}, domain.NewParameterError("from", "must be between 0 and %d", bounds.MaxFrom)
		}
		p.from = *page.From
	}
	if page.Size != nil {
		if *page.Size < 1 || *page.Size > bounds.MaxSize {
			return Params{}, domain.NewParameterError("size", "must be between 1 and %d", bounds.MaxSize)
		}
		p.size = *page.Size
	}

	return p, nil
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func single(tok qualifier.Token) (string, error) {
	if len(tok.Values) != 1 {
		return "", domain.NewParameterError(tok.Key, "accepts a single value")
	}
	if tok.Values[0].Negated {
		return "", domain.NewParameterError(tok.Key, "cannot be negated")
	}
	return tok.Values[0].Text, nil
}

func identity(quals map[string]qualifier.Token, key string, maxLen int) (string, error) {
	tok, ok := quals[key]
	if !ok {
		return "", nil
	}
	raw, err := single(tok)
	if err != nil {
		return "", err
	}
	v := fold(raw)
	if v == "" {
		return "", domain.NewParameterError(key, "must not be empty")
	}
	if utf8.RuneCountInString(v) > maxLen {
		return "", domain.NewParameterError(key, "too long (max %d chars)", maxLen)
	}
	return v, nil
}

func number(quals map[string]qualifier.Token, key string, lo, hi, def float64) (float64, error) {
	tok, ok := quals[key]
	if !ok {
		return def, nil
	}
	raw, err := single(tok)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, domain.NewParameterError(key, "must be a number, got %q", raw)
	}
	if f < lo || f > hi {
		return 0, domain.NewParameterError(key, "must be between %g and %g", lo, hi)
	}
	return f, nil
}

func keywords(quals map[string]qualifier.Token) (Keywords, error) {
	tok, ok := quals[qualifier.KeyKeywords]
	if !ok {
		return Keywords{}, nil
	}
	if len(tok.Values) > MaxKeywords {
		return Keywords{}, domain.NewParameterError(tok.Key, "too many values (max %d)", MaxKeywords)
	}

	var kw Keywords
	seenIn := map[string]struct{}{}
	seenEx := map[string]struct{}{}
	for _, v := range tok.Values {
		word := fold(v.Text)
		if utf8.RuneCountInString(word) > MaxKeywordLength {
			return Keywords{}, domain.NewParameterError(tok.Key, "keyword %q too long (max %d chars)", word, MaxKeywordLength)
		}
		if v.Negated {
			if _, dup := seenEx[word]; !dup {
				seenEx[word] = struct{}{}
				kw.exclude = append(kw.exclude, word)
			}
			continue
		}
		if _, dup := seenIn[word]; !dup {
			seenIn[word] = struct{}{}
			kw.include = append(kw.include, word)
		}
	}

	for _, word := range kw.include {
		if _, clash := seenEx[word]; clash {
			return Keywords{}, domain.NewParameterError(tok.Key, "keyword %q is both included and excluded", word)
		}
	}
	kw.all = tok.Conjunctive && len(kw.include) > 1
	return kw, nil
}

func flags(quals map[string]qualifier.Token) (is, not []Flag, err error) {
	seen := map[Flag]string{}
	add := func(key string, f Flag, positive bool) error {
		target := qualifier.KeyIs
		if !positive {
			target = qualifier.KeyNot
		}
		if prev, dup := seen[f]; dup {
			if prev != target {
				return domain.NewParameterError(key, "flag %q is required and excluded at once", f)
			}
			return nil
		}
		seen[f] = target
		if positive {
			is = append(is, f)
		} else {
			not = append(not, f)
		}
		return nil
	}

	for _, key := range []string{qualifier.KeyIs, qualifier.KeyNot} {
		tok, ok := quals[key]
		if !ok {
			continue
		}
		for _, v := range tok.Values {
			f := Flag(fold(v.Text))
			if !f.IsValid() {
				return nil, nil, domain.NewParameterError(key, "unknown flag %q (expected deprecated, unstable or insecure)", v.Text)
			}
			positive := (key == qualifier.KeyIs) != v.Negated
			if err := add(key, f, positive); err != nil {
				return nil, nil, err
			}
		}
	}
	return is, not, nil
}
