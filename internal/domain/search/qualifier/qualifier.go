// Package qualifier splits a raw search query into free text and key:value qualifiers.
package qualifier

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
)

// Recognized qualifier keys.
const (
	KeyAuthor            = "author"
	KeyMaintainer        = "maintainer"
	KeyScope             = "scope"
	KeyKeywords          = "keywords"
	KeyIs                = "is"
	KeyNot               = "not"
	KeyBoostExact        = "boost-exact"
	KeyScoreEffect       = "score-effect"
	KeyQualityWeight     = "quality-weight"
	KeyPopularityWeight  = "popularity-weight"
	KeyMaintenanceWeight = "maintenance-weight"
)

// Keys returns the recognized qualifier vocabulary.
func Keys() []string {
	return []string{
		KeyAuthor, KeyMaintainer, KeyScope, KeyKeywords, KeyIs, KeyNot,
		KeyBoostExact, KeyScoreEffect,
		KeyQualityWeight, KeyPopularityWeight, KeyMaintenanceWeight,
	}
}

// UnknownPolicy decides what happens to key:value segments with an unrecognized key.
type UnknownPolicy int

const (
	// UnknownAsText folds the whole segment into the free text.
	UnknownAsText UnknownPolicy = iota
	// UnknownReject fails tokenization with an invalid parameter error.
	UnknownReject
)

// ParseUnknownPolicy maps a config value ("text" or "reject") to a policy.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch s {
	case "", "text":
		return UnknownAsText, nil
	case "reject":
		return UnknownReject, nil
	default:
		return UnknownAsText, fmt.Errorf("unknown qualifier policy %q (expected text or reject)", s)
	}
}

// Value is one sub-value of a qualifier. Negated is set by a leading "-".
type Value struct {
	Text    string
	Negated bool
}

// Token holds every value given for one qualifier key, in order.
// Values are OR-combined unless Conjunctive is set ("a+b").
type Token struct {
	Key         string
	Values      []Value
	Conjunctive bool
}

// Parsed is the tokenizer output.
type Parsed struct {
	Text       string
	Qualifiers map[string]Token
}

// Get returns the token for key, if present.
func (p Parsed) Get(key string) (Token, bool) {
	t, ok := p.Qualifiers[key]
	return t, ok
}

// Tokenizer splits raw queries. Safe for concurrent use.
type Tokenizer struct {
	keys   map[string]struct{}
	policy UnknownPolicy
}

// NewTokenizer creates a tokenizer over the recognized vocabulary.
func NewTokenizer(policy UnknownPolicy) *Tokenizer {
	keys := make(map[string]struct{}, len(Keys()))
	for _, k := range Keys() {
		keys[k] = struct{}{}
	}
	return &Tokenizer{keys: keys, policy: policy}
}

// Tokenize splits raw into free text and qualifiers.
func (t *Tokenizer) Tokenize(raw string) (Parsed, error) {
	parsed := Parsed{Qualifiers: map[string]Token{}}
	var text []string

	for _, segment := range strings.Fields(raw) {
		tok, isText, err := t.classify(segment, t.policy)
		if err != nil {
			return Parsed{}, err
		}
		if isText {
			text = append(text, segment)
			continue
		}

		if prev, exists := parsed.Qualifiers[tok.Key]; exists {
			tok, err = merge(prev, tok)
			if err != nil {
				return Parsed{}, err
			}
		}
		parsed.Qualifiers[tok.Key] = tok
	}

	parsed.Text = strings.Join(text, " ")
	return parsed, nil
}

// DiscardQualifiers returns only the free-text part of raw. Whenever
// Tokenize succeeds the result equals its Text. It never fails: malformed
// recognized qualifiers are dropped, unknown ones stay in the text
// regardless of policy.
func (t *Tokenizer) DiscardQualifiers(raw string) string {
	var text []string
	for _, segment := range strings.Fields(raw) {
		if _, isText, err := t.classify(segment, UnknownAsText); err == nil && isText {
			text = append(text, segment)
		}
	}
	return strings.Join(text, " ")
}

// classify decides whether segment is free text or a qualifier. Segments
// without a key or value, unknown keys under UnknownAsText and recognized
// keys with no value left after splitting are text.
func (t *Tokenizer) classify(segment string, policy UnknownPolicy) (Token, bool, error) {
	key, value, ok := strings.Cut(segment, ":")
	if !ok || key == "" || value == "" {
		return Token{}, true, nil
	}
	if _, known := t.keys[key]; !known {
		if policy == UnknownReject {
			return Token{}, false, domain.NewParameterError(key, "unknown qualifier")
		}
		return Token{}, true, nil
	}

	tok, err := splitValues(key, value)
	if err != nil {
		return Token{}, false, err
	}
	if len(tok.Values) == 0 {
		return Token{}, true, nil
	}
	return tok, false, nil
}

func splitValues(key, value string) (Token, error) {
	hasOr := strings.Contains(value, ",")
	hasAnd := strings.Contains(value, "+")
	if hasOr && hasAnd {
		return Token{}, domain.NewParameterError(key, "cannot mix ',' and '+' in one qualifier")
	}

	sep := ","
	if hasAnd {
		sep = "+"
	}

	tok := Token{Key: key, Conjunctive: hasAnd}
	for _, part := range strings.Split(value, sep) {
		part = strings.TrimSpace(part)
		negated := strings.HasPrefix(part, "-")
		if negated {
			part = strings.TrimPrefix(part, "-")
		}
		if part == "" {
			continue
		}
		tok.Values = append(tok.Values, Value{Text: part, Negated: negated})
	}
	if len(tok.Values) < 2 {
		tok.Conjunctive = false
	}
	return tok, nil
}

func merge(prev, next Token) (Token, error) {
	multi := func(t Token) bool { return len(t.Values) > 1 }
	if multi(prev) && multi(next) && prev.Conjunctive != next.Conjunctive {
		return Token{}, domain.NewParameterError(prev.Key, "cannot mix ',' and '+' across repeated qualifiers")
	}
	merged := Token{
		Key:         prev.Key,
		Values:      append(append([]Value{}, prev.Values...), next.Values...),
		Conjunctive: prev.Conjunctive || next.Conjunctive,
	}
	return merged, nil
}
