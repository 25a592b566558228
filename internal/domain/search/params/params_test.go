package params

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/qualifier"
)

func intPtr(i int) *int { return &i }

func validate(t *testing.T, raw string, page Pagination) (Params, error) {
	t.Helper()
	parsed, err := qualifier.NewTokenizer(qualifier.UnknownAsText).Tokenize(raw)
	if err != nil {
		t.Fatalf("tokenize %q: %v", raw, err)
	}
	return Validate(parsed.Text, parsed.Qualifiers, page, SearchBounds())
}

func TestValidate_Defaults(t *testing.T) {
	p, err := validate(t, "  React ", Pagination{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Text() != "react" {
		t.Errorf("Text() = %q", p.Text())
	}
	if !p.BoostExact() {
		t.Error("BoostExact() = false, want true")
	}
	if p.ScoreEffect() != DefaultEffect {
		t.Errorf("ScoreEffect() = %v", p.ScoreEffect())
	}
	if p.Weights() != DefaultWeights() {
		t.Errorf("Weights() = %+v", p.Weights())
	}
	if p.From() != 0 || p.Size() != DefaultSize {
		t.Errorf("From/Size = %d/%d", p.From(), p.Size())
	}
	if p.Author() != "" || p.Maintainer() != "" || p.Scope() != "" {
		t.Error("identity filters should be empty")
	}
}

func TestValidate_AllQualifiers(t *testing.T) {
	raw := "Cross author:Sindre maintainer:TJ scope:@babel keywords:cli,-framework " +
		"is:deprecated not:insecure boost-exact:false score-effect:10 " +
		"quality-weight:1 popularity-weight:2 maintenance-weight:3"
	p, err := validate(t, raw, Pagination{From: intPtr(10), Size: intPtr(50)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Text() != "cross" {
		t.Errorf("Text() = %q", p.Text())
	}
	if p.Author() != "sindre" || p.Maintainer() != "tj" || p.Scope() != "babel" {
		t.Errorf("author/maintainer/scope = %q/%q/%q", p.Author(), p.Maintainer(), p.Scope())
	}
	if !reflect.DeepEqual(p.Keywords().Include(), []string{"cli"}) {
		t.Errorf("Include() = %v", p.Keywords().Include())
	}
	if !reflect.DeepEqual(p.Keywords().Exclude(), []string{"framework"}) {
		t.Errorf("Exclude() = %v", p.Keywords().Exclude())
	}
	if !reflect.DeepEqual(p.Is(), []Flag{FlagDeprecated}) || !reflect.DeepEqual(p.Not(), []Flag{FlagInsecure}) {
		t.Errorf("Is/Not = %v/%v", p.Is(), p.Not())
	}
	if p.BoostExact() {
		t.Error("BoostExact() = true")
	}
	if p.ScoreEffect() != 10 {
		t.Errorf("ScoreEffect() = %v", p.ScoreEffect())
	}
	if p.Weights() != (Weights{Quality: 1, Popularity: 2, Maintenance: 3}) {
		t.Errorf("Weights() = %+v", p.Weights())
	}
	if p.From() != 10 || p.Size() != 50 {
		t.Errorf("From/Size = %d/%d", p.From(), p.Size())
	}
}

func TestValidate_Dedup(t *testing.T) {
	p, err := validate(t, "keywords:a,A,b keywords:a not:deprecated,deprecated", Pagination{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p.Keywords().Include(), []string{"a", "b"}) {
		t.Errorf("Include() = %v", p.Keywords().Include())
	}
	if !reflect.DeepEqual(p.Not(), []Flag{FlagDeprecated}) {
		t.Errorf("Not() = %v", p.Not())
	}
}

func TestValidate_Conjunctive(t *testing.T) {
	p, err := validate(t, "keywords:react+redux", Pagination{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Keywords().RequireAll() {
		t.Error("RequireAll() = false")
	}
}

func TestValidate_NegatedFlagsSwapSets(t *testing.T) {
	p, err := validate(t, "is:-deprecated not:-unstable", Pagination{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(p.Not(), []Flag{FlagDeprecated}) {
		t.Errorf("Not() = %v", p.Not())
	}
	if !reflect.DeepEqual(p.Is(), []Flag{FlagUnstable}) {
		t.Errorf("Is() = %v", p.Is())
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		page  Pagination
		param string
	}{
		{"unknown flag", "is:abandoned", Pagination{}, "is"},
		{"flag collision", "is:deprecated not:deprecated", Pagination{}, "not"},
		{"keyword collision", "keywords:a,-a", Pagination{}, "keywords"},
		{"too many keywords", "keywords:a,b,c,d,e,f,g,h,i,j,k", Pagination{}, "keywords"},
		{"effect too high", "score-effect:26", Pagination{}, "score-effect"},
		{"effect negative", "score-effect:-1", Pagination{}, "score-effect"},
		{"weight too high", "quality-weight:101", Pagination{}, "quality-weight"},
		{"weight not a number", "popularity-weight:lots", Pagination{}, "popularity-weight"},
		{"weight NaN", "maintenance-weight:NaN", Pagination{}, "maintenance-weight"},
		{"bad boolean", "boost-exact:maybe", Pagination{}, "boost-exact"},
		{"multi author", "author:a,b", Pagination{}, "author"},
		{"from too large", "react", Pagination{From: intPtr(5001)}, "from"},
		{"from negative", "react", Pagination{From: intPtr(-1)}, "from"},
		{"size zero", "react", Pagination{Size: intPtr(0)}, "size"},
		{"size too large", "react", Pagination{Size: intPtr(251)}, "size"},
		{"multibyte text too long", strings.Repeat("搜", MaxTextLength+1), Pagination{}, "q"},
		{"multibyte keyword too long", "keywords:" + strings.Repeat("é", MaxKeywordLength+1), Pagination{}, "keywords"},
		{"multibyte author too long", "author:" + strings.Repeat("ü", MaxIdentityLength+1), Pagination{}, "author"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validate(t, tt.raw, tt.page)
			if !errors.Is(err, domain.ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			var pe *domain.ParameterError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParameterError, got %T", err)
			}
			if pe.Param != tt.param {
				t.Errorf("Param = %q, want %q", pe.Param, tt.param)
			}
		})
	}
}

func TestValidate_BoundaryValues(t *testing.T) {
	p, err := validate(t, "score-effect:0 quality-weight:0 popularity-weight:100", Pagination{From: intPtr(5000), Size: intPtr(250)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ScoreEffect() != 0 {
		t.Errorf("ScoreEffect() = %v", p.ScoreEffect())
	}
	if p.From() != 5000 || p.Size() != 250 {
		t.Errorf("From/Size = %d/%d", p.From(), p.Size())
	}
}

func TestValidate_MultibyteLengthsCountCharacters(t *testing.T) {
	text := strings.Repeat("搜", MaxTextLength)
	keyword := strings.Repeat("é", MaxKeywordLength)
	author := strings.Repeat("ü", MaxIdentityLength)

	p, err := validate(t, text+" keywords:"+keyword+" author:"+author, Pagination{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Text() != text {
		t.Errorf("Text() = %q", p.Text())
	}
	if got := p.Keywords().Include(); len(got) != 1 || got[0] != keyword {
		t.Errorf("Include() = %v", got)
	}
}

func TestValidate_SuggestionBounds(t *testing.T) {
	_, err := Validate("react", nil, Pagination{Size: intPtr(101)}, SuggestionBounds())
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	_, err = Validate("react", nil, Pagination{From: intPtr(1)}, SuggestionBounds())
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter for from, got %v", err)
	}
}
