package pkginfo

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
)

func TestValidateName(t *testing.T) {
	valid := []string{"react", "cross-spawn", "@babel/core", "JSONStream", "lodash.merge", "a"}
	for _, n := range valid {
		if err := ValidateName(n); err != nil {
			t.Errorf("ValidateName(%q) = %v", n, err)
		}
	}

	invalid := []string{
		"",
		" react",
		".hidden",
		"_private",
		"node_modules",
		"favicon.ico",
		"has space",
		"@scope",
		"@/pkg",
		"@scope/",
		"a/b",
		"emoji☃",
		strings.Repeat("a", MaxNameLength+1),
	}
	for _, n := range invalid {
		err := ValidateName(n)
		if !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("ValidateName(%q) = %v, want ErrInvalidParameter", n, err)
		}
	}
}

func TestNormalizeNames(t *testing.T) {
	got, err := NormalizeNames([]string{"react", "vue", "react"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, []string{"react", "vue"}) {
		t.Errorf("got %v", got)
	}
}

func TestNormalizeNames_Bounds(t *testing.T) {
	if _, err := NormalizeNames(nil); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("empty: %v", err)
	}
	many := make([]string, MaxBulkNames+1)
	for i := range many {
		many[i] = "pkg"
	}
	if _, err := NormalizeNames(many); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("too many: %v", err)
	}
	if _, err := NormalizeNames([]string{"react", "_bad"}); !errors.Is(err, domain.ErrInvalidParameter) {
		t.Errorf("invalid member: %v", err)
	}
}
