// Package pkginfo holds the per-package analysis record served by the package endpoints.
package pkginfo

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/kailas-cloud/pkgsearch/internal/domain"
	"github.com/kailas-cloud/pkgsearch/internal/domain/search/result"
)

// Limits for package name lookups.
const (
	MaxNameLength  = 214
	MaxBulkNames   = 250
	unreservedMark = "-_.!~*'()"
)

var blacklisted = map[string]struct{}{
	"node_modules": {},
	"favicon.ico":  {},
}

// Metadata is the stored analysis document for one package.
type Metadata struct {
	AnalyzedAt time.Time       `json:"analyzedAt"`
	Collected  json.RawMessage `json:"collected"`
	Evaluation json.RawMessage `json:"evaluation"`
}

// Info merges the analysis document with the package's index score.
type Info struct {
	Metadata
	Score result.Score `json:"score"`
}

// ValidateName checks name against the registry naming rules, accepting
// legacy names that contain capital letters.
func ValidateName(name string) error {
	switch {
	case name == "":
		return domain.NewParameterError("name", "must not be empty")
	case len(name) > MaxNameLength:
		return domain.NewParameterError("name", "too long (max %d chars)", MaxNameLength)
	case strings.TrimSpace(name) != name:
		return domain.NewParameterError("name", "%q has leading or trailing spaces", name)
	case strings.HasPrefix(name, "."), strings.HasPrefix(name, "_"):
		return domain.NewParameterError("name", "%q cannot start with a period or underscore", name)
	}
	if _, bad := blacklisted[strings.ToLower(name)]; bad {
		return domain.NewParameterError("name", "%q is a blacklisted name", name)
	}

	if strings.HasPrefix(name, "@") {
		scope, pkg, ok := strings.Cut(name[1:], "/")
		if !ok || !urlSafe(scope) || !urlSafe(pkg) {
			return domain.NewParameterError("name", "%q is not a valid scoped name", name)
		}
		return nil
	}
	if !urlSafe(name) {
		return domain.NewParameterError("name", "%q contains characters that are not URL-safe", name)
	}
	return nil
}

// NormalizeNames validates names and removes duplicates, keeping first-seen order.
func NormalizeNames(names []string) ([]string, error) {
	if len(names) == 0 || len(names) > MaxBulkNames {
		return nil, domain.NewParameterError("names", "must contain between 1 and %d names", MaxBulkNames)
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			return nil, err
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func urlSafe(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(unreservedMark, r):
		default:
			return false
		}
	}
	return true
}
