package bleve

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/pkgsearch/internal/db"
)

// Reserved document fields.
const (
	// presentField lists the aliases of every field present in the document.
	presentField = "_fields"
	// sourceField stores the raw JSON document.
	sourceField = "_source"
)

// buildMapping maps every index field by its alias. TEXT fields are analyzed
// and stored for highlighting, TAG fields are single keyword tokens.
func buildMapping(def *db.IndexDefinition) mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	for i := range def.Fields {
		f := &def.Fields[i]
		var fm *mapping.FieldMapping
		switch f.Type {
		case db.IndexFieldText:
			fm = bleve.NewTextFieldMapping()
			fm.Analyzer = standard.Name
			fm.Store = true
		case db.IndexFieldTag:
			fm = bleve.NewKeywordFieldMapping()
			fm.Analyzer = keyword.Name
			fm.Store = false
		case db.IndexFieldNumeric:
			fm = bleve.NewNumericFieldMapping()
			fm.Store = false
		default:
			continue
		}
		doc.AddFieldMappingsAt(f.FieldName(), fm)
	}

	present := bleve.NewKeywordFieldMapping()
	present.Store = false
	doc.AddFieldMappingsAt(presentField, present)

	source := bleve.NewTextFieldMapping()
	source.Index = false
	source.Store = true
	source.IncludeInAll = false
	source.IncludeTermVectors = false
	doc.AddFieldMappingsAt(sourceField, source)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultAnalyzer = standard.Name
	m.IndexDynamic = false
	m.StoreDynamic = false
	return m
}

// flatten extracts every index field from a JSON document into a flat
// alias-keyed map.
func flatten(def *db.IndexDefinition, source []byte) (map[string]any, error) {
	var root any
	if err := json.Unmarshal(source, &root); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	out := map[string]any{sourceField: string(source)}
	var present []string

	for i := range def.Fields {
		f := &def.Fields[i]
		values := extract(root, pathSegments(f.Name))
		if len(values) == 0 {
			continue
		}

		var v any
		switch f.Type {
		case db.IndexFieldNumeric:
			nums := make([]float64, 0, len(values))
			for _, raw := range values {
				if n, ok := toNumber(raw); ok {
					nums = append(nums, n)
				}
			}
			if len(nums) == 0 {
				continue
			}
			v = nums
		case db.IndexFieldTag:
			tags := make([]string, 0, len(values))
			for _, raw := range values {
				s := scalarString(raw)
				if !f.TagCaseSensitive {
					s = strings.ToLower(s)
				}
				tags = append(tags, s)
			}
			v = tags
		default:
			texts := make([]string, 0, len(values))
			for _, raw := range values {
				texts = append(texts, scalarString(raw))
			}
			v = texts
		}

		out[f.FieldName()] = v
		present = append(present, f.FieldName())
	}

	out[presentField] = present
	return out, nil
}

// pathSegments splits "$.a[*].b" into ["a[*]", "b"].
func pathSegments(jsonPath string) []string {
	p := strings.TrimPrefix(strings.TrimPrefix(jsonPath, "$"), ".")
	if p == "" {
		return nil
	}
	return strings.Split(p, ".")
}

// extract walks the segments, fanning out on "[*]" and on arrays found at a
// leaf. Nulls and empty strings are dropped.
func extract(v any, segs []string) []any {
	if len(segs) == 0 {
		switch x := v.(type) {
		case nil:
			return nil
		case string:
			if x == "" {
				return nil
			}
			return []any{x}
		case []any:
			var out []any
			for _, e := range x {
				out = append(out, extract(e, nil)...)
			}
			return out
		case map[string]any:
			return nil
		default:
			return []any{x}
		}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	name, wildcard := strings.CutSuffix(segs[0], "[*]")
	child, ok := obj[name]
	if !ok {
		return nil
	}
	if !wildcard {
		return extract(child, segs[1:])
	}

	arr, ok := child.([]any)
	if !ok {
		return nil
	}
	var out []any
	for _, e := range arr {
		out = append(out, extract(e, segs[1:])...)
	}
	return out
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseFloat(x, 64)
		return n, err == nil
	}
	return 0, false
}
