package db

import (
	"errors"
	"strconv"
	"strings"
)

// StorageType defines the document storage backend for FT indexes (HASH or JSON).
type StorageType string

const (
	// StorageHash stores documents as Redis hashes.
	StorageHash StorageType = "HASH"
	// StorageJSON stores documents as JSON.
	StorageJSON StorageType = "JSON"
)

// IndexFieldType enumerates supported index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is an exact-match tag field.
	IndexFieldTag
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldTag:
		return "TAG"
	case IndexFieldText:
		return "TEXT"
	}
	return "UNKNOWN"
}

// IndexField describes a single field in an index schema.
// Name is a JSONPath into the document ($.a.b, $.a[*], $.a[*].b).
type IndexField struct {
	Name  string
	Alias string // AS alias in FT.CREATE SCHEMA
	Type  IndexFieldType

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool

	// IndexMissing makes absence of the field queryable.
	IndexMissing bool
}

// Path returns the dotted document path of the field ("$.maintainers[*].email" -> "maintainers.email").
func (f *IndexField) Path() string {
	p := strings.TrimPrefix(f.Name, "$.")
	return strings.ReplaceAll(p, "[*]", "")
}

// FieldName returns the name the field is queried by.
func (f *IndexField) FieldName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Path()
}

// IndexDefinition is a complete index definition used by FT.CREATE and the embedded index mapping.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		key := f.FieldName()
		if seen[key] {
			return errors.New("duplicate field name: " + key)
		}
		seen[key] = true
	}

	return nil
}

// Field finds the field of type t stored at the dotted document path.
func (idx *IndexDefinition) Field(path string, t IndexFieldType) (*IndexField, bool) {
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Type == t && f.Path() == path {
			return f, true
		}
	}
	return nil, false
}

// FieldAt finds any field stored at the dotted document path, preferring TAG.
func (idx *IndexDefinition) FieldAt(path string) (*IndexField, bool) {
	if f, ok := idx.Field(path, IndexFieldTag); ok {
		return f, true
	}
	for i := range idx.Fields {
		if idx.Fields[i].Path() == path {
			return &idx.Fields[i], true
		}
	}
	return nil, false
}

// Key returns the storage key of the document id.
func (idx *IndexDefinition) Key(id string) string {
	if len(idx.Prefixes) == 0 {
		return id
	}
	return idx.Prefixes[0] + id
}

// ID strips the key prefix from a storage key.
func (idx *IndexDefinition) ID(key string) string {
	for _, p := range idx.Prefixes {
		if strings.HasPrefix(key, p) {
			return key[len(p):]
		}
	}
	return key
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
