package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Kind tags a predicate node.
type Kind int

const (
	// KindBool combines children with must/should/must_not semantics.
	KindBool Kind = iota
	// KindTerm matches an exact value in a field.
	KindTerm
	// KindExists matches documents carrying the field at all.
	KindExists
)

// Node is a backend-neutral boolean predicate tree.
// A bool node matches when every must child matches, no must_not child
// matches, and, when should is non-empty, at least one should child matches.
type Node struct {
	kind    Kind
	field   string
	value   string
	must    []Node
	should  []Node
	mustNot []Node
}

// Term creates an exact term condition.
func Term(field, value string) (Node, error) {
	if field == "" {
		return Node{}, fmt.Errorf("filter field is required")
	}
	if value == "" {
		return Node{}, fmt.Errorf("term value is required for field %q", field)
	}
	return Node{kind: KindTerm, field: field, value: value}, nil
}

// Exists creates a field presence condition.
func Exists(field string) (Node, error) {
	if field == "" {
		return Node{}, fmt.Errorf("filter field is required")
	}
	return Node{kind: KindExists, field: field}, nil
}

// Bool validates and creates a boolean node.
func Bool(must, should, mustNot []Node) (Node, error) {
	if len(must) > MaxConditionsPerGroup {
		return Node{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Node{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Node{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Node{kind: KindBool, must: must, should: should, mustNot: mustNot}, nil
}

// Kind returns the node kind.
func (n Node) Kind() Kind { return n.kind }

// Field returns the field of a term or exists node.
func (n Node) Field() string { return n.field }

// Value returns the term value.
func (n Node) Value() string { return n.value }

// Must returns the must children.
func (n Node) Must() []Node { return n.must }

// Should returns the should children.
func (n Node) Should() []Node { return n.should }

// MustNot returns the must-not children.
func (n Node) MustNot() []Node { return n.mustNot }

// IsEmpty reports whether n is a bool node with no children (matches everything).
func (n Node) IsEmpty() bool {
	return n.kind == KindBool && len(n.must) == 0 && len(n.should) == 0 && len(n.mustNot) == 0
}

// Document exposes field values to Matches.
type Document interface {
	// Values returns every value of field; ok is false when the field is absent.
	Values(field string) (values []string, ok bool)
}

// Matches evaluates n against doc.
func (n Node) Matches(doc Document) bool {
	switch n.kind {
	case KindTerm:
		values, _ := doc.Values(n.field)
		for _, v := range values {
			if v == n.value {
				return true
			}
		}
		return false
	case KindExists:
		_, ok := doc.Values(n.field)
		return ok
	}

	for _, c := range n.must {
		if !c.Matches(doc) {
			return false
		}
	}
	for _, c := range n.mustNot {
		if c.Matches(doc) {
			return false
		}
	}
	if len(n.should) == 0 {
		return true
	}
	for _, c := range n.should {
		if c.Matches(doc) {
			return true
		}
	}
	return false
}

// String renders n in a compact prefix notation, for logs and explain output.
func (n Node) String() string {
	switch n.kind {
	case KindTerm:
		return fmt.Sprintf("%s=%q", n.field, n.value)
	case KindExists:
		return fmt.Sprintf("exists(%s)", n.field)
	}
	if n.IsEmpty() {
		return "*"
	}
	out := "bool("
	sep := ""
	group := func(name string, nodes []Node) {
		if len(nodes) == 0 {
			return
		}
		out += sep + name + "["
		for i, c := range nodes {
			if i > 0 {
				out += " "
			}
			out += c.String()
		}
		out += "]"
		sep = " "
	}
	group("must", n.must)
	group("should", n.should)
	group("must_not", n.mustNot)
	return out + ")"
}
