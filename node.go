package treepath

import "strings"

// Point is a position in source text. Line is 1-based, Column is 0-based,
// following tree-sitter's convention.
type Point struct {
	Line   int
	Column int
}

// Span is the source range covered by a node.
type Span struct {
	Start Point
	End   Point
}

// Node is a single node in an immutable syntax tree snapshot, borrowed from
// an external tree provider. Implementations must be comparable (pointer
// types are) so evaluation can de-duplicate result sets, and the tree must
// not change for the lifetime of the snapshot.
type Node interface {
	// Kind returns the node's type tag (e.g. "class", "method", "if").
	Kind() string
	// Name returns the node's declared name, or "" for anonymous nodes
	// such as statements and blocks.
	Name() string
	// NumChildren and Child expose the ordered child sequence.
	NumChildren() int
	Child(i int) Node
	// Parent returns the enclosing node, or nil at the root.
	Parent() Node
	// Span returns the node's source range.
	Span() Span
	// Modifiers returns the node's modifier flags (async, static, ...).
	Modifiers() []string
	// Text returns the rendered source text of the node.
	Text() string
	// Language returns the language tag of the containing tree.
	Language() string
}

// SymbolInfo carries semantic properties for a node, supplied by an
// optional symbol-resolution hook. Properties keys are attribute names as
// they appear in path predicates.
type SymbolInfo struct {
	Kind       string
	FullName   string
	Properties map[string]string
}

// SymbolProvider resolves semantic information for a node. It is consulted
// only by attribute predicates whose names are not part of the syntactic
// core (@name, @type, @contains, @matches); providers are optional and a
// failed resolution is a non-match, never an error.
type SymbolProvider interface {
	Resolve(n Node) (*SymbolInfo, bool)
}

// hasModifier reports whether flag is in the node's modifier set,
// case-insensitively. An absent flag is false, never an error.
func hasModifier(n Node, flag string) bool {
	for _, m := range n.Modifiers() {
		if strings.EqualFold(m, flag) {
			return true
		}
	}
	return false
}

// kindMatches applies a node test to a type tag: "" and "*" match any tag,
// anything else is a case-insensitive exact match. Wildcards apply only
// inside name predicates, never at the node-test level.
func kindMatches(n Node, test string) bool {
	if test == "" || test == "*" {
		return true
	}
	return strings.EqualFold(n.Kind(), test)
}
