package treepath

// Axis is a traversal direction for one path step.
type Axis int

const (
	AxisChild Axis = iota
	AxisDescendant
	AxisParent
	AxisAncestor
	AxisAncestorOrSelf
	AxisFollowingSibling
	AxisPrecedingSibling
)

// String returns the axis name as written in path expressions.
func (a Axis) String() string {
	switch a {
	case AxisChild:
		return "child"
	case AxisDescendant:
		return "descendant"
	case AxisParent:
		return "parent"
	case AxisAncestor:
		return "ancestor"
	case AxisAncestorOrSelf:
		return "ancestor-or-self"
	case AxisFollowingSibling:
		return "following-sibling"
	case AxisPrecedingSibling:
		return "preceding-sibling"
	}
	return "unknown"
}

// Step is one element of a parsed path expression: an axis, a node test,
// and zero or more predicates applied in declared order. An empty Test
// matches any node.
type Step struct {
	Axis  Axis
	Test  string
	Preds []Predicate
}

// Expr is a parsed path expression. Evaluating the same Expr against the
// same tree snapshot always yields the same ordered result.
type Expr struct {
	Steps []Step

	src string
}

// String returns the original path text the expression was parsed from.
func (e *Expr) String() string { return e.src }
