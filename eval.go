package treepath

// Evaluator executes parsed path expressions against tree snapshots.
// Evaluation is a pure function of its inputs: the same expression and the
// same snapshot always produce the same ordered, de-duplicated sequence.
// A zero-value Evaluator is usable; options add a symbol provider for
// semantic attribute predicates.
type Evaluator struct {
	provider SymbolProvider
}

// EvalOption configures an Evaluator.
type EvalOption func(*Evaluator)

// WithSymbolProvider wires an optional semantic resolution hook, consulted
// by attribute predicates whose names are not syntactic.
func WithSymbolProvider(p SymbolProvider) EvalOption {
	return func(ev *Evaluator) {
		ev.provider = p
	}
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(opts ...EvalOption) *Evaluator {
	ev := &Evaluator{}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// Find parses path and evaluates it against root. It fails only on a
// malformed path; "nothing matched" is an empty result, not an error.
func Find(path string, root Node, opts ...EvalOption) ([]Node, error) {
	expr, err := Parse(path)
	if err != nil {
		return nil, err
	}
	return NewEvaluator(opts...).Eval(expr, root), nil
}

// Eval folds the expression's steps over a working set seeded with root:
// each step replaces the set with the de-duplicated union of its expansion
// over every node, in first-seen order, then applies the step's predicates
// in declared order. A nil root yields an empty result.
func (ev *Evaluator) Eval(expr *Expr, root Node) []Node {
	if root == nil {
		return nil
	}
	env := &evalEnv{provider: ev.provider}
	current := []Node{root}
	for _, step := range expr.Steps {
		var next []Node
		seen := make(map[Node]bool)
		collect := func(n Node) {
			if n != nil && !seen[n] {
				seen[n] = true
				next = append(next, n)
			}
		}
		for _, n := range current {
			expand(step, n, collect)
		}
		for _, pred := range step.Preds {
			next = pred.apply(next, env)
		}
		current = next
		if len(current) == 0 {
			return nil
		}
	}
	return current
}

// expand emits one step's axis expansion from n in the axis's defined
// order: children and following siblings in document order, descendants
// pre-order, ancestors and preceding siblings nearest-first.
func expand(step Step, n Node, collect func(Node)) {
	switch step.Axis {
	case AxisChild:
		for i := 0; i < n.NumChildren(); i++ {
			if c := n.Child(i); kindMatches(c, step.Test) {
				collect(c)
			}
		}
	case AxisDescendant:
		walkDescendants(n, step.Test, collect)
	case AxisParent:
		if p := n.Parent(); p != nil && kindMatches(p, step.Test) {
			collect(p)
		}
	case AxisAncestor:
		for p := n.Parent(); p != nil; p = p.Parent() {
			if kindMatches(p, step.Test) {
				collect(p)
			}
		}
	case AxisAncestorOrSelf:
		if kindMatches(n, step.Test) {
			collect(n)
		}
		for p := n.Parent(); p != nil; p = p.Parent() {
			if kindMatches(p, step.Test) {
				collect(p)
			}
		}
	case AxisFollowingSibling:
		parent := n.Parent()
		if parent == nil {
			return
		}
		after := false
		for i := 0; i < parent.NumChildren(); i++ {
			c := parent.Child(i)
			if c == n {
				after = true
				continue
			}
			if after && kindMatches(c, step.Test) {
				collect(c)
			}
		}
	case AxisPrecedingSibling:
		parent := n.Parent()
		if parent == nil {
			return
		}
		at := -1
		for i := 0; i < parent.NumChildren(); i++ {
			if parent.Child(i) == n {
				at = i
				break
			}
		}
		for i := at - 1; i >= 0; i-- {
			if c := parent.Child(i); kindMatches(c, step.Test) {
				collect(c)
			}
		}
	}
}

// walkDescendants visits all transitive descendants of n in pre-order,
// excluding n itself.
func walkDescendants(n Node, test string, collect func(Node)) {
	for i := 0; i < n.NumChildren(); i++ {
		c := n.Child(i)
		if kindMatches(c, test) {
			collect(c)
		}
		walkDescendants(c, test, collect)
	}
}
