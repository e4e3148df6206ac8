package treepath

import (
	"regexp"
	"strings"
)

// Predicate filters an ordered candidate node set. Implementations never
// mutate nodes and, apart from the inherently positional predicate,
// preserve the relative order of survivors.
type Predicate interface {
	apply(nodes []Node, env *evalEnv) []Node
}

// evalEnv carries per-evaluation context into predicate application.
type evalEnv struct {
	provider SymbolProvider
}

func (e *evalEnv) resolve(n Node) (*SymbolInfo, bool) {
	if e == nil || e.provider == nil {
		return nil, false
	}
	return e.provider.Resolve(n)
}

// namePredicate matches a node's declared name. Non-wildcarded patterns
// compare exact and case-sensitive; patterns containing * or ? match
// case-insensitively. Nodes without a declared name never match.
type namePredicate struct {
	pattern  string
	wildcard bool
}

func newNamePredicate(pattern string) namePredicate {
	return namePredicate{
		pattern:  pattern,
		wildcard: strings.ContainsAny(pattern, "*?"),
	}
}

func (p namePredicate) apply(nodes []Node, _ *evalEnv) []Node {
	var out []Node
	for _, n := range nodes {
		name := n.Name()
		if name == "" {
			continue
		}
		if p.wildcard {
			if wildcardMatch(p.pattern, name) {
				out = append(out, n)
			}
		} else if name == p.pattern {
			out = append(out, n)
		}
	}
	return out
}

// positionPredicate selects by index into the entire current candidate
// sequence, not per-parent. index is 1-based; fromEnd selects last()-back.
// Out-of-range selections yield an empty sequence.
type positionPredicate struct {
	index   int
	fromEnd bool
	back    int
}

func (p positionPredicate) apply(nodes []Node, _ *evalEnv) []Node {
	i := p.index - 1
	if p.fromEnd {
		i = len(nodes) - 1 - p.back
	}
	if i < 0 || i >= len(nodes) {
		return nil
	}
	return []Node{nodes[i]}
}

// attrPredicate compares a node attribute: @type against the type tag
// (wildcard-aware), @contains as a substring of the rendered text, and
// @matches as a compiled pattern over the rendered text. Any other
// attribute name defers to the symbol provider and otherwise matches
// nothing (fail-open).
type attrPredicate struct {
	name  string
	value string
	re    *regexp.Regexp
}

func (p attrPredicate) apply(nodes []Node, env *evalEnv) []Node {
	var out []Node
	for _, n := range nodes {
		if p.matches(n, env) {
			out = append(out, n)
		}
	}
	return out
}

func (p attrPredicate) matches(n Node, env *evalEnv) bool {
	switch p.name {
	case "type":
		if strings.ContainsAny(p.value, "*?") {
			return wildcardMatch(p.value, n.Kind())
		}
		return strings.EqualFold(n.Kind(), p.value)
	case "contains":
		return strings.Contains(n.Text(), p.value)
	case "matches":
		return p.re.MatchString(n.Text())
	default:
		info, ok := env.resolve(n)
		if !ok || info == nil {
			return false
		}
		switch p.name {
		case "kind":
			return strings.EqualFold(info.Kind, p.value)
		case "fullname":
			return info.FullName == p.value
		}
		return info.Properties[p.name] == p.value
	}
}

// boolPredicate tests membership in the node's modifier set. An absent
// flag is false, never an error.
type boolPredicate struct {
	flag string
}

func (p boolPredicate) apply(nodes []Node, _ *evalEnv) []Node {
	var out []Node
	for _, n := range nodes {
		if hasModifier(n, p.flag) {
			out = append(out, n)
		}
	}
	return out
}

const (
	targetName = "name"
	targetText = "text"
)

// funcPredicate implements the string functions contains, starts-with and
// ends-with over either the declared name or the rendered text.
type funcPredicate struct {
	fn     string
	target string
	value  string
}

func (p funcPredicate) apply(nodes []Node, _ *evalEnv) []Node {
	var out []Node
	for _, n := range nodes {
		subject := n.Text()
		if p.target == targetName {
			subject = n.Name()
			if subject == "" {
				continue
			}
		}
		var ok bool
		switch p.fn {
		case "contains":
			ok = strings.Contains(subject, p.value)
		case "starts-with":
			ok = strings.HasPrefix(subject, p.value)
		case "ends-with":
			ok = strings.HasSuffix(subject, p.value)
		}
		if ok {
			out = append(out, n)
		}
	}
	return out
}

// pathPredicate keeps candidates whose subtree matches a relative path,
// e.g. [.//throw]. The relative path is evaluated with the candidate as
// its root; a non-empty result keeps the candidate.
type pathPredicate struct {
	steps []Step
}

func (p pathPredicate) apply(nodes []Node, env *evalEnv) []Node {
	ev := &Evaluator{}
	if env != nil {
		ev.provider = env.provider
	}
	expr := &Expr{Steps: p.steps}
	var out []Node
	for _, n := range nodes {
		if len(ev.Eval(expr, n)) > 0 {
			out = append(out, n)
		}
	}
	return out
}

// andPredicate applies right to the survivors of left.
type andPredicate struct {
	left, right Predicate
}

func (p andPredicate) apply(nodes []Node, env *evalEnv) []Node {
	return p.right.apply(p.left.apply(nodes, env), env)
}

// orPredicate unions both sides, de-duplicated, keeping each survivor at
// its first occurrence.
type orPredicate struct {
	left, right Predicate
}

func (p orPredicate) apply(nodes []Node, env *evalEnv) []Node {
	var out []Node
	seen := make(map[Node]bool)
	for _, n := range p.left.apply(nodes, env) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range p.right.apply(nodes, env) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// notPredicate returns the original candidates minus the inner predicate's
// matches, original order preserved.
type notPredicate struct {
	inner Predicate
}

func (p notPredicate) apply(nodes []Node, env *evalEnv) []Node {
	matched := make(map[Node]bool)
	for _, n := range p.inner.apply(nodes, env) {
		matched[n] = true
	}
	var out []Node
	for _, n := range nodes {
		if !matched[n] {
			out = append(out, n)
		}
	}
	return out
}

// wildcardMatch matches pattern against s case-insensitively, with *
// matching any run of characters and ? matching exactly one.
func wildcardMatch(pattern, s string) bool {
	return globMatch(strings.ToLower(pattern), strings.ToLower(s))
}

func globMatch(pattern, s string) bool {
	p := []rune(pattern)
	r := []rune(s)

	// Iterative matcher with single-star backtracking.
	pi, si := 0, 0
	star, starSi := -1, 0
	for si < len(r) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == r[si]):
			pi++
			si++
		case pi < len(p) && p[pi] == '*':
			star = pi
			starSi = si
			pi++
		case star >= 0:
			pi = star + 1
			starSi++
			si = starSi
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
