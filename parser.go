package treepath

import (
	"fmt"
	"regexp"
	"strings"
)

// SyntaxError reports a malformed path expression. Pos is a byte offset
// into Path.
type SyntaxError struct {
	Path string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parse %q: %s (offset %d)", e.Path, e.Msg, e.Pos)
}

// ParseOption configures parsing.
type ParseOption func(*parser)

// WithStrictAttributes makes unknown attribute names a SyntaxError at parse
// time instead of the default fail-open behavior, where an unrecognized
// attribute predicate simply matches nothing (or defers to a symbol
// provider at evaluation time).
func WithStrictAttributes() ParseOption {
	return func(p *parser) {
		p.strict = true
	}
}

// Parse parses a path expression. The returned Expr is immutable and safe
// for concurrent evaluation. Parsing never touches a tree.
func Parse(path string, opts ...ParseOption) (*Expr, error) {
	p := &parser{src: path}
	for _, opt := range opts {
		opt(p)
	}
	expr, err := p.parse()
	if err != nil {
		return nil, err
	}
	return expr, nil
}

// modifierFlags are the bare identifiers recognized as boolean modifier
// predicates. Any other bare identifier in a predicate is a name pattern.
var modifierFlags = map[string]bool{
	"async":    true,
	"public":   true,
	"static":   true,
	"abstract": true,
	"virtual":  true,
	"override": true,
}

var axisNames = map[string]Axis{
	"child":             AxisChild,
	"descendant":        AxisDescendant,
	"parent":            AxisParent,
	"ancestor":          AxisAncestor,
	"ancestor-or-self":  AxisAncestorOrSelf,
	"following-sibling": AxisFollowingSibling,
	"preceding-sibling": AxisPrecedingSibling,
}

type parser struct {
	src    string
	pos    int
	strict bool
}

func (p *parser) parse() (*Expr, error) {
	if strings.TrimSpace(p.src) == "" {
		return nil, p.errf(0, "empty path")
	}

	expr := &Expr{src: p.src}
	axis := AxisChild
	if p.consume("//") {
		axis = AxisDescendant
	} else {
		p.consume("/")
	}

	for {
		step, err := p.parseStep(axis)
		if err != nil {
			return nil, err
		}
		expr.Steps = append(expr.Steps, step)

		if p.eof() {
			return expr, nil
		}
		switch {
		case p.consume("//"):
			axis = AxisDescendant
		case p.consume("/"):
			axis = AxisChild
		default:
			return nil, p.errf(p.pos, "unexpected character %q", p.src[p.pos])
		}
		if p.eof() {
			return nil, p.errf(p.pos, "trailing separator")
		}
	}
}

// parseStep parses axis::test[pred]... with defaultAxis applying when no
// explicit axis prefix is present.
func (p *parser) parseStep(defaultAxis Axis) (Step, error) {
	if p.consume("..") {
		step := Step{Axis: AxisParent}
		return p.parsePredicates(step)
	}

	start := p.pos
	ident := p.ident()
	step := Step{Axis: defaultAxis}

	if p.consume("::") {
		axis, ok := axisNames[ident]
		if !ok {
			return Step{}, p.errf(start, "unknown axis %q", ident)
		}
		step.Axis = axis
		ident = p.ident()
		if ident == "" {
			return Step{}, p.errf(p.pos, "empty node test after %q", axis.String()+"::")
		}
	} else if ident == "" {
		return Step{}, p.errf(p.pos, "empty step")
	}

	if ident != "*" {
		step.Test = ident
	}
	return p.parsePredicates(step)
}

func (p *parser) parsePredicates(step Step) (Step, error) {
	for p.consume("[") {
		pred, err := p.parseOr()
		if err != nil {
			return Step{}, err
		}
		p.skipSpace()
		if !p.consume("]") {
			return Step{}, p.errf(p.pos, "unbalanced bracket")
		}
		step.Preds = append(step.Preds, pred)
	}
	return step, nil
}

// Predicate grammar: or-expr := and-expr ('or' and-expr)*
func (p *parser) parseOr() (Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.consumeWord("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orPredicate{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Predicate, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.consumeWord("and") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andPredicate{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Predicate, error) {
	p.skipSpace()
	if p.consumeWord("not") {
		p.skipSpace()
		if !p.consume("(") {
			return nil, p.errf(p.pos, "expected '(' after not")
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(")") {
			return nil, p.errf(p.pos, "unbalanced parenthesis in not(...)")
		}
		return notPredicate{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Predicate, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errf(p.pos, "empty predicate")
	}

	switch c := p.src[p.pos]; {
	case c == '@':
		return p.parseAttribute()
	case c >= '0' && c <= '9':
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		return positionPredicate{index: n}, nil
	case c == '.' && strings.HasPrefix(p.src[p.pos:], "./"):
		return p.parsePathPredicate()
	}

	ident := p.patternIdent()
	if ident == "" {
		return nil, p.errf(p.pos, "unexpected character %q in predicate", p.src[p.pos])
	}

	if ident == "last" && p.consume("()") {
		p.skipSpace()
		if p.consume("-") {
			k, err := p.number()
			if err != nil {
				return nil, err
			}
			return positionPredicate{fromEnd: true, back: k}, nil
		}
		return positionPredicate{fromEnd: true}, nil
	}

	if isStringFunc(ident) && p.peekByte('(') {
		return p.parseStringFunc(ident)
	}

	if modifierFlags[ident] {
		return boolPredicate{flag: ident}, nil
	}

	// Bare identifier: name predicate, e.g. [TestMethod] or [Get*].
	return newNamePredicate(ident), nil
}

// parsePathPredicate parses a relative path used as an existence test,
// e.g. [.//throw] or [./block]: candidates survive when the path matches
// at least one node in their subtree.
func (p *parser) parsePathPredicate() (Predicate, error) {
	p.consume(".")
	axis := AxisChild
	if p.consume("//") {
		axis = AxisDescendant
	} else {
		p.consume("/")
	}

	var steps []Step
	for {
		step, err := p.parseStep(axis)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
		switch {
		case p.consume("//"):
			axis = AxisDescendant
		case p.consume("/"):
			axis = AxisChild
		default:
			return pathPredicate{steps: steps}, nil
		}
	}
}

// parseAttribute parses @name, @name='value', @type=..., @async, etc.
// An attribute with no comparison is a modifier flag test.
func (p *parser) parseAttribute() (Predicate, error) {
	p.consume("@")
	start := p.pos
	name := p.ident()
	if name == "" {
		return nil, p.errf(p.pos, "empty attribute name")
	}
	p.skipSpace()
	if !p.consume("=") {
		return boolPredicate{flag: name}, nil
	}
	value, err := p.value()
	if err != nil {
		return nil, err
	}

	switch name {
	case "name":
		return newNamePredicate(value), nil
	case "type":
		return attrPredicate{name: "type", value: value}, nil
	case "contains":
		return attrPredicate{name: "contains", value: value}, nil
	case "matches":
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, p.errf(start, "invalid pattern %q: %v", value, err)
		}
		return attrPredicate{name: "matches", value: value, re: re}, nil
	default:
		if p.strict {
			return nil, p.errf(start, "unknown attribute %q", name)
		}
		// Fail-open: resolves via a symbol provider at evaluation time,
		// or matches nothing.
		return attrPredicate{name: name, value: value}, nil
	}
}

// parseStringFunc parses contains(X,'v'), starts-with(X,'v'),
// ends-with(X,'v') where X is @name or . (rendered text).
func (p *parser) parseStringFunc(fn string) (Predicate, error) {
	p.consume("(")
	p.skipSpace()

	var target string
	switch {
	case p.consume("."):
		target = targetText
	case p.consume("@"):
		attr := p.ident()
		if attr != "name" {
			return nil, p.errf(p.pos, "%s: unsupported argument @%s", fn, attr)
		}
		target = targetName
	default:
		return nil, p.errf(p.pos, "%s: expected . or @name argument", fn)
	}

	p.skipSpace()
	if !p.consume(",") {
		return nil, p.errf(p.pos, "%s: expected ','", fn)
	}
	value, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.consume(")") {
		return nil, p.errf(p.pos, "%s: unbalanced parenthesis", fn)
	}
	return funcPredicate{fn: fn, target: target, value: value}, nil
}

func isStringFunc(name string) bool {
	return name == "contains" || name == "starts-with" || name == "ends-with"
}

// Scanner helpers.

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peekByte(c byte) bool {
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *parser) consume(s string) bool {
	if strings.HasPrefix(p.src[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

// consumeWord consumes an identifier keyword only when it is not a prefix
// of a longer identifier (so [order] is a name, not an 'or' combinator).
func (p *parser) consumeWord(word string) bool {
	p.skipSpace()
	end := p.pos + len(word)
	if end > len(p.src) || p.src[p.pos:end] != word {
		return false
	}
	if end < len(p.src) && isIdentByte(p.src[end]) {
		return false
	}
	p.pos = end
	return true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ident reads an identifier (letters, digits, _, -) or a lone *.
func (p *parser) ident() string {
	if p.peekByte('*') {
		p.pos++
		return "*"
	}
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// patternIdent reads an identifier that may embed * and ? wildcards.
func (p *parser) patternIdent() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if !isIdentByte(c) && c != '*' && c != '?' && c != '.' {
			break
		}
		// A lone '.' is the text argument of a string function, not part
		// of an identifier.
		if c == '.' && p.pos == start {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// value reads a predicate comparison value: a quoted string ('...' or
// "...") or a bare token.
func (p *parser) value() (string, error) {
	p.skipSpace()
	if p.eof() {
		return "", p.errf(p.pos, "missing value")
	}
	if q := p.src[p.pos]; q == '\'' || q == '"' {
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != q {
			p.pos++
		}
		if p.eof() {
			return "", p.errf(start-1, "unterminated string")
		}
		v := p.src[start:p.pos]
		p.pos++
		return v, nil
	}
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == ']' || c == ')' || c == ',' || c == ' ' || c == '\t' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", p.errf(start, "missing value")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) number() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errf(start, "expected number")
	}
	n := 0
	for _, c := range p.src[start:p.pos] {
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func (p *parser) errf(pos int, format string, args ...any) error {
	return &SyntaxError{Path: p.src, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
