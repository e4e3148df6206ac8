package treepath

import (
	"strconv"
	"strings"
)

// declarationTags are type tags treated as declaration boundaries for
// stable addressing and nesting depth.
var declarationTags = map[string]bool{
	"class":       true,
	"struct":      true,
	"interface":   true,
	"enum":        true,
	"record":      true,
	"namespace":   true,
	"module":      true,
	"method":      true,
	"function":    true,
	"constructor": true,
	"property":    true,
	"field":       true,
	"delegate":    true,
	"event":       true,
}

// statementTags are type tags counted as statement or block nesting
// levels. Anonymous nodes with these tags address by sibling position.
var statementTags = map[string]bool{
	"block":     true,
	"statement": true,
	"if":        true,
	"else":      true,
	"while":     true,
	"do":        true,
	"for":       true,
	"foreach":   true,
	"switch":    true,
	"case":      true,
	"try":       true,
	"catch":     true,
	"finally":   true,
	"using":     true,
	"lock":      true,
	"return":    true,
	"throw":     true,
	"with":      true,
}

// isDeclaration reports whether the node's tag is a declaration boundary.
func isDeclaration(n Node) bool {
	return declarationTags[strings.ToLower(n.Kind())]
}

func isStatement(n Node) bool {
	return statementTags[strings.ToLower(n.Kind())]
}

// addressable reports whether a node contributes a segment to a stable
// path. Punctuation, identifiers and other leaf trivia do not.
func addressable(n Node) bool {
	return isDeclaration(n) || isStatement(n)
}

// StablePath builds a deterministic string address for node, walking
// toward boundary (exclusive) or the tree root when boundary is nil. Named
// declarations render as their declared name, anonymous nodes as
// tag[index] where index is the 1-based position among same-tagged
// siblings. The address is stable within one snapshot; it is not
// guaranteed stable across edits that reorder earlier siblings.
func StablePath(node Node, boundary Node) string {
	var segments []string
	for n := node; n != nil && n != boundary; n = n.Parent() {
		if !addressable(n) {
			continue
		}
		segments = append(segments, segment(n))
	}

	// Reverse into root-to-node order.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return "/" + strings.Join(segments, "/")
}

func segment(n Node) string {
	if name := n.Name(); name != "" {
		return name
	}
	return strings.ToLower(n.Kind()) + "[" + strconv.Itoa(siblingIndex(n)) + "]"
}

// siblingIndex is the 1-based position of n among siblings sharing its
// type tag.
func siblingIndex(n Node) int {
	parent := n.Parent()
	if parent == nil {
		return 1
	}
	idx := 1
	for i := 0; i < parent.NumChildren(); i++ {
		c := parent.Child(i)
		if c == n {
			break
		}
		if strings.EqualFold(c.Kind(), n.Kind()) {
			idx++
		}
	}
	return idx
}

// NestingDepth counts statement and block ancestors strictly between node
// and its nearest enclosing declaration boundary (or boundary/root when no
// declaration encloses it). Top-level statements in a method body have
// depth 1: the body block itself.
func NestingDepth(node Node, boundary Node) int {
	depth := 0
	for n := node.Parent(); n != nil && n != boundary; n = n.Parent() {
		if isDeclaration(n) {
			break
		}
		if isStatement(n) {
			depth++
		}
	}
	return depth
}

// ResolvePath re-resolves a stable path produced by StablePath against a
// (possibly different) snapshot rooted at root. It returns false when the
// address no longer names a node, never a stale reference.
func ResolvePath(root Node, path string) (Node, bool) {
	if root == nil {
		return nil, false
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return root, true
	}
	segs := strings.Split(trimmed, "/")
	current := root
	// An addressable root contributes the leading segment itself, so a
	// path built from that root round-trips.
	if addressable(root) && segmentMatches(root, segs[0]) {
		segs = segs[1:]
	}
	for _, seg := range segs {
		next, ok := resolveSegment(current, seg)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// segmentMatches reports whether n itself is addressed by one segment.
func segmentMatches(n Node, seg string) bool {
	tag, index, byIndex := splitSegment(seg)
	if byIndex {
		return strings.EqualFold(n.Kind(), tag) && siblingIndex(n) == index
	}
	return n.Name() == tag
}

// resolveSegment finds the addressable descendant of n matching one path
// segment, searching only descendants reachable without crossing another
// addressable node.
func resolveSegment(n Node, seg string) (Node, bool) {
	tag, index, byIndex := splitSegment(seg)

	var found Node
	count := 0
	var walk func(Node) bool
	walk = func(cur Node) bool {
		for i := 0; i < cur.NumChildren(); i++ {
			c := cur.Child(i)
			if addressable(c) {
				if byIndex {
					if strings.EqualFold(c.Kind(), tag) {
						count++
						if count == index {
							found = c
							return true
						}
					}
				} else if c.Name() == tag {
					found = c
					return true
				}
				continue
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(n)
	return found, found != nil
}

// splitSegment parses "if[2]" into ("if", 2, true) and "Bar" into
// ("Bar", 0, false).
func splitSegment(seg string) (string, int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 || !strings.HasSuffix(seg, "]") {
		return seg, 0, false
	}
	idx, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil {
		return seg, 0, false
	}
	return seg[:open], idx, true
}
