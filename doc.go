// Package treepath implements a structural path-query engine for syntax
// trees: an XPath-like expression language for locating nodes, plus a
// stable addressing scheme for naming nodes across queries.
//
// # Expressions
//
// A path is a sequence of steps separated by / (child) or // (descendant),
// each step carrying a node test and optional bracketed predicates:
//
//	//method[@name='GetUser*']//if
//	//class[UserController]/method[last()]
//	/file/class/method[@async and not(@name='Main')]
//
// Steps may name an explicit axis: ancestor::, ancestor-or-self::,
// following-sibling::, preceding-sibling::. The .. step selects the parent.
// Node tests match type tags case-insensitively; * matches any tag.
//
// Predicates filter the step's candidate set: name patterns (with * and ?
// wildcards), positions (3, last(), last()-1), attribute comparisons
// (@type, @contains, @matches), modifier flags (async, static, public...),
// string functions (contains, starts-with, ends-with), and the and/or/not
// combinators.
//
// # Usage
//
// Trees come from a provider implementing the [Node] interface; the
// internal/tsbridge package adapts tree-sitter parse trees. Evaluation is a
// pure function of the expression and an immutable tree snapshot:
//
//	nodes, err := treepath.Find("//method[@name='M']//if", root)
//
// [StablePath] renders a deterministic address for any node, and
// [ResolvePath] re-resolves such an address against a fresh snapshot.
// [Session] holds the mutable per-session state: capacity-bounded markers
// and a statement registry for re-addressing earlier results.
package treepath
