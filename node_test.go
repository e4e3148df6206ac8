package treepath

// testNode is a minimal in-memory Node used by the core tests, standing in
// for a provider-owned tree snapshot.
type testNode struct {
	kind     string
	name     string
	text     string
	mods     []string
	span     Span
	parent   *testNode
	children []*testNode
}

func (n *testNode) Kind() string        { return n.kind }
func (n *testNode) Name() string        { return n.name }
func (n *testNode) NumChildren() int    { return len(n.children) }
func (n *testNode) Child(i int) Node    { return n.children[i] }
func (n *testNode) Span() Span          { return n.span }
func (n *testNode) Modifiers() []string { return n.mods }
func (n *testNode) Text() string        { return n.text }
func (n *testNode) Language() string    { return "test" }

func (n *testNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// tn builds a tree node and wires parent back-references.
func tn(kind, name string, children ...*testNode) *testNode {
	n := &testNode{kind: kind, name: name}
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func (n *testNode) withMods(mods ...string) *testNode {
	n.mods = mods
	return n
}

func (n *testNode) withText(text string) *testNode {
	n.text = text
	return n
}

// sampleTree builds the shape most tests share:
//
//	file
//	└── class A
//	    ├── method M (async) — block with if[1], while[1]
//	    └── method Bar — a single if, directly under the method
func sampleTree() (root, classA, methodM, ifInM, whileInM, methodBar, ifInBar *testNode) {
	ifInM = tn("if", "").withText(`if (x) { Console.WriteLine("a"); }`)
	whileInM = tn("while", "").withText("while (true) { }")
	ifInBar = tn("if", "").withText("if (y) { return; }")

	methodM = tn("method", "M", tn("block", "", ifInM, whileInM)).withMods("public", "async")
	methodBar = tn("method", "Bar", ifInBar).withMods("public")
	classA = tn("class", "A", methodM, methodBar).withMods("public")
	root = tn("file", "", classA)
	return
}
