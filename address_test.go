package treepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStablePath_NamedAndAnonymousSegments(t *testing.T) {
	_, classA, methodM, ifInM, whileInM, _, ifInBar := sampleTree()

	assert.Equal(t, "/A/Bar/if[1]", StablePath(ifInBar, nil))
	assert.Equal(t, "/A", StablePath(classA, nil))
	assert.Equal(t, "/A/M", StablePath(methodM, nil))
	assert.Equal(t, "/A/M/block[1]/if[1]", StablePath(ifInM, nil))
	assert.Equal(t, "/A/M/block[1]/while[1]", StablePath(whileInM, nil))
}

func TestStablePath_SameTagSiblingIndex(t *testing.T) {
	if1 := tn("if", "")
	stmt := tn("statement", "")
	if2 := tn("if", "")
	method := tn("method", "M", tn("block", "", if1, stmt, if2))
	tn("file", "", tn("class", "A", method))

	// Index counts same-tagged siblings only: the statement between the
	// two ifs does not shift if[2].
	assert.Equal(t, "/A/M/block[1]/if[1]", StablePath(if1, nil))
	assert.Equal(t, "/A/M/block[1]/statement[1]", StablePath(stmt, nil))
	assert.Equal(t, "/A/M/block[1]/if[2]", StablePath(if2, nil))
}

func TestStablePath_Boundary(t *testing.T) {
	_, classA, methodM, ifInM, _, _, _ := sampleTree()

	assert.Equal(t, "/M/block[1]/if[1]", StablePath(ifInM, classA))
	assert.Equal(t, "/block[1]/if[1]", StablePath(ifInM, methodM))
}

func TestStablePath_Deterministic(t *testing.T) {
	root, _, _, ifInM, _, _, _ := sampleTree()
	first := StablePath(ifInM, nil)
	second := StablePath(ifInM, nil)
	assert.Equal(t, first, second)
	_ = root
}

func TestStablePath_SkipsUnrecognizedAncestors(t *testing.T) {
	// A wrapper node with an unrecognized tag contributes no segment.
	ifNode := tn("if", "")
	method := tn("method", "M", tn("body_wrapper", "", ifNode))
	tn("class", "A", method)

	assert.Equal(t, "/A/M/if[1]", StablePath(ifNode, nil))
}

func TestResolvePath_RoundTrip(t *testing.T) {
	root, _, _, ifInM, whileInM, _, ifInBar := sampleTree()

	for _, n := range []Node{ifInM, whileInM, ifInBar} {
		path := StablePath(n, nil)
		got, ok := ResolvePath(root, path)
		require.True(t, ok, path)
		assert.Same(t, n, got, path)
	}
}

func TestResolvePath_AcrossSnapshots(t *testing.T) {
	// The same address resolves against a structurally equivalent fresh
	// snapshot, which is the reattachment protocol for node identity
	// across edits.
	root1, _, _, ifInM, _, _, _ := sampleTree()
	root2, _, _, ifInM2, _, _, _ := sampleTree()

	path := StablePath(ifInM, nil)
	got, ok := ResolvePath(root2, path)
	require.True(t, ok)
	assert.Same(t, ifInM2, got)
	_ = root1
}

func TestResolvePath_AddressableRoot(t *testing.T) {
	// Paths built from an addressable node used directly as root keep that
	// node's own segment; resolution consumes it before descending.
	_, classA, methodM, ifInM, _, _, _ := sampleTree()

	got, ok := ResolvePath(classA, StablePath(classA, nil))
	require.True(t, ok)
	assert.Same(t, classA, got)

	got, ok = ResolvePath(classA, StablePath(ifInM, nil))
	require.True(t, ok)
	assert.Same(t, ifInM, got)

	got, ok = ResolvePath(methodM, "/M/block[1]/if[1]")
	require.True(t, ok)
	assert.Same(t, ifInM, got)
}

func TestResolvePath_NotFound(t *testing.T) {
	root, _, _, _, _, _, _ := sampleTree()

	_, ok := ResolvePath(root, "/A/Gone/if[1]")
	assert.False(t, ok)
	_, ok = ResolvePath(root, "/A/M/block[1]/if[9]")
	assert.False(t, ok)
	_, ok = ResolvePath(nil, "/A")
	assert.False(t, ok)
}

func TestResolvePath_Root(t *testing.T) {
	root, _, _, _, _, _, _ := sampleTree()
	got, ok := ResolvePath(root, "/")
	require.True(t, ok)
	assert.Same(t, root, got)
}

func TestNestingDepth(t *testing.T) {
	inner := tn("statement", "")
	innerIf := tn("if", "", tn("block", "", inner))
	outerBlock := tn("block", "", innerIf)
	method := tn("method", "M", outerBlock)
	tn("class", "A", method)

	// inner sits under block > if > block before reaching the method.
	assert.Equal(t, 3, NestingDepth(inner, nil))
	assert.Equal(t, 1, NestingDepth(innerIf, nil))
	assert.Equal(t, 0, NestingDepth(outerBlock, nil))
	assert.Equal(t, 0, NestingDepth(method, nil))
}

func TestNestingDepth_NoDeclarationBoundary(t *testing.T) {
	stmt := tn("statement", "")
	root := tn("file", "", tn("block", "", stmt))

	assert.Equal(t, 1, NestingDepth(stmt, nil))
	assert.Equal(t, 0, NestingDepth(stmt, stmt.parent))
	_ = root
}
