// Package tsbridge adapts tree-sitter parse trees to the treepath Node
// contract. It materializes an immutable snapshot per parse: type tags are
// normalized to the canonical path vocabulary (if, while, method, class,
// ...), declared names and modifier sets are precomputed, and node text is
// sliced lazily from the retained source.
package tsbridge

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/treepath"
)

// Snapshot is one immutable parsed tree. Node references are valid only
// within their snapshot; re-identify nodes across snapshots with
// treepath.StablePath / treepath.ResolvePath.
type Snapshot struct {
	ID       string
	File     string
	Language string
	Root     *SyntaxNode

	src []byte
}

// SyntaxNode implements treepath.Node over a converted tree-sitter node.
type SyntaxNode struct {
	snap      *Snapshot
	kind      string
	name      string
	mods      []string
	span      treepath.Span
	startByte uint32
	endByte   uint32
	parent    *SyntaxNode
	children  []*SyntaxNode
}

func (n *SyntaxNode) Kind() string        { return n.kind }
func (n *SyntaxNode) Name() string        { return n.name }
func (n *SyntaxNode) NumChildren() int    { return len(n.children) }
func (n *SyntaxNode) Span() treepath.Span { return n.span }
func (n *SyntaxNode) Modifiers() []string { return n.mods }
func (n *SyntaxNode) Language() string    { return n.snap.Language }

func (n *SyntaxNode) Child(i int) treepath.Node { return n.children[i] }

func (n *SyntaxNode) Parent() treepath.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Text slices the node's source range from the snapshot.
func (n *SyntaxNode) Text() string {
	return string(n.snap.src[n.startByte:n.endByte])
}

// ParseFile reads and parses a source file, detecting the language from
// the file extension.
func ParseFile(ctx context.Context, path string) (*Snapshot, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("parse %s: unsupported file extension", path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ParseSource(ctx, src, lang, path)
}

// ParseSource parses source bytes in the given language into a Snapshot.
// file is a label carried into marker and statement records.
func ParseSource(ctx context.Context, src []byte, language, file string) (*Snapshot, error) {
	grammar, ok := Grammar(language)
	if !ok {
		return nil, fmt.Errorf("parse %s: unsupported language %q", file, language)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	snap := &Snapshot{
		ID:       uuid.NewString(),
		File:     file,
		Language: language,
		src:      src,
	}
	snap.Root = convert(snap, tree.RootNode(), nil)
	return snap, nil
}

// convert recursively materializes the named portion of the tree-sitter
// tree. Anonymous tokens (punctuation, keywords) are consumed into tags,
// names and modifier sets rather than becoming children.
func convert(snap *Snapshot, raw *sitter.Node, parent *SyntaxNode) *SyntaxNode {
	name := declaredName(raw, snap.src)
	kind := normalizeTag(snap.Language, raw.Type())
	if snap.Language == "go" && raw.Type() == "type_spec" {
		kind = goTypeSpecTag(raw)
	}

	n := &SyntaxNode{
		snap:      snap,
		kind:      kind,
		name:      name,
		mods:      extractModifiers(snap.Language, raw, name),
		startByte: raw.StartByte(),
		endByte:   raw.EndByte(),
		parent:    parent,
		span: treepath.Span{
			Start: treepath.Point{Line: int(raw.StartPoint().Row) + 1, Column: int(raw.StartPoint().Column)},
			End:   treepath.Point{Line: int(raw.EndPoint().Row) + 1, Column: int(raw.EndPoint().Column)},
		},
	}

	for i := 0; i < int(raw.NamedChildCount()); i++ {
		n.children = append(n.children, convert(snap, raw.NamedChild(i), n))
	}
	return n
}

// NodeAt returns the innermost node whose span contains the 1-based line
// and 0-based column, or nil when the position is outside the tree.
func (s *Snapshot) NodeAt(line, column int) *SyntaxNode {
	var find func(n *SyntaxNode) *SyntaxNode
	find = func(n *SyntaxNode) *SyntaxNode {
		if !contains(n.span, line, column) {
			return nil
		}
		for _, c := range n.children {
			if inner := find(c); inner != nil {
				return inner
			}
		}
		return n
	}
	return find(s.Root)
}

func contains(sp treepath.Span, line, column int) bool {
	if line < sp.Start.Line || line > sp.End.Line {
		return false
	}
	if line == sp.Start.Line && column < sp.Start.Column {
		return false
	}
	if line == sp.End.Line && column > sp.End.Column {
		return false
	}
	return true
}
