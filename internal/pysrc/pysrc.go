// Package pysrc wraps tree-sitter parsing of Python source.
//
// It owns the parser lifecycle, syntax error detection, and the small set
// of node helpers the detectors share (traversal, positions, docstring and
// literal classification, lexical tokenization).
package pysrc

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Tree is a parsed Python source file.
type Tree struct {
	tree *sitter.Tree
	root *sitter.Node
	src  []byte
}

// Parse parses Python source. A non-nil error means the parser itself
// failed (cancelled context, exhausted memory); syntactically invalid
// input still yields a tree, inspect it with SyntaxError.
func Parse(ctx context.Context, source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse python source: %w", err)
	}

	return &Tree{
		tree: tree,
		root: tree.RootNode(),
		src:  source,
	}, nil
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node {
	return t.root
}

// Source returns the raw source the tree was parsed from.
// The returned slice should not be modified.
func (t *Tree) Source() []byte {
	return t.src
}

// Content returns the source text of a node.
func (t *Tree) Content(n *sitter.Node) string {
	return n.Content(t.src)
}

// SyntaxError reports whether the parse produced error or missing nodes,
// along with the 1-based line of the first such node. Line is 0 when the
// tree is clean.
func (t *Tree) SyntaxError() (line int, ok bool) {
	if !t.root.HasError() {
		return 0, false
	}
	if bad := firstErrorNode(t.root); bad != nil {
		return Line(bad), true
	}
	// HasError without a locatable node still counts as a failed parse.
	return Line(t.root), true
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if bad := firstErrorNode(child); bad != nil {
			return bad
		}
	}
	return nil
}
