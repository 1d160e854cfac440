package pysrc

import sitter "github.com/smacker/go-tree-sitter"

// Walk traverses named nodes depth-first, parents before children.
// The callback returns false to skip the node's subtree.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		Walk(n.NamedChild(i), fn)
	}
}

// WalkAll traverses every node including anonymous tokens.
// The callback returns false to skip the node's subtree.
func WalkAll(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		WalkAll(child, fn)
	}
}

// NamedChildren returns all named children of a node.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	children := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		children = append(children, n.NamedChild(i))
	}
	return children
}

// ChildrenOfType returns the named children with the given node type.
func ChildrenOfType(n *sitter.Node, nodeType string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == nodeType {
			out = append(out, child)
		}
	}
	return out
}

// FirstChildOfType returns the first named child with the given type,
// or nil.
func FirstChildOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}

// HasChildOfType reports whether any direct child, named or anonymous,
// has the given type. Keyword tokens like "async" surface this way.
func HasChildOfType(n *sitter.Node, nodeType string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child != nil && child.Type() == nodeType {
			return true
		}
	}
	return false
}
