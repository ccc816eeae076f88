// Package analyze provides the visitor contract and tree traversal shared by
// all analyzers.
package analyze

import (
	"github.com/cognitcode/cognitcode/pkg/pyast/node"
)

// NodeVisitor receives enter/exit callbacks during depth-first traversal.
type NodeVisitor interface {
	// OnEnter is called when entering a node, before its children.
	OnEnter(n *node.Node, depth int)

	// OnExit is called when exiting a node, after its children.
	OnExit(n *node.Node, depth int)
}

// Traverser drives one depth-first pre-order pass over a tree, fanning each
// node out to every registered visitor. Visitors that emit findings observe
// nodes in traversal order: outer constructs before nested ones, siblings
// left to right.
type Traverser struct {
	visitors []NodeVisitor
}

// NewTraverser creates an empty Traverser.
func NewTraverser() *Traverser {
	return &Traverser{
		visitors: make([]NodeVisitor, 0),
	}
}

// RegisterVisitor registers a visitor to be called during traversal.
func (t *Traverser) RegisterVisitor(v NodeVisitor) {
	t.visitors = append(t.visitors, v)
}

// Traverse starts traversal from the root node. Nil roots are a no-op.
func (t *Traverser) Traverse(root *node.Node) {
	if root == nil {
		return
	}

	t.traverseRecursive(root, 0)
}

func (t *Traverser) traverseRecursive(n *node.Node, depth int) {
	for _, v := range t.visitors {
		v.OnEnter(n, depth)
	}

	for _, child := range n.Children {
		t.traverseRecursive(child, depth+1)
	}

	for _, v := range t.visitors {
		v.OnExit(n, depth)
	}
}
