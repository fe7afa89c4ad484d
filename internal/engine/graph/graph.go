// Package graph holds the node hierarchy of a model.
package graph

import (
	"errors"
	"fmt"

	"github.com/Faultbox/skinrig/pkg/math"
)

var (
	// ErrNoRoot is returned when New is given a nil root.
	ErrNoRoot = errors.New("graph: no root node")
	// ErrEmptyName is returned for a node without a name.
	ErrEmptyName = errors.New("graph: node has empty name")
	// ErrDuplicateName is returned when two nodes share a name.
	ErrDuplicateName = errors.New("graph: duplicate node name")
	// ErrCycle is returned when a node is reachable through more than one path.
	ErrCycle = errors.New("graph: node reachable more than once")
)

// Node is one element of the hierarchy. Rest is the local transform
// relative to the parent. Meshes lists indices into the owning asset's
// mesh table.
type Node struct {
	Name     string
	Rest     math.Mat4
	Children []*Node
	Meshes   []int
}

// NewNode creates a node with an identity rest transform.
func NewNode(name string, children ...*Node) *Node {
	return &Node{Name: name, Rest: math.Identity(), Children: children}
}

// Graph is a validated node tree with a name index. It is read-only after New.
type Graph struct {
	root  *Node
	index map[string]*Node
	order []string
}

// New validates the tree under root and builds the name index.
func New(root *Node) (*Graph, error) {
	if root == nil {
		return nil, ErrNoRoot
	}

	g := &Graph{
		root:  root,
		index: make(map[string]*Node),
	}
	seen := make(map[*Node]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if n == nil {
			return nil
		}
		if seen[n] {
			return fmt.Errorf("%w: %q", ErrCycle, n.Name)
		}
		seen[n] = true

		if n.Name == "" {
			return ErrEmptyName
		}
		if _, dup := g.index[n.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, n.Name)
		}
		g.index[n.Name] = n
		g.order = append(g.order, n.Name)

		for _, c := range n.Children {
			if err := visit(c); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return g, nil
}

// Root returns the root node.
func (g *Graph) Root() *Node { return g.root }

// Find returns the node with the given name.
func (g *Graph) Find(name string) (*Node, bool) {
	n, ok := g.index[name]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Names returns node names in depth-first order. The slice must not be modified.
func (g *Graph) Names() []string { return g.order }

// Walk visits every node depth-first, parents before children, passing the
// world transform of the parent (identity for the root). fn returns the
// node's own world transform, which its children inherit. Returning false
// skips the node's subtree.
func (g *Graph) Walk(fn func(n *Node, parentWorld math.Mat4) (math.Mat4, bool)) {
	walk(g.root, math.Identity(), fn)
}

func walk(n *Node, parent math.Mat4, fn func(*Node, math.Mat4) (math.Mat4, bool)) {
	if n == nil {
		return
	}
	world, ok := fn(n, parent)
	if !ok {
		return
	}
	for _, c := range n.Children {
		walk(c, world, fn)
	}
}

// RootInverse returns the inverse of the root's rest transform. A singular
// root yields identity.
func (g *Graph) RootInverse() math.Mat4 {
	return g.root.Rest.Inverse()
}
