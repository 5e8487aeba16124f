package model

import (
	"errors"
	"sync"
)

// ErrTreeClosed is returned when a builder tries to mutate a tree that has
// been closed because its build was cancelled or the tree was replaced.
var ErrTreeClosed = errors.New("tree closed")

// ErrNoRoot is returned when appending to a tree whose root was never set.
var ErrNoRoot = errors.New("tree has no root")

// Node is a snapshot of one accessible object. Name, Role and Extents are
// fixed at construction; only the children sequence grows, and only through
// the owning Tree.
type Node struct {
	Name    string
	Role    Role
	Extents Rect

	children []*Node
}

// NewNode creates a node with no children.
func NewNode(name string, role Role, extents Rect) *Node {
	return &Node{Name: name, Role: role, Extents: extents}
}

// Children returns the node's children in enumeration order. When the node
// belongs to a Tree that may still be building, call it only inside Tree.Read.
func (n *Node) Children() []*Node {
	return n.children
}

// Tree is the handle shared by one builder and any number of readers.
// The builder only ever appends; readers see a consistent, monotonically
// growing tree through Read.
type Tree struct {
	mu     sync.RWMutex
	root   *Node
	size   int
	closed bool
}

// NewTree returns an empty, open tree.
func NewTree() *Tree {
	return &Tree{}
}

// SetRoot publishes the root node. It fails if the tree is closed or a root
// is already present.
func (t *Tree) SetRoot(n *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTreeClosed
	}
	if t.root != nil {
		return errors.New("tree root already set")
	}
	t.root = n
	t.size = 1
	return nil
}

// Append adds child as the last child of parent. parent must already be
// reachable from the root.
func (t *Tree) Append(parent, child *Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTreeClosed
	}
	if t.root == nil {
		return ErrNoRoot
	}
	parent.children = append(parent.children, child)
	t.size++
	return nil
}

// Close seals the tree. After Close returns no further SetRoot or Append
// succeeds; existing nodes are left in place.
func (t *Tree) Close() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// Closed reports whether the tree has been sealed.
func (t *Tree) Closed() bool {
	if t == nil {
		return true
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Read calls fn with the root (nil if the tree is absent or not yet
// published) while holding off any concurrent append.
func (t *Tree) Read(fn func(root *Node)) {
	if t == nil {
		fn(nil)
		return
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn(t.root)
}

// Size returns the number of nodes currently in the tree.
func (t *Tree) Size() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}

// RootExtents returns the root's extents, or false if there is no root.
func (t *Tree) RootExtents() (Rect, bool) {
	var r Rect
	var ok bool
	t.Read(func(root *Node) {
		if root != nil {
			r, ok = root.Extents, true
		}
	})
	return r, ok
}

// Walk visits every node in pre-order under the read lock. depth is 0 for
// the root.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	t.Read(func(root *Node) {
		if root != nil {
			walk(root, 0, fn)
		}
	})
}

func walk(n *Node, depth int, fn func(*Node, int)) {
	fn(n, depth)
	for _, c := range n.children {
		walk(c, depth+1, fn)
	}
}
