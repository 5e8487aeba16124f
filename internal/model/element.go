package model

// Element is a serializable copy of a Node and its descendants.
type Element struct {
	ID       int       `yaml:"i"           json:"i"`           // Pre-order index, root = 1
	Role     string    `yaml:"r"           json:"r"`           // Role display name
	Name     string    `yaml:"n,omitempty" json:"n,omitempty"` // Accessible name
	Bounds   [4]int    `yaml:"b"           json:"b"`           // [x, y, width, height]
	Children []Element `yaml:"c,omitempty" json:"c,omitempty"` // Child elements
}

// Snapshot deep-copies the current tree into Elements. It returns nil when
// the tree has no root yet.
func (t *Tree) Snapshot() *Element {
	var out *Element
	t.Read(func(root *Node) {
		if root == nil {
			return
		}
		next := 1
		el := snapshotNode(root, &next)
		out = &el
	})
	return out
}

func snapshotNode(n *Node, next *int) Element {
	el := Element{
		ID:     *next,
		Role:   n.Role.String(),
		Name:   n.Name,
		Bounds: n.Extents.Bounds(),
	}
	*next++
	if len(n.children) > 0 {
		el.Children = make([]Element, 0, len(n.children))
		for _, c := range n.children {
			el.Children = append(el.Children, snapshotNode(c, next))
		}
	}
	return el
}

// CountElements returns the number of elements in the forest.
func CountElements(elements []Element) int {
	n := 0
	for i := range elements {
		n += 1 + CountElements(elements[i].Children)
	}
	return n
}

// TrimDepth returns a copy of elements with descendants deeper than depth
// removed. depth 1 keeps only the given elements. depth <= 0 is unlimited.
func TrimDepth(elements []Element, depth int) []Element {
	if depth <= 0 {
		return elements
	}
	result := make([]Element, len(elements))
	for i, el := range elements {
		result[i] = el
		if depth == 1 {
			result[i].Children = nil
		} else {
			result[i].Children = TrimDepth(el.Children, depth-1)
		}
	}
	return result
}
