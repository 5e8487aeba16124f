// Package pick maps a point to the most specific tree node whose extents
// contain it.
//
// Siblings are examined in enumeration order and the first one containing the
// point wins, even when a later sibling is drawn on top of it or is smaller.
package pick

import (
	"strings"

	"github.com/mj1618/atspi-inspector/internal/model"
)

// Pick returns the deepest node containing p, or nil when the root does not
// contain it. It must be called while the tree is held for reading.
func Pick(root *model.Node, p model.Point) *model.Node {
	path := Path(root, p)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// Path returns the chain of nodes from root to the picked node.
func Path(root *model.Node, p model.Point) []*model.Node {
	if root == nil || !root.Extents.Contains(p) {
		return nil
	}
	path := []*model.Node{root}
	for n := root; ; {
		next := firstContaining(n.Children(), p)
		if next == nil {
			return path
		}
		path = append(path, next)
		n = next
	}
}

func firstContaining(children []*model.Node, p model.Point) *model.Node {
	for _, c := range children {
		if c.Extents.Contains(p) {
			return c
		}
	}
	return nil
}

// Hit describes a pick result detached from the tree.
type Hit struct {
	Name    string      `yaml:"name,omitempty" json:"name,omitempty"`
	Role    model.Role  `yaml:"role"           json:"role"`
	Extents model.Rect  `yaml:"extents"        json:"extents"`
	Depth   int         `yaml:"depth"          json:"depth"`
	Path    string      `yaml:"path"           json:"path"`
	Point   model.Point `yaml:"-"              json:"-"`
}

// RoleName returns the picked node's role display name.
func (h Hit) RoleName() string {
	return h.Role.String()
}

// Tree picks against the current state of t. The bool is false on a miss or
// when the tree is absent.
func Tree(t *model.Tree, p model.Point) (Hit, bool) {
	var hit Hit
	var ok bool
	t.Read(func(root *model.Node) {
		path := Path(root, p)
		if len(path) == 0 {
			return
		}
		roles := make([]string, len(path))
		for i, n := range path {
			roles[i] = n.Role.String()
		}
		n := path[len(path)-1]
		hit = Hit{
			Name:    n.Name,
			Role:    n.Role,
			Extents: n.Extents,
			Depth:   len(path) - 1,
			Path:    strings.Join(roles, " > "),
			Point:   p,
		}
		ok = true
	})
	return hit, ok
}
