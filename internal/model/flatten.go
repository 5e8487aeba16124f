package model

// FlatElement is an element with a path breadcrumb instead of children.
type FlatElement struct {
	ID     int    `yaml:"i"           json:"i"`
	Role   string `yaml:"r"           json:"r"`
	Name   string `yaml:"n,omitempty" json:"n,omitempty"`
	Bounds [4]int `yaml:"b"           json:"b"`
	Depth  int    `yaml:"d"           json:"d"`
	Path   string `yaml:"p,omitempty" json:"p,omitempty"`
}

// FlattenElements converts a tree of elements into a flat list in pre-order.
// Each element gets a path string showing its location in the tree
// using role names joined with " > ".
func FlattenElements(elements []Element) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", 0, &result)
	}
	return result
}

func flattenRecursive(el Element, parentPath string, depth int, result *[]FlatElement) {
	currentPath := el.Role
	if parentPath != "" {
		currentPath = parentPath + " > " + el.Role
	}

	*result = append(*result, FlatElement{
		ID:     el.ID,
		Role:   el.Role,
		Name:   el.Name,
		Bounds: el.Bounds,
		Depth:  depth,
		Path:   currentPath,
	})

	for _, child := range el.Children {
		flattenRecursive(child, currentPath, depth+1, result)
	}
}
