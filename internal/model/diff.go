package model

import "fmt"

// ChangeType represents the kind of change between two builds.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// TreeChange represents a single change between two builds of the same root.
type TreeChange struct {
	Type    ChangeType           `yaml:"type"              json:"type"`
	Element *FlatElement         `yaml:"el,omitempty"      json:"el,omitempty"`      // For added: the full element
	ID      int                  `yaml:"id,omitempty"      json:"id,omitempty"`      // For removed/changed: element ID
	Role    string               `yaml:"r,omitempty"       json:"r,omitempty"`       // For removed: role
	Name    string               `yaml:"n,omitempty"       json:"n,omitempty"`       // For removed: name
	Changes map[string][2]string `yaml:"changes,omitempty" json:"changes,omitempty"` // For changed: field diffs
}

// DiffElements compares two flat element lists and returns the changes.
// Elements are matched by their ID (pre-order index), so an insertion early
// in the tree shows up as a run of changes after it.
func DiffElements(prev, curr []FlatElement) []TreeChange {
	prevMap := make(map[int]FlatElement, len(prev))
	for _, el := range prev {
		prevMap[el.ID] = el
	}
	currMap := make(map[int]FlatElement, len(curr))
	for _, el := range curr {
		currMap[el.ID] = el
	}

	var changes []TreeChange
	for _, el := range curr {
		prevEl, existed := prevMap[el.ID]
		if !existed {
			elCopy := el
			changes = append(changes, TreeChange{Type: ChangeAdded, Element: &elCopy})
			continue
		}
		if diffs := diffProperties(prevEl, el); len(diffs) > 0 {
			changes = append(changes, TreeChange{Type: ChangeChanged, ID: el.ID, Changes: diffs})
		}
	}

	for _, el := range prev {
		if _, exists := currMap[el.ID]; !exists {
			changes = append(changes, TreeChange{
				Type: ChangeRemoved,
				ID:   el.ID,
				Role: el.Role,
				Name: el.Name,
			})
		}
	}

	return changes
}

func diffProperties(prev, curr FlatElement) map[string][2]string {
	diffs := make(map[string][2]string)

	if prev.Name != curr.Name {
		diffs["n"] = [2]string{prev.Name, curr.Name}
	}
	if prev.Role != curr.Role {
		diffs["r"] = [2]string{prev.Role, curr.Role}
	}
	if prev.Bounds != curr.Bounds {
		diffs["b"] = [2]string{
			fmt.Sprintf("%v", prev.Bounds),
			fmt.Sprintf("%v", curr.Bounds),
		}
	}
	if prev.Path != curr.Path {
		diffs["p"] = [2]string{prev.Path, curr.Path}
	}

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
