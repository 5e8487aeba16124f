package model

import "strings"

// FilterElements applies filters to a slice of elements, returning only
// matching elements. Roles may be display names or compact codes. An element
// that does not match but has matching descendants is replaced by them.
func FilterElements(elements []Element, roles []string, bbox *[4]int) []Element {
	if len(roles) == 0 && bbox == nil {
		return elements
	}

	var result []Element
	for _, el := range elements {
		var filteredChildren []Element
		if len(el.Children) > 0 {
			filteredChildren = FilterElements(el.Children, roles, bbox)
		}

		roleMatch := len(roles) == 0 || elementMatchesRoles(el, roles)
		bboxMatch := bbox == nil || boundsIntersect(el.Bounds, *bbox)

		if roleMatch && bboxMatch {
			filtered := el
			filtered.Children = filteredChildren
			result = append(result, filtered)
		} else if len(filteredChildren) > 0 {
			result = append(result, filteredChildren...)
		}
	}
	return result
}

func elementMatchesRoles(el Element, roles []string) bool {
	return roleMatches(el.Role, roles)
}

func roleMatches(name string, roles []string) bool {
	role, ok := ParseRole(name)
	for _, r := range roles {
		if strings.EqualFold(r, name) {
			return true
		}
		if ok && role.MatchesRole(r) {
			return true
		}
	}
	return false
}

// FilterByName keeps elements whose name contains text (case-insensitive),
// along with the ancestors needed to reach them.
func FilterByName(elements []Element, text string) []Element {
	if text == "" {
		return elements
	}
	textLower := strings.ToLower(text)
	var result []Element
	for _, el := range elements {
		childMatches := FilterByName(el.Children, text)
		if strings.Contains(strings.ToLower(el.Name), textLower) || len(childMatches) > 0 {
			filtered := el
			filtered.Children = childMatches
			result = append(result, filtered)
		}
	}
	return result
}

// boundsIntersect checks if two [x, y, width, height] rectangles overlap.
func boundsIntersect(a, b [4]int) bool {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}

// Query bundles the element filters shared by the tree command and the MCP
// tree tool. The zero Query keeps everything.
type Query struct {
	Name  string
	Roles []string
	BBox  *[4]int
	Depth int
}

// Apply runs the name filter, then roles and bbox, then the depth limit.
func (q Query) Apply(elements []Element) []Element {
	elements = FilterByName(elements, q.Name)
	elements = FilterElements(elements, q.Roles, q.BBox)
	return TrimDepth(elements, q.Depth)
}

// ApplyFlat is Apply for the flat view. Paths and depths come from the full
// tree, so a match keeps its real breadcrumb even when its ancestors are
// filtered out.
func (q Query) ApplyFlat(elements []Element) []FlatElement {
	var result []FlatElement
	for _, f := range FlattenElements(FilterByName(elements, q.Name)) {
		if q.Depth > 0 && f.Depth >= q.Depth {
			continue
		}
		if len(q.Roles) > 0 && !roleMatches(f.Role, q.Roles) {
			continue
		}
		if q.BBox != nil && !boundsIntersect(f.Bounds, *q.BBox) {
			continue
		}
		result = append(result, f)
	}
	return result
}
