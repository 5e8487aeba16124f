package model

import "fmt"

// Point is a coordinate in the tree's (root window) coordinate space.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Rect is an axis-aligned rectangle in window coordinates.
// The zero Rect is the sentinel used for objects without geometry.
type Rect struct {
	X      int `yaml:"x" json:"x" toml:"x"`
	Y      int `yaml:"y" json:"y" toml:"y"`
	Width  int `yaml:"w" json:"w" toml:"w"`
	Height int `yaml:"h" json:"h" toml:"h"`
}

// NoExtents is the sentinel rectangle for objects that do not support geometry.
var NoExtents = Rect{}

// IsEmpty reports whether r has no area. Empty rectangles contain no points.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r. The left and top edges are
// inclusive, the right and bottom edges exclusive.
func (r Rect) Contains(p Point) bool {
	if r.IsEmpty() {
		return false
	}
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Bounds returns r as [x, y, width, height].
func (r Rect) Bounds() [4]int {
	return [4]int{r.X, r.Y, r.Width, r.Height}
}

// RectFromBounds converts [x, y, width, height] to a Rect.
func RectFromBounds(b [4]int) Rect {
	return Rect{X: b[0], Y: b[1], Width: b[2], Height: b[3]}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}
