package inspector

import (
	"github.com/mj1618/atspi-inspector/internal/highlight"
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/pick"
)

// SetViewport updates the overlay size used to scale pointer positions.
func (in *Inspector) SetViewport(vp pick.Viewport) {
	in.mu.Lock()
	in.viewport = vp
	in.mu.Unlock()
	in.requestRedraw()
}

// Viewport returns the current overlay size.
func (in *Inspector) Viewport() pick.Viewport {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.viewport
}

// Scale returns the current overlay scale for the tree.
func (in *Inspector) Scale() float64 {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.scaleLocked()
}

func (in *Inspector) scaleLocked() float64 {
	if in.current == nil {
		return 1
	}
	return pick.TreeScale(in.current.tree, in.viewport)
}

// pickLocked resolves a viewport position against the current tree.
func (in *Inspector) pickLocked(x, y float64) (pick.Hit, bool) {
	if in.current == nil {
		return pick.Hit{}, false
	}
	p := pick.ToTreeSpace(x, y, in.scaleLocked())
	return pick.Tree(in.current.tree, p)
}

// Pick resolves a viewport position without changing the highlight.
func (in *Inspector) Pick(x, y float64) (pick.Hit, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pickLocked(x, y)
}

// PickTreePoint resolves a point already in tree coordinates.
func (in *Inspector) PickTreePoint(p model.Point) (pick.Hit, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.current == nil {
		return pick.Hit{}, false
	}
	return pick.Tree(in.current.tree, p)
}

// PointerMove handles the pointer moving to viewport position (x, y). It
// reports whether the overlay needs a redraw.
func (in *Inspector) PointerMove(x, y float64) bool {
	in.mu.Lock()
	hit, ok := in.pickLocked(x, y)
	changed := in.highlight.Hover(hit, ok)
	in.mu.Unlock()
	if changed {
		in.requestRedraw()
	}
	return changed
}

// PointerLeave handles the pointer leaving the overlay.
func (in *Inspector) PointerLeave() bool {
	in.mu.Lock()
	changed := in.highlight.Leave()
	in.mu.Unlock()
	if changed {
		in.requestRedraw()
	}
	return changed
}

// Press handles a button press at viewport position (x, y). It returns the
// detail popup to show, or nil on a miss.
func (in *Inspector) Press(x, y float64) *highlight.Popup {
	in.mu.Lock()
	hit, ok := in.pickLocked(x, y)
	popup := in.highlight.Press(int(x), int(y), hit, ok)
	var out *highlight.Popup
	if popup != nil {
		p := *popup
		out = &p
	}
	in.mu.Unlock()
	in.requestRedraw()
	return out
}

// ClosePopup handles the detail popup closing. The picked highlight goes
// with it, so the overlay always needs a redraw.
func (in *Inspector) ClosePopup() bool {
	in.mu.Lock()
	changed := in.highlight.PopupClosed()
	in.mu.Unlock()
	in.requestRedraw()
	return changed
}

// Highlight returns a copy of the highlight state.
func (in *Inspector) Highlight() highlight.Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.highlight.Snapshot()
}

// State summarizes the session.
type State struct {
	Selected  *model.Identity    `yaml:"selected,omitempty" json:"selected,omitempty"`
	Building  bool               `yaml:"building"           json:"building"`
	Nodes     int                `yaml:"nodes"              json:"nodes"`
	Scale     float64            `yaml:"scale"              json:"scale"`
	Viewport  pick.Viewport      `yaml:"viewport"           json:"viewport"`
	Highlight highlight.Snapshot `yaml:"highlight"          json:"highlight"`
	Error     string             `yaml:"error,omitempty"    json:"error,omitempty"`
}

// State returns a summary of the session.
func (in *Inspector) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	s := State{
		Scale:     in.scaleLocked(),
		Viewport:  in.viewport,
		Highlight: in.highlight.Snapshot(),
	}
	if in.current != nil {
		root := in.current.root
		s.Selected = &root
		s.Building = !in.current.finished()
		s.Nodes = in.current.tree.Size()
	}
	if in.lastErr != nil {
		s.Error = in.lastErr.Error()
	}
	return s
}
