// Package highlight tracks the picked (sticky) and hovered (transient)
// rectangles shown over the overlay, and the detail popup for the picked node.
//
// Only rectangles are stored, never node references, so the state stays valid
// while the tree grows. State is not safe for concurrent use; the owner
// serializes access.
package highlight

import (
	"github.com/mj1618/atspi-inspector/internal/model"
	"github.com/mj1618/atspi-inspector/internal/pick"
)

// Mode is the visible highlight mode.
type Mode int

const (
	Idle Mode = iota
	Hovering
	Picked
)

func (m Mode) String() string {
	switch m {
	case Hovering:
		return "hovering"
	case Picked:
		return "picked"
	default:
		return "idle"
	}
}

// Popup is the detail popup opened by a press on a node. Anchor is a 1x1
// region at the press point, in viewport coordinates.
type Popup struct {
	Anchor model.Rect `yaml:"anchor" json:"anchor"`
	Name   string     `yaml:"name"   json:"name"`
	Role   string     `yaml:"role"   json:"role"`
	Path   string     `yaml:"path"   json:"path"`
}

// State holds the highlight rectangles.
type State struct {
	picked  *model.Rect
	hovered *model.Rect
	popup   *Popup
}

// Hover applies a pointer move. hit is the pick result at the pointer, ok is
// false on a miss. It returns true when a redraw is needed.
func (s *State) Hover(hit pick.Hit, ok bool) bool {
	if !ok {
		return s.Leave()
	}
	if s.hovered != nil && *s.hovered == hit.Extents {
		return false
	}
	r := hit.Extents
	s.hovered = &r
	return true
}

// Leave applies the pointer leaving the surface.
func (s *State) Leave() bool {
	if s.hovered == nil {
		return false
	}
	s.hovered = nil
	return true
}

// Press applies a button press at viewport position (x, y). On a hit the
// picked rectangle is set and a popup anchored at the press point is returned.
// On a miss the picked rectangle and any popup are cleared and nil is
// returned. Presses always need a redraw.
func (s *State) Press(x, y int, hit pick.Hit, ok bool) *Popup {
	if !ok {
		s.picked = nil
		s.popup = nil
		return nil
	}
	r := hit.Extents
	s.picked = &r
	s.popup = &Popup{
		Anchor: model.Rect{X: x, Y: y, Width: 1, Height: 1},
		Name:   hit.Name,
		Role:   hit.RoleName(),
		Path:   hit.Path,
	}
	return s.popup
}

// PopupClosed applies the popup being dismissed by any means. It always
// needs a redraw.
func (s *State) PopupClosed() bool {
	s.picked = nil
	s.popup = nil
	return true
}

// Clear resets everything; used whenever the tree is cleared or replaced.
func (s *State) Clear() {
	s.picked = nil
	s.hovered = nil
	s.popup = nil
}

// Picked returns the picked rectangle, if any.
func (s *State) Picked() (model.Rect, bool) {
	if s.picked == nil {
		return model.Rect{}, false
	}
	return *s.picked, true
}

// Hovered returns the hovered rectangle, if any.
func (s *State) Hovered() (model.Rect, bool) {
	if s.hovered == nil {
		return model.Rect{}, false
	}
	return *s.hovered, true
}

// Popup returns the open popup, or nil.
func (s *State) Popup() *Popup {
	return s.popup
}

// Mode returns the visible mode. Picked takes precedence over hovered.
func (s *State) Mode() Mode {
	switch {
	case s.picked != nil:
		return Picked
	case s.hovered != nil:
		return Hovering
	default:
		return Idle
	}
}

// Highlight returns the rectangle to fill: picked if set, else hovered.
func (s *State) Highlight() (model.Rect, Mode) {
	if s.picked != nil {
		return *s.picked, Picked
	}
	if s.hovered != nil {
		return *s.hovered, Hovering
	}
	return model.Rect{}, Idle
}

// Snapshot is a copy of the state for readers outside the owner's lock.
type Snapshot struct {
	Mode    string      `yaml:"mode"              json:"mode"`
	Picked  *model.Rect `yaml:"picked,omitempty"  json:"picked,omitempty"`
	Hovered *model.Rect `yaml:"hovered,omitempty" json:"hovered,omitempty"`
	Popup   *Popup      `yaml:"popup,omitempty"   json:"popup,omitempty"`
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{Mode: s.Mode().String()}
	if r, ok := s.Picked(); ok {
		snap.Picked = &r
	}
	if r, ok := s.Hovered(); ok {
		snap.Hovered = &r
	}
	if s.popup != nil {
		p := *s.popup
		snap.Popup = &p
	}
	return snap
}
