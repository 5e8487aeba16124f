package pick

import (
	"math"

	"github.com/mj1618/atspi-inspector/internal/model"
)

// Viewport is the drawing surface the overlay renders into, in logical
// pixels. DeviceScale is the number of device pixels per logical pixel.
type Viewport struct {
	Width       int     `yaml:"width"        json:"width"        toml:"width"`
	Height      int     `yaml:"height"       json:"height"       toml:"height"`
	DeviceScale float64 `yaml:"device_scale" json:"device_scale" toml:"device_scale"`
}

// Scale returns the factor that fits root extents into the viewport without
// ever enlarging: min(vw/rw, vh/rh, 1). Degenerate extents or viewports
// yield 1.
func Scale(extents model.Rect, vp Viewport) float64 {
	if extents.IsEmpty() || vp.Width <= 0 || vp.Height <= 0 {
		return 1
	}
	xs := float64(vp.Width) / float64(extents.Width)
	ys := float64(vp.Height) / float64(extents.Height)
	return math.Min(math.Min(xs, ys), 1)
}

// TreeScale is Scale for the current root of t, or 1 if there is none.
func TreeScale(t *model.Tree, vp Viewport) float64 {
	extents, ok := t.RootExtents()
	if !ok {
		return 1
	}
	return Scale(extents, vp)
}

// ToTreeSpace converts a pointer position in viewport (logical) coordinates
// to tree coordinates. Fractions are truncated toward zero.
func ToTreeSpace(x, y, scale float64) model.Point {
	if scale <= 0 {
		scale = 1
	}
	return model.Point{X: int(x / scale), Y: int(y / scale)}
}

// FromDevice converts device-pixel coordinates to logical viewport
// coordinates.
func (vp Viewport) FromDevice(x, y float64) (float64, float64) {
	if vp.DeviceScale <= 0 {
		return x, y
	}
	return x / vp.DeviceScale, y / vp.DeviceScale
}
