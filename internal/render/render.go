// Package render rasterises the overlay: node outlines for the whole tree and
// the highlight fill, scaled into the viewport.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"
	"strings"

	"github.com/mj1618/atspi-inspector/internal/highlight"
	"github.com/mj1618/atspi-inspector/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Palette holds the overlay colors.
type Palette struct {
	Outline color.NRGBA
	Picked  color.NRGBA
	Hovered color.NRGBA
	Label   color.NRGBA
}

// DefaultPalette draws gray outlines, picked in red and hovered in blue, both
// at half opacity.
var DefaultPalette = Palette{
	Outline: color.NRGBA{R: 128, G: 128, B: 128, A: 255},
	Picked:  color.NRGBA{R: 255, A: 128},
	Hovered: color.NRGBA{B: 255, A: 128},
	Label:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
}

// Frame is everything one overlay frame is drawn from.
type Frame struct {
	Tree      *model.Tree
	Highlight highlight.Snapshot
	Scale     float64
	Width     int
	Height    int
	// Labels draws each node's role code at its top-left corner.
	Labels bool
}

// Draw renders f into a new image of f.Width x f.Height. A zero size falls
// back to the root extents at f.Scale.
func Draw(f Frame, pal Palette) *image.RGBA {
	scale := f.Scale
	if scale <= 0 {
		scale = 1
	}
	w, h := f.Width, f.Height
	if w <= 0 || h <= 0 {
		if root, ok := f.Tree.RootExtents(); ok {
			w = int(float64(root.X+root.Width) * scale)
			h = int(float64(root.Y+root.Height) * scale)
		}
	}
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for _, n := range childrenFirst(f.Tree) {
		r := scaleRect(n.Extents, scale)
		drawRectangle(img, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, pal.Outline)
		if f.Labels {
			drawLabel(img, n.Role.Code(), r.Min.X+2, r.Min.Y+11, pal.Label, color.NRGBA{A: 200})
		}
	}

	switch {
	case f.Highlight.Picked != nil:
		fillRect(img, scaleRect(*f.Highlight.Picked, scale), pal.Picked)
	case f.Highlight.Hovered != nil:
		fillRect(img, scaleRect(*f.Highlight.Hovered, scale), pal.Hovered)
	}
	return img
}

// childrenFirst lists nodes so that every node follows its descendants.
// Parents are outlined last and stay visible over their children.
func childrenFirst(t *model.Tree) []*model.Node {
	var out []*model.Node
	t.Read(func(root *model.Node) {
		if root == nil {
			return
		}
		stack := []*model.Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, n)
			stack = append(stack, n.Children()...)
		}
	})
	// out is parent-before-child; reversing puts children first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func scaleRect(r model.Rect, scale float64) image.Rectangle {
	x := int(float64(r.X) * scale)
	y := int(float64(r.Y) * scale)
	return image.Rect(x, y, x+int(float64(r.Width)*scale), y+int(float64(r.Height)*scale))
}

// fillRect blends c over r, clipped to the image.
func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// drawRectangle draws a one pixel outline, clipped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	r := image.Rect(x1, y1, x2, y2)
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		setClipped(img, bounds, x, r.Min.Y, c)
		setClipped(img, bounds, x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		setClipped(img, bounds, r.Min.X, y, c)
		setClipped(img, bounds, r.Max.X-1, y, c)
	}
}

func setClipped(img *image.RGBA, bounds image.Rectangle, x, y int, c color.Color) {
	if image.Pt(x, y).In(bounds) {
		img.Set(x, y, c)
	}
}

// drawLabel draws text with a one pixel outline. (x, y) is the baseline
// origin.
func drawLabel(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, text, x+dx, y+dy, outlineColor)
		}
	}
	drawString(img, text, x, y, textColor)
}

func drawString(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PNG renders f and returns the encoded bytes.
func PNG(f Frame, pal Palette) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, Draw(f, pal)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: expected #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatColor is the inverse of ParseColor.
func FormatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
