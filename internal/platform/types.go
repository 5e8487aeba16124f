package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/atspi-inspector/internal/model"
)

// ParseBBox parses a "x,y,w,h" string into a Rect.
func ParseBBox(s string) (*model.Rect, error) {
	vals, err := parseInts(s, 4)
	if err != nil {
		return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
	}
	return &model.Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// ParsePoint parses an "x,y" string into a pair of floats.
func ParsePoint(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid point %q: expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return x, y, nil
}

// ParseSize parses a "WxH" string such as "1280x800".
func ParseSize(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q: dimensions must be positive", s)
	}
	return w, h, nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values", n)
	}
	vals := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
