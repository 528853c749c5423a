// Package viewport maps source-frame coordinates onto a display surface of a
// different size.
package viewport

import (
	"fmt"
	"math"
	"strings"
)

// Fit selects how the source frame is fitted into the container.
type Fit int

const (
	// Contain keeps the whole frame visible and letterboxes one axis.
	Contain Fit = iota
	// Cover fills the container and crops the frame on one axis.
	Cover
)

func (f Fit) String() string {
	switch f {
	case Contain:
		return "contain"
	case Cover:
		return "cover"
	}
	return fmt.Sprintf("Fit(%d)", int(f))
}

// ParseFit accepts "contain" or "cover" (case-insensitive). Empty means Contain.
func ParseFit(s string) (Fit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contain":
		return Contain, nil
	case "cover":
		return Cover, nil
	}
	return Contain, fmt.Errorf("viewport: unknown fit %q", s)
}

// Rect is the fitted render rectangle in container units. Offsets are
// negative when the frame overflows the container (cover).
type Rect struct {
	Width   float64
	Height  float64
	OffsetX float64
	OffsetY float64
}

// Compute returns the render rectangle for a frameW×frameH source inside a
// containerW×containerH surface. Degenerate frame sizes map to the whole
// container.
func Compute(containerW, containerH, frameW, frameH float64, fit Fit) Rect {
	cw := math.Max(containerW, 1)
	ch := math.Max(containerH, 1)
	identity := Rect{Width: cw, Height: ch}

	if !(frameW > 0) || !(frameH > 0) {
		return identity
	}
	frameAspect := frameW / frameH
	containerAspect := cw / ch
	if math.IsNaN(frameAspect) || math.IsInf(frameAspect, 0) ||
		math.IsNaN(containerAspect) || math.IsInf(containerAspect, 0) {
		return identity
	}

	var r Rect
	switch fit {
	case Cover:
		scale := math.Max(cw/frameW, ch/frameH)
		r.Width = frameW * scale
		r.Height = frameH * scale
		r.OffsetX = (cw - r.Width) / 2
		r.OffsetY = (ch - r.Height) / 2
	default:
		if containerAspect > frameAspect {
			r.Height = ch
			r.Width = ch * frameAspect
			r.OffsetX = (cw - r.Width) / 2
		} else {
			r.Width = cw
			r.Height = cw / frameAspect
			r.OffsetY = (ch - r.Height) / 2
		}
	}
	r.Width = math.Max(r.Width, 1)
	r.Height = math.Max(r.Height, 1)
	return r
}
