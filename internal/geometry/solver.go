// Package geometry derives the overlay quad transform and material from the
// projected anchor landmarks and the selected style.
package geometry

import (
	"math"

	"overlay-compositor/internal/landmark"
	"overlay-compositor/internal/mathutil"
	"overlay-compositor/internal/style"
	"overlay-compositor/internal/texture"
	"overlay-compositor/internal/viewport"
)

// Size floors, in display pixels, for degenerate detections.
const (
	MinJawWidth   = 32.0
	MinBaseHeight = 24.0
)

// Empirically tuned placement constants.
const (
	CenterBaseFactor      = 0.55 // share of baseHeight below the upper lip
	CenterClearanceFactor = 0.4  // share of mouth clearance added to centerY
	VerticalOffsetFactor  = 0.35 // weight of (chin extension - upper trim)
	CenterBiasFactor      = 0.1  // downward bias as a share of final height
)

// Transform places a unit quad: scaled to ScaleX×ScaleY, rotated by Rotation
// radians and centred at (CenterX, CenterY) in display pixels.
type Transform struct {
	CenterX  float64
	CenterY  float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

// Matrix returns the affine that maps the unit quad [-0.5,0.5]² to the display.
func (t Transform) Matrix() mathutil.Mat3 {
	return mathutil.TRS(mathutil.Vec2{t.CenterX, t.CenterY}, t.Rotation, t.ScaleX, t.ScaleY)
}

// Overlay is a solved quad ready to draw.
type Overlay struct {
	Transform
	Material Material
}

// Solve projects the anchor landmarks of set through rect and solves the
// overlay. It returns false when any anchor is missing; callers must hide the
// overlay for that frame. tex may be nil.
func Solve(set landmark.Set, rect viewport.Rect, s style.Descriptor, tex *texture.Texture) (Overlay, bool) {
	f, ok := landmark.ProjectFeatures(set, rect)
	if !ok {
		return Overlay{}, false
	}
	return SolveFeatures(f, s, tex), true
}

// SolveFeatures computes the overlay from already projected anchors.
func SolveFeatures(f landmark.Features, s style.Descriptor, tex *texture.Texture) Overlay {
	jawWidth := math.Max(mathutil.Dist(f.LeftJaw, f.RightJaw), MinJawWidth)
	baseHeight := math.Max(f.Chin[1]-f.UpperLip[1], MinBaseHeight)
	mouthClearance := (f.LowerLip[1] - f.UpperLip[1]) * s.MouthClearanceRatio

	scaledWidth := jawWidth * s.JawWidthScale
	scaledHeight := baseHeight*(1+s.ChinExtensionRatio) + mouthClearance
	if w, h := tex.Size(); w > 0 && h > 0 {
		scaledHeight = math.Max(scaledWidth*float64(h)/float64(w), scaledHeight)
	}

	rotation := mathutil.Angle(f.LeftJaw, f.RightJaw)
	verticalOffset := (s.ChinExtensionRatio - s.UpperTrimRatio) * baseHeight * VerticalOffsetFactor

	center := mathutil.Mid(f.LeftJaw, f.RightJaw)
	centerY := f.UpperLip[1] +
		baseHeight*CenterBaseFactor +
		mouthClearance*CenterClearanceFactor +
		verticalOffset

	return Overlay{
		Transform: Transform{
			CenterX:  center[0],
			CenterY:  centerY + scaledHeight*CenterBiasFactor,
			ScaleX:   positive(scaledWidth),
			ScaleY:   positive(scaledHeight),
			Rotation: rotation,
		},
		Material: NewMaterial(s, tex),
	}
}

// minScale keeps the quad non-degenerate when a style ratio is zero or
// negative.
const minScale = 1.0

func positive(v float64) float64 {
	if !(v >= minScale) {
		return minScale
	}
	return v
}
