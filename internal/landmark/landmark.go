// Package landmark holds detected facial keypoints and projects them from
// normalized source-frame space into display-surface pixels.
package landmark

import (
	"math"

	"overlay-compositor/internal/mathutil"
	"overlay-compositor/internal/viewport"
)

// MaxLandmarks is the size of a full face mesh from the detector.
const MaxLandmarks = 478

// Landmark is one keypoint with X and Y normalized to [0,1] of the source
// frame. Z is relative depth and zero when the detector does not report it.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Undefined is a placeholder for an index the detector did not fill.
var Undefined = Landmark{X: math.NaN(), Y: math.NaN()}

// Defined reports whether the landmark carries usable coordinates.
func (l Landmark) Defined() bool {
	return mathutil.IsFinite(l.X) && mathutil.IsFinite(l.Y)
}

// Set is one detection: an ordered, fixed-topology landmark sequence.
// A nil or empty Set means no face.
type Set []Landmark

// Index identifies a named feature in a Set.
type Index int

const (
	UpperLip Index = 13
	LowerLip Index = 14
	Chin     Index = 152
	LeftJaw  Index = 234
	RightJaw Index = 454
)

// At returns the landmark at i, or false when it is out of range or undefined.
func (s Set) At(i Index) (Landmark, bool) {
	if i < 0 || int(i) >= len(s) {
		return Landmark{}, false
	}
	l := s[i]
	return l, l.Defined()
}

// Project maps a normalized landmark into display-surface pixels.
func Project(l Landmark, r viewport.Rect) mathutil.Vec2 {
	return mathutil.Vec2{
		r.OffsetX + l.X*r.Width,
		r.OffsetY + l.Y*r.Height,
	}
}

// ProjectAll projects every defined landmark in s, appending to dst[:0].
func ProjectAll(dst []mathutil.Vec2, s Set, r viewport.Rect) []mathutil.Vec2 {
	dst = dst[:0]
	for _, l := range s {
		if !l.Defined() {
			continue
		}
		dst = append(dst, Project(l, r))
	}
	return dst
}
