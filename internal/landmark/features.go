package landmark

import (
	"overlay-compositor/internal/mathutil"
	"overlay-compositor/internal/viewport"
)

// Features are the five projected keypoints that anchor the overlay quad.
type Features struct {
	LeftJaw  mathutil.Vec2
	RightJaw mathutil.Vec2
	Chin     mathutil.Vec2
	UpperLip mathutil.Vec2
	LowerLip mathutil.Vec2
}

// ProjectFeatures projects the anchor keypoints of s. It returns false when
// any of them is missing.
func ProjectFeatures(s Set, r viewport.Rect) (Features, bool) {
	var f Features
	targets := [...]struct {
		idx Index
		dst *mathutil.Vec2
	}{
		{LeftJaw, &f.LeftJaw},
		{RightJaw, &f.RightJaw},
		{Chin, &f.Chin},
		{UpperLip, &f.UpperLip},
		{LowerLip, &f.LowerLip},
	}
	for _, t := range targets {
		l, ok := s.At(t.idx)
		if !ok {
			return Features{}, false
		}
		*t.dst = Project(l, r)
	}
	return f, true
}
