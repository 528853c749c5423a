package mathutil

import "math"

// Vec2 is a 2-component vector in display-surface pixels (value type).
type Vec2 [2]float64

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v[0], v[1])
}

// Dist returns |a - b|.
func Dist(a, b Vec2) float64 {
	return a.Sub(b).Len()
}

// Mid returns the midpoint of a and b.
func Mid(a, b Vec2) Vec2 {
	return a.Add(b).Scale(0.5)
}

// Finite reports whether both components are finite.
func (v Vec2) Finite() bool {
	return IsFinite(v[0]) && IsFinite(v[1])
}
