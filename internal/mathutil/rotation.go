package mathutil

import "math"

// Rot returns a 2D rotation by a radians. With Y pointing down the
// rotation is clockwise on screen.
func Rot(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// Angle returns the direction of the vector from a to b in radians.
func Angle(a, b Vec2) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}
