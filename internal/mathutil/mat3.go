package mathutil

// Mat3 is a 2D affine transform in homogeneous form, stored row-major:
// [r0c0, r0c1, r0c2, r1c0, ...]. The last row is always (0, 0, 1).
type Mat3 [9]float64

func Translate(x, y float64) Mat3 {
	return Mat3{1, 0, x, 0, 1, y, 0, 0, 1}
}

func ScaleXY(sx, sy float64) Mat3 {
	return Mat3{sx, 0, 0, 0, sy, 0, 0, 0, 1}
}

// Mat3Mul returns a × b (b is applied first).
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[r*3+c] = a[r*3+0]*b[0*3+c] + a[r*3+1]*b[1*3+c] + a[r*3+2]*b[2*3+c]
		}
	}
	return m
}

// Apply transforms the point p (w=1).
func (m Mat3) Apply(p Vec2) Vec2 {
	return Vec2{
		m[0]*p[0] + m[1]*p[1] + m[2],
		m[3]*p[0] + m[4]*p[1] + m[5],
	}
}

// TRS builds translate(center) × rotate(angle) × scale(sx, sy).
func TRS(center Vec2, angle, sx, sy float64) Mat3 {
	return Mat3Mul(Mat3Mul(Translate(center[0], center[1]), Rot(angle)), ScaleXY(sx, sy))
}
