package raster

import (
	"image"
	"image/color"
	"math"

	"overlay-compositor/internal/mathutil"
)

// Paint describes how covered pixels are coloured.
type Paint struct {
	Texture *image.NRGBA // nil paints Color
	Tint    color.NRGBA  // multiplies texels
	Color   color.NRGBA
	Alpha   float64 // overall opacity
}

// edgeEps absorbs rounding in the barycentric weights of pixel centres that
// lie on an edge.
const edgeEps = 1e-9

// RasterizeTriangle fills a screen-space triangle, sampling Paint at the
// interpolated UVs and blending over fb.
//
// Pixels exactly on the edge opposite vertex openEdge are skipped so that two
// triangles sharing that edge do not blend it twice. Pass -1 to keep all
// edges closed.
func RasterizeTriangle(fb *FrameBuffer, p [3]mathutil.Vec2, uv [3]mathutil.Vec2, paint *Paint, openEdge int) {
	x0, y0 := p[0][0], p[0][1]
	x1, y1 := p[1][0], p[1][1]
	x2, y2 := p[2][0], p[2][1]

	// Bounding box over pixel centres
	minX := max(int(math.Floor(min(x0, x1, x2))), 0)
	maxX := min(int(math.Ceil(max(x0, x1, x2))), fb.Width-1)
	minY := max(int(math.Floor(min(y0, y1, y2))), 0)
	maxY := min(int(math.Ceil(max(y0, y1, y2))), fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	tex := paint.Texture
	if tex != nil && tex.Rect.Empty() {
		tex = nil
	}
	flatA := float64(paint.Color.A) / 255 * paint.Alpha
	tintA := float64(paint.Tint.A) / 255 * paint.Alpha

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w := [3]float64{
				(dy12*dsx + dx21*dsy) * invDet,
				(dy20*dsx + dx02*dsy) * invDet,
			}
			w[2] = 1 - w[0] - w[1]
			if w[0] < -edgeEps || w[1] < -edgeEps || w[2] < -edgeEps {
				continue
			}
			if openEdge >= 0 && w[openEdge] <= edgeEps {
				continue
			}

			i := (rowOff + sx) * 4
			if tex == nil {
				fb.blend(i, paint.Color.R, paint.Color.G, paint.Color.B, flatA)
				continue
			}

			u := w[0]*uv[0][0] + w[1]*uv[1][0] + w[2]*uv[2][0]
			v := w[0]*uv[0][1] + w[1]*uv[1][1] + w[2]*uv[2][1]
			cr, cg, cb, ca := SampleTexture(tex, u, v)

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.blend(i,
				mul8(cr, paint.Tint.R),
				mul8(cg, paint.Tint.G),
				mul8(cb, paint.Tint.B),
				float64(ca)/255*tintA,
			)
		}
	}
}

var (
	quadLocal = [4]mathutil.Vec2{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	quadUV    = [4]mathutil.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
)

// DrawQuad maps the unit quad [-0.5,0.5]² through m and fills it as two
// triangles sharing the 0-2 diagonal.
func DrawQuad(fb *FrameBuffer, m mathutil.Mat3, paint *Paint) {
	var c [4]mathutil.Vec2
	for i, p := range quadLocal {
		c[i] = m.Apply(p)
		if !c[i].Finite() {
			return
		}
	}
	RasterizeTriangle(fb,
		[3]mathutil.Vec2{c[0], c[1], c[2]},
		[3]mathutil.Vec2{quadUV[0], quadUV[1], quadUV[2]},
		paint, -1)
	RasterizeTriangle(fb,
		[3]mathutil.Vec2{c[0], c[2], c[3]},
		[3]mathutil.Vec2{quadUV[0], quadUV[2], quadUV[3]},
		paint, 2)
}

func mul8(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}
