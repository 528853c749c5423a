// Package raster is the software render target for the overlay: it draws the
// fitted source frame, the overlay quad and the landmark point cloud.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"overlay-compositor/internal/geometry"
	"overlay-compositor/internal/mathutil"
	"overlay-compositor/internal/viewport"
)

// Scene is everything drawn in one tick.
type Scene struct {
	Frame   image.Image       // source frame; nil draws a transparent background
	Rect    viewport.Rect     // where Frame lands on the surface
	Overlay *geometry.Overlay // nil hides the quad
	Points  []mathutil.Vec2   // projected landmarks; empty hides the cloud
}

// Surface is a drawing target sized by the viewport mapper.
type Surface interface {
	Resize(width, height int)
	Draw(s Scene)
}

// PointStyle configures the landmark cloud.
type PointStyle struct {
	Color color.NRGBA
	Size  float64 // diameter in pixels
}

// DefaultPointStyle draws 6 px discs in light blue at 90% opacity.
var DefaultPointStyle = PointStyle{
	Color: color.NRGBA{R: 0x48, G: 0xb0, B: 0xf7, A: 0xe6},
	Size:  6,
}

// Canvas is a CPU Surface. It is not safe for concurrent use.
type Canvas struct {
	Points PointStyle

	fb     *FrameBuffer
	vec    *vector.Rasterizer
	paint  Paint
	frames uint64
}

// NewCanvas allocates a w×h canvas.
func NewCanvas(w, h int) *Canvas {
	fb := NewFrameBuffer(w, h)
	return &Canvas{
		Points: DefaultPointStyle,
		fb:     fb,
		vec:    vector.NewRasterizer(fb.Width, fb.Height),
	}
}

// Resize reallocates the buffer when the size changes.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if w == c.fb.Width && h == c.fb.Height {
		return
	}
	c.fb = NewFrameBuffer(w, h)
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) {
	return c.fb.Width, c.fb.Height
}

// Frames returns the number of Draw calls so far.
func (c *Canvas) Frames() uint64 {
	return c.frames
}

// Draw redraws the full surface.
func (c *Canvas) Draw(s Scene) {
	c.frames++
	c.fb.Clear()
	dst := c.fb.RGBA()

	if s.Frame != nil && !s.Frame.Bounds().Empty() {
		dr := image.Rect(
			int(math.Round(s.Rect.OffsetX)),
			int(math.Round(s.Rect.OffsetY)),
			int(math.Round(s.Rect.OffsetX+s.Rect.Width)),
			int(math.Round(s.Rect.OffsetY+s.Rect.Height)),
		)
		draw.ApproxBiLinear.Scale(dst, dr, s.Frame, s.Frame.Bounds(), draw.Src, nil)
	}

	if s.Overlay != nil {
		c.setPaint(s.Overlay.Material)
		DrawQuad(c.fb, s.Overlay.Matrix(), &c.paint)
	}

	if len(s.Points) > 0 {
		c.drawPoints(dst, s.Points)
	}
}

func (c *Canvas) setPaint(m geometry.Material) {
	switch m := m.(type) {
	case geometry.Textured:
		c.paint = Paint{Texture: m.Texture.Image, Tint: m.Tint, Alpha: m.Alpha}
	case geometry.Fill:
		c.paint = Paint{Color: m.Color, Alpha: m.Alpha}
	default:
		c.paint = Paint{}
	}
}

// pointSegments is the polygon resolution of a landmark disc.
const pointSegments = 12

func (c *Canvas) drawPoints(dst draw.Image, pts []mathutil.Vec2) {
	r := c.Points.Size / 2
	if r <= 0 {
		return
	}
	c.vec.Reset(c.fb.Width, c.fb.Height)
	for _, p := range pts {
		if p[0] < -r || p[1] < -r || p[0] > float64(c.fb.Width)+r || p[1] > float64(c.fb.Height)+r {
			continue
		}
		for i := 0; i <= pointSegments; i++ {
			a := 2 * math.Pi * float64(i) / pointSegments
			x := float32(p[0] + r*math.Cos(a))
			y := float32(p[1] + r*math.Sin(a))
			if i == 0 {
				c.vec.MoveTo(x, y)
			} else {
				c.vec.LineTo(x, y)
			}
		}
		c.vec.ClosePath()
	}
	c.vec.DrawOp = draw.Over
	c.vec.Draw(dst, dst.Bounds(), image.NewUniform(c.Points.Color), image.Point{})
}

// Snapshot returns a non-premultiplied copy of the current pixels.
func (c *Canvas) Snapshot() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, c.fb.Width, c.fb.Height))
	draw.Draw(out, out.Bounds(), c.fb.RGBA(), image.Point{}, draw.Src)
	return out
}
