package raster

import "image"

// FrameBuffer holds the render target as premultiplied RGBA, row-major,
// with no padding between rows.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8 // RGBA interleaved, len = W*H*4
}

// NewFrameBuffer allocates a transparent w×h buffer. Sizes below one pixel
// are clamped to one.
func NewFrameBuffer(w, h int) *FrameBuffer {
	w, h = max(w, 1), max(h, 1)
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
	}
}

// Clear resets every pixel to transparent black.
func (fb *FrameBuffer) Clear() {
	clear(fb.Color)
}

// RGBA returns an image view sharing the buffer's pixels.
func (fb *FrameBuffer) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Color,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

// blend composites a non-premultiplied colour with coverage a∈[0,1] over
// the pixel at byte offset i.
func (fb *FrameBuffer) blend(i int, r, g, b uint8, a float64) {
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	inv := 1 - a
	p := fb.Color[i : i+4 : i+4]
	p[0] = clamp255(float64(r)*a + float64(p[0])*inv)
	p[1] = clamp255(float64(g)*a + float64(p[1])*inv)
	p[2] = clamp255(float64(b)*a + float64(p[2])*inv)
	p[3] = clamp255(255*a + float64(p[3])*inv)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
