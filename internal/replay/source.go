package replay

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"overlay-compositor/internal/compositor"
	"overlay-compositor/internal/landmark"
	"overlay-compositor/internal/texture"
)

// Detector answers detections from a Recording by frame timestamp.
type Detector struct {
	Rec *Recording
}

// Detect returns the sample in effect at f.Timestamp. Before the first sample
// no face is reported.
func (d Detector) Detect(ctx context.Context, f compositor.Frame, _ time.Time) (landmark.Set, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := d.Rec.At(f.Timestamp)
	if !ok {
		return nil, nil
	}
	return s.Set, nil
}

// StillSource serves one image as a video whose timestamp advances at FPS
// from the first call to Current.
type StillSource struct {
	Image image.Image
	FPS   float64
	// Now defaults to time.Now.
	Now func() time.Time

	width, height int
	once          sync.Once
	start         time.Time
}

// NewStillSource returns a source over img. A nil img yields a flat grey
// frame of the given size.
func NewStillSource(img image.Image, width, height int, fps float64) *StillSource {
	if img != nil && !img.Bounds().Empty() {
		b := img.Bounds()
		width, height = b.Dx(), b.Dy()
	} else {
		img = greyFrame(width, height)
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &StillSource{Image: img, FPS: fps, width: width, height: height}
}

// Current returns the frame for the current clock time.
func (s *StillSource) Current() (compositor.Frame, bool) {
	now := s.clock()
	s.once.Do(func() { s.start = now })
	return compositor.Frame{
		Image:     s.Image,
		Width:     s.width,
		Height:    s.height,
		Timestamp: s.frameTime(now.Sub(s.start)),
	}, s.width > 0 && s.height > 0
}

// frameTime snaps elapsed to the start of the frame it falls in.
func (s *StillSource) frameTime(elapsed time.Duration) time.Duration {
	if elapsed < 0 {
		return 0
	}
	period := time.Duration(float64(time.Second) / s.FPS)
	if period <= 0 {
		return elapsed
	}
	return elapsed - elapsed%period
}

func (s *StillSource) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func greyFrame(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	grey := image.NewUniform(color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff})
	draw.Draw(img, img.Bounds(), grey, image.Point{}, draw.Src)
	return img
}

// LoadFrame decodes a still frame image from disk.
func LoadFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open frame %s: %w", path, err)
	}
	defer f.Close()

	img, err := texture.Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("replay: decode frame %s: %w", path, err)
	}
	return img, nil
}
