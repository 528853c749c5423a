package compositor

import (
	"context"
	"image"
	"time"

	"overlay-compositor/internal/landmark"
)

// Frame is the freshest image from the video source.
type Frame struct {
	Image     image.Image // may be nil when only geometry is needed
	Width     int
	Height    int
	Timestamp time.Duration // media time; changes when the source advances
}

// FrameSource yields the latest available frame. ok is false until the
// source has produced its first frame.
type FrameSource interface {
	Current() (f Frame, ok bool)
}

// Detector finds face landmarks in a frame. It returns a nil Set when no face
// is present. Only the first face is used.
type Detector interface {
	Detect(ctx context.Context, f Frame, now time.Time) (landmark.Set, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, f Frame, now time.Time) (landmark.Set, error)

func (fn DetectorFunc) Detect(ctx context.Context, f Frame, now time.Time) (landmark.Set, error) {
	return fn(ctx, f, now)
}

// ContainerFunc reports the current display-surface size.
type ContainerFunc func() (width, height float64)

// FixedContainer returns a ContainerFunc with a constant size.
func FixedContainer(w, h float64) ContainerFunc {
	return func() (float64, float64) { return w, h }
}
