package viewport

import "math"

// Threshold is the minimum container change that triggers a recompute.
// Smaller changes are treated as layout noise.
const Threshold = 0.5

// State is the last recorded container/frame geometry and its fitted rect.
type State struct {
	ContainerWidth  float64
	ContainerHeight float64
	FrameWidth      float64
	FrameHeight     float64
	Rect
}

// Tracker recomputes the render rect when the container moves past Threshold
// from the size recorded at the last recompute, or when the frame size
// differs at all.
//
// A non-positive frame size keeps the last known positive one, so a source
// that briefly reports 0×0 does not collapse the mapping.
type Tracker struct {
	fit    Fit
	state  State
	primed bool
}

func NewTracker(fit Fit) *Tracker {
	return &Tracker{fit: fit}
}

// Update records new dimensions and reports whether the rect was recomputed.
// The first call always recomputes.
func (t *Tracker) Update(containerW, containerH, frameW, frameH float64) bool {
	if !(frameW > 0 && frameH > 0) && t.primed {
		frameW, frameH = t.state.FrameWidth, t.state.FrameHeight
	}
	if t.primed &&
		!exceeds(containerW, t.state.ContainerWidth) &&
		!exceeds(containerH, t.state.ContainerHeight) &&
		frameW == t.state.FrameWidth &&
		frameH == t.state.FrameHeight {
		return false
	}

	t.state = State{
		ContainerWidth:  containerW,
		ContainerHeight: containerH,
		FrameWidth:      frameW,
		FrameHeight:     frameH,
		Rect:            Compute(containerW, containerH, frameW, frameH, t.fit),
	}
	t.primed = true
	return true
}

// State returns the current viewport state.
func (t *Tracker) State() State {
	return t.state
}

func exceeds(v, last float64) bool {
	return math.Abs(v-last) > Threshold
}
