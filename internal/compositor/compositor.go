// Package compositor runs the per-tick overlay pipeline: it tracks viewport
// changes, runs detection once per new source frame, solves the overlay quad
// and submits one draw per tick.
//
// All render state is owned by a Compositor and mutated only inside Tick.
// Texture loads run in the background and are picked up by later ticks.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"overlay-compositor/internal/geometry"
	"overlay-compositor/internal/landmark"
	"overlay-compositor/internal/logging"
	"overlay-compositor/internal/mathutil"
	"overlay-compositor/internal/raster"
	"overlay-compositor/internal/style"
	"overlay-compositor/internal/texture"
	"overlay-compositor/internal/viewport"
)

// DefaultStaleAfter is how long without a successful detection before the
// stale flag is raised.
const DefaultStaleAfter = 2 * time.Second

// Options configures a Compositor. Source, Detector and Surface are required.
type Options struct {
	Source   FrameSource
	Detector Detector
	Surface  raster.Surface

	// Textures resolves style textures without blocking. Nil renders every
	// style with its flat colour.
	Textures texture.Resolver

	// Container reports the display size. Defaults to 1280×720.
	Container ContainerFunc

	Fit           viewport.Fit
	StaleAfter    time.Duration
	ShowLandmarks bool

	// DrawFrame composites the source image under the overlay.
	DrawFrame bool

	// OnStatus receives status line changes. Repeats are suppressed.
	OnStatus func(Status)
	// OnTick runs after each draw, on the tick goroutine.
	OnTick func(DebugState)
}

// DebugState is a snapshot of the compositor after a tick.
type DebugState struct {
	Tick       uint64
	Viewport   viewport.State
	Visible    bool
	Stale      bool
	StyleID    string
	Transform  geometry.Transform
	Opacity    float64
	HasTexture bool
	TextureRef string
	Landmarks  int
	Detections uint64
}

// Compositor owns the render state for one surface.
type Compositor struct {
	opts    Options
	tracker *viewport.Tracker

	selected      atomic.Pointer[style.Descriptor]
	showLandmarks atomic.Bool
	last          atomic.Pointer[DebugState]

	mu         sync.Mutex // serializes ticks
	tick       uint64
	started    bool
	haveFrame  bool
	lastTS     time.Duration
	landmarks  landmark.Set
	lastDetect time.Time
	detections uint64
	detectErr  bool
	applied    string
	overlay    geometry.Overlay
	points     []mathutil.Vec2
	status     statusLine
}

// New validates opts and returns a Compositor with no style selected.
func New(opts Options) (*Compositor, error) {
	switch {
	case opts.Source == nil:
		return nil, errors.New("compositor: missing frame source")
	case opts.Detector == nil:
		return nil, errors.New("compositor: missing detector")
	case opts.Surface == nil:
		return nil, errors.New("compositor: missing surface")
	}
	if opts.Container == nil {
		opts.Container = FixedContainer(1280, 720)
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}

	c := &Compositor{
		opts:    opts,
		tracker: viewport.NewTracker(opts.Fit),
		status:  statusLine{fn: opts.OnStatus},
	}
	c.showLandmarks.Store(opts.ShowLandmarks)
	c.last.Store(&DebugState{})
	return c, nil
}

// Select makes s the active style. Nil hides the overlay. Safe to call from
// any goroutine; takes effect on the next tick.
func (c *Compositor) Select(s *style.Descriptor) {
	if s == nil {
		c.selected.Store(nil)
		return
	}
	d := *s
	c.selected.Store(&d)
}

// SetShowLandmarks toggles the landmark point cloud.
func (c *Compositor) SetShowLandmarks(show bool) {
	c.showLandmarks.Store(show)
}

// Visible reports whether the overlay was drawn on the last tick.
func (c *Compositor) Visible() bool {
	return c.last.Load().Visible
}

// Stale reports whether no detection has succeeded within StaleAfter.
func (c *Compositor) Stale() bool {
	return c.last.Load().Stale
}

// Debug returns the state recorded by the last tick.
func (c *Compositor) Debug() DebugState {
	return *c.last.Load()
}

// Tick runs one frame of the pipeline at time now and returns the resulting
// state. It never fails: detector and texture problems degrade the frame.
func (c *Compositor) Tick(ctx context.Context, now time.Time) DebugState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	if !c.started {
		c.started = true
		c.lastDetect = now
	}
	log := logging.Logger()

	frame, ready := c.opts.Source.Current()
	cw, ch := c.opts.Container()
	var fw, fh float64
	if ready {
		fw, fh = float64(frame.Width), float64(frame.Height)
	}
	if c.tracker.Update(cw, ch, fw, fh) {
		st := c.tracker.State()
		c.opts.Surface.Resize(surfaceDim(cw), surfaceDim(ch))
		log.Debug("compositor: viewport changed",
			"container_w", st.ContainerWidth, "container_h", st.ContainerHeight,
			"frame_w", st.FrameWidth, "frame_h", st.FrameHeight,
			"render_w", st.Width, "render_h", st.Height,
			"offset_x", st.OffsetX, "offset_y", st.OffsetY,
		)
	}
	rect := c.tracker.State().Rect

	// Detect once per new source frame; otherwise reuse the last result.
	var current landmark.Set
	if ready {
		if !c.haveFrame || frame.Timestamp != c.lastTS {
			c.haveFrame, c.lastTS = true, frame.Timestamp
			c.landmarks = c.detect(ctx, frame, now)
			if len(c.landmarks) > 0 {
				c.lastDetect = now
			}
		}
		current = c.landmarks
	}

	scene := raster.Scene{Rect: rect}
	if ready && c.opts.DrawFrame {
		scene.Frame = frame.Image
	}

	st := DebugState{
		Tick:       c.tick,
		Viewport:   c.tracker.State(),
		Landmarks:  len(current),
		Detections: c.detections,
	}

	if sel := c.selected.Load(); sel != nil {
		st.StyleID = sel.ID
		if len(current) > 0 {
			var tex *texture.Texture
			if sel.Texture != "" && c.opts.Textures != nil {
				tex, _ = c.opts.Textures.Resolve(sel.Texture)
			}
			if ov, ok := geometry.Solve(current, rect, *sel, tex); ok {
				c.overlay = ov
				scene.Overlay = &c.overlay
				c.noteMaterial(sel.ID, ov.Material)

				st.Visible = true
				st.Transform = ov.Transform
				st.Opacity = ov.Material.Opacity()
				if m, ok := ov.Material.(geometry.Textured); ok {
					st.HasTexture = true
					st.TextureRef = m.Texture.Ref
				}
			}
		}
	}

	if c.showLandmarks.Load() && len(current) > 0 {
		c.points = landmark.ProjectAll(c.points, current, rect)
		scene.Points = c.points
	}

	c.opts.Surface.Draw(scene)

	st.Stale = now.Sub(c.lastDetect) > c.opts.StaleAfter
	switch {
	case c.detectErr:
		c.status.publish(Status{Text: "Landmark detection failed.", Variant: StatusError})
	case st.Stale:
		c.status.publish(statusNotFound)
	case len(current) > 0:
		c.status.publish(statusActive)
	}

	c.last.Store(&st)
	if c.opts.OnTick != nil {
		c.opts.OnTick(st)
	}
	return st
}

// detect calls the detector, converting errors and panics into "no face".
func (c *Compositor) detect(ctx context.Context, f Frame, now time.Time) (set landmark.Set) {
	c.detections++
	c.detectErr = false
	defer func() {
		if r := recover(); r != nil {
			c.detectErr = true
			set = nil
			logging.Logger().Error("compositor: detector panic", "panic", fmt.Sprint(r))
		}
	}()

	set, err := c.opts.Detector.Detect(ctx, f, now)
	if err != nil {
		c.detectErr = true
		logging.Logger().Warn("compositor: detection failed", "timestamp", f.Timestamp, "error", err)
		return nil
	}
	if len(set) > landmark.MaxLandmarks {
		set = set[:landmark.MaxLandmarks]
	}
	return set
}

// noteMaterial logs switches between textured and flat-colour rendering.
func (c *Compositor) noteMaterial(styleID string, m geometry.Material) {
	ref := ""
	if t, ok := m.(geometry.Textured); ok {
		ref = t.Texture.Ref
	}
	if ref == c.applied {
		return
	}
	if ref != "" {
		logging.Logger().Info("compositor: texture applied", "style", styleID, "ref", ref)
	} else {
		logging.Logger().Info("compositor: texture cleared", "style", styleID)
	}
	c.applied = ref
}

func surfaceDim(v float64) int {
	if !(v >= 1) {
		return 1
	}
	return int(math.Ceil(v))
}
