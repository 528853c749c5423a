// Package replay feeds recorded landmark detections and a still frame through
// the compositor, standing in for a live camera and detector.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"overlay-compositor/internal/landmark"
)

// DefaultFPS is the source frame rate assumed when a recording omits it.
const DefaultFPS = 30

// Recording is a timed sequence of detections over a fixed frame size.
type Recording struct {
	FrameWidth  int
	FrameHeight int
	FPS         float64
	Samples     []Sample
}

// Sample is the detection for every source frame from At until the next sample.
// A nil Set records that no face was found.
type Sample struct {
	At  time.Duration
	Set landmark.Set
}

type jsonRecording struct {
	FrameWidth  int         `json:"frame_width"`
	FrameHeight int         `json:"frame_height"`
	FPS         float64     `json:"fps"`
	Frames      []jsonFrame `json:"frames"`
}

// jsonFrame stores either a full landmark list or only the captured points
// keyed by index. Count sizes a sparse set; indices not listed are undefined.
type jsonFrame struct {
	TimeMS int64                `json:"t_ms"`
	Count  int                  `json:"count,omitempty"`
	Points map[string][]float64 `json:"points"`
	Full   []landmark.Landmark  `json:"landmarks,omitempty"`
}

// LoadRecording reads a JSON recording from path.
func LoadRecording(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: read %s: %w", path, err)
	}
	rec, err := ParseRecording(data)
	if err != nil {
		return nil, fmt.Errorf("replay: parse %s: %w", path, err)
	}
	return rec, nil
}

// ParseRecording decodes a recording and sorts its samples by time.
func ParseRecording(data []byte) (*Recording, error) {
	var raw jsonRecording
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.FrameWidth <= 0 || raw.FrameHeight <= 0 {
		return nil, fmt.Errorf("frame size %dx%d must be positive", raw.FrameWidth, raw.FrameHeight)
	}
	rec := &Recording{
		FrameWidth:  raw.FrameWidth,
		FrameHeight: raw.FrameHeight,
		FPS:         raw.FPS,
		Samples:     make([]Sample, 0, len(raw.Frames)),
	}
	if rec.FPS <= 0 {
		rec.FPS = DefaultFPS
	}

	for i, f := range raw.Frames {
		set, err := f.set()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		rec.Samples = append(rec.Samples, Sample{
			At:  time.Duration(f.TimeMS) * time.Millisecond,
			Set: set,
		})
	}
	sort.SliceStable(rec.Samples, func(i, j int) bool {
		return rec.Samples[i].At < rec.Samples[j].At
	})
	return rec, nil
}

func (f jsonFrame) set() (landmark.Set, error) {
	if len(f.Full) > 0 {
		if len(f.Full) > landmark.MaxLandmarks {
			return nil, fmt.Errorf("%d landmarks exceeds %d", len(f.Full), landmark.MaxLandmarks)
		}
		return landmark.Set(f.Full), nil
	}
	if len(f.Points) == 0 {
		return nil, nil
	}

	n := f.Count
	if n <= 0 {
		n = landmark.MaxLandmarks
	}
	if n > landmark.MaxLandmarks {
		return nil, fmt.Errorf("count %d exceeds %d", n, landmark.MaxLandmarks)
	}
	set := make(landmark.Set, n)
	for i := range set {
		set[i] = landmark.Undefined
	}
	for key, xyz := range f.Points {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= n {
			return nil, fmt.Errorf("landmark index %q out of range", key)
		}
		if len(xyz) < 2 {
			return nil, fmt.Errorf("landmark %d: want [x,y] or [x,y,z]", idx)
		}
		l := landmark.Landmark{X: xyz[0], Y: xyz[1]}
		if len(xyz) > 2 {
			l.Z = xyz[2]
		}
		set[idx] = l
	}
	return set, nil
}

// Duration is the time of the last sample.
func (r *Recording) Duration() time.Duration {
	if len(r.Samples) == 0 {
		return 0
	}
	return r.Samples[len(r.Samples)-1].At
}

// At returns the sample in effect at media time t.
func (r *Recording) At(t time.Duration) (Sample, bool) {
	i := sort.Search(len(r.Samples), func(i int) bool { return r.Samples[i].At > t })
	if i == 0 {
		return Sample{}, false
	}
	return r.Samples[i-1], true
}
