// Package snapshot writes composited frames to disk as lossless WebP and
// records them in a JSON manifest.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/HugoSmits86/nativewebp"

	"overlay-compositor/internal/logging"
)

// ManifestName is the file Close writes next to the frames.
const ManifestName = "manifest.json"

// Meta describes the compositor state a frame was captured in.
type Meta struct {
	Style      string  `json:"style,omitempty"`
	Visible    bool    `json:"visible"`
	Stale      bool    `json:"stale"`
	TextureRef string  `json:"texture,omitempty"`
	Opacity    float64 `json:"opacity,omitempty"`
}

// Entry is one manifest record.
type Entry struct {
	Tick   uint64 `json:"tick"`
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Meta
}

type job struct {
	tick uint64
	img  *image.NRGBA
	meta Meta
}

// Writer encodes frames on a small worker pool so the caller never waits on
// disk or encoding. Frames arriving while the queue is full are dropped.
type Writer struct {
	dir      string
	maxWidth int

	jobs chan job
	wg   sync.WaitGroup

	mu      sync.Mutex
	entries []Entry
	errs    []error
	dropped int
	closed  bool
}

// NewWriter creates dir and starts workers. maxWidth > 0 downscales wider
// frames before encoding.
func NewWriter(dir string, maxWidth, workers int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create %s: %w", dir, err)
	}
	if workers <= 0 {
		workers = 1
	}
	w := &Writer{
		dir:      dir,
		maxWidth: maxWidth,
		jobs:     make(chan job, workers*2),
	}
	for range workers {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for j := range w.jobs {
				w.encode(j)
			}
		}()
	}
	return w, nil
}

// Write queues img for encoding as frame tick. The writer takes ownership of
// img. It reports false when the frame was dropped.
func (w *Writer) Write(tick uint64, img *image.NRGBA, meta Meta) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || img == nil {
		return false
	}
	select {
	case w.jobs <- job{tick: tick, img: img, meta: meta}:
		return true
	default:
		w.dropped++
		logging.Logger().Debug("snapshot: queue full, frame dropped", "tick", tick)
		return false
	}
}

func (w *Writer) encode(j job) {
	img := Downscale(j.img, w.maxWidth)
	name := fmt.Sprintf("frame_%06d.webp", j.tick)
	if err := writeWebP(filepath.Join(w.dir, name), img); err != nil {
		logging.Logger().Warn("snapshot: write failed", "tick", j.tick, "error", err)
		w.mu.Lock()
		w.errs = append(w.errs, err)
		w.mu.Unlock()
		return
	}

	b := img.Bounds()
	w.mu.Lock()
	w.entries = append(w.entries, Entry{
		Tick:   j.tick,
		Image:  name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Meta:   j.meta,
	})
	w.mu.Unlock()
}

func writeWebP(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("snapshot: close %s: %w", path, cerr)
		}
	}()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", path, err)
	}
	return nil
}

// Close waits for queued frames, writes the manifest and returns every
// encode error joined together.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()

	w.wg.Wait()

	entries := w.entries
	if entries == nil {
		entries = []Entry{}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Tick < entries[j].Tick })
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: manifest: %w", err)
	}
	path := filepath.Join(w.dir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		w.errs = append(w.errs, fmt.Errorf("snapshot: write %s: %w", path, err))
	}
	logging.Logger().Info("snapshot: closed",
		"frames", len(w.entries),
		"dropped", w.dropped,
		"errors", len(w.errs),
	)
	return errors.Join(w.errs...)
}

// Entries returns the frames written so far.
func (w *Writer) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.entries...)
}

// Dropped is the number of frames discarded because the queue was full.
func (w *Writer) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}
