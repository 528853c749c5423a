package texture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/sync/singleflight"

	"overlay-compositor/internal/logging"
)

var (
	// ErrUnresolved is returned for a reference whose load failed. Failed
	// references are never retried.
	ErrUnresolved = errors.New("texture: unresolved")
	// ErrNoReference is returned by Fetch for an empty reference.
	ErrNoReference = errors.New("texture: empty reference")
)

// Texture is a decoded, immutable texture handle.
type Texture struct {
	Ref   string
	Image *image.NRGBA
}

// Size returns the intrinsic pixel dimensions.
func (t *Texture) Size() (w, h int) {
	if t == nil || t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Resolver returns a texture handle without blocking, or false while the
// reference is still loading, has failed, or is empty.
type Resolver interface {
	Resolve(ref string) (*Texture, bool)
}

// State is the lifecycle of a cache entry.
type State int

const (
	Absent State = iota
	Pending
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Cache memoizes textures by reference. Each reference is loaded at most
// once; the result (or failure) is kept for the life of the cache.
type Cache struct {
	mu     sync.Mutex
	items  map[string]*cacheEntry
	loader Loader
	group  singleflight.Group
}

type cacheEntry struct {
	state State
	tex   *Texture
}

// NewCache creates a cache that loads through loader.
func NewCache(loader Loader) *Cache {
	return &Cache{
		items:  make(map[string]*cacheEntry),
		loader: loader,
	}
}

// Resolve returns the texture for ref if it is already loaded. On the first
// request it starts a background load and returns false; the texture becomes
// visible to later calls once the load completes.
func (c *Cache) Resolve(ref string) (*Texture, bool) {
	if ref == "" {
		return nil, false
	}

	c.mu.Lock()
	if e, ok := c.items[ref]; ok {
		tex, state := e.tex, e.state
		c.mu.Unlock()
		return tex, state == Resolved
	}
	c.items[ref] = &cacheEntry{state: Pending}
	c.mu.Unlock()

	go c.load(context.Background(), ref)
	return nil, false
}

// Fetch returns the texture for ref, waiting for it to load if needed. It
// shares any load already in flight for ref. Cancelling ctx stops the wait
// but not the load.
func (c *Cache) Fetch(ctx context.Context, ref string) (*Texture, error) {
	if ref == "" {
		return nil, ErrNoReference
	}

	tex, state := c.lookup(ref, true)
	switch state {
	case Resolved:
		return tex, nil
	case Failed:
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, ref)
	}
	return c.load(ctx, ref)
}

// State reports the entry state for ref.
func (c *Cache) State(ref string) State {
	_, state := c.lookup(ref, false)
	return state
}

// Len returns the number of resolved textures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.items {
		if e.state == Resolved {
			n++
		}
	}
	return n
}

// lookup returns the entry for ref. With create set, a missing entry is
// recorded as Pending and reported as Absent so the caller starts the load.
func (c *Cache) lookup(ref string, create bool) (*Texture, State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[ref]
	if !ok {
		if create {
			c.items[ref] = &cacheEntry{state: Pending}
		}
		return nil, Absent
	}
	return e.tex, e.state
}

func (c *Cache) load(ctx context.Context, ref string) (*Texture, error) {
	ch := c.group.DoChan(ref, func() (any, error) {
		// A previous flight for ref may have finished between the caller's
		// state check and this call.
		tex, state := c.lookup(ref, false)
		switch state {
		case Resolved:
			return tex, nil
		case Failed:
			return nil, fmt.Errorf("%w: %s", ErrUnresolved, ref)
		}

		img, err := c.loader.Load(context.WithoutCancel(ctx), ref)
		return c.complete(ref, img, err)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Texture), nil
	}
}

// complete is the only writer of a loaded entry.
func (c *Cache) complete(ref string, img *image.NRGBA, err error) (*Texture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.items[ref]
	if err == nil && img == nil {
		err = errors.New("loader returned no image")
	}
	if err != nil {
		e.state = Failed
		logging.Logger().Warn("texture: load failed", "ref", ref, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", ErrUnresolved, ref, err)
	}

	e.tex = &Texture{Ref: ref, Image: img}
	e.state = Resolved
	b := img.Bounds()
	logging.Logger().Debug("texture: loaded", "ref", ref, "width", b.Dx(), "height", b.Dy())
	return e.tex, nil
}
