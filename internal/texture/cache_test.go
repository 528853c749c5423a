package texture

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// gatedLoader blocks every load until release is closed and counts calls.
type gatedLoader struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{release: make(chan struct{})}
}

func (l *gatedLoader) Load(ctx context.Context, ref string) (*image.NRGBA, error) {
	l.calls.Add(1)
	<-l.release
	if l.err != nil {
		return nil, l.err
	}
	return image.NewNRGBA(image.Rect(0, 0, 64, 32)), nil
}

func waitState(t *testing.T, c *Cache, ref string, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.State(ref) != want {
		if time.Now().After(deadline) {
			t.Fatalf("state of %s = %v, want %v", ref, c.State(ref), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestResolveIsNonBlocking(t *testing.T) {
	l := newGatedLoader()
	c := NewCache(l)

	if tex, ok := c.Resolve("a.png"); ok || tex != nil {
		t.Fatal("first Resolve must not return a texture")
	}
	if got := c.State("a.png"); got != Pending {
		t.Fatalf("state = %v, want pending", got)
	}
	for i := 0; i < 10; i++ {
		if _, ok := c.Resolve("a.png"); ok {
			t.Fatal("texture available before load completed")
		}
	}

	close(l.release)
	waitState(t, c, "a.png", Resolved)

	tex, ok := c.Resolve("a.png")
	if !ok {
		t.Fatal("texture not available after load")
	}
	if w, h := tex.Size(); w != 64 || h != 32 {
		t.Fatalf("Size = %dx%d", w, h)
	}
	if n := l.calls.Load(); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}
}

func TestConcurrentFetchSharesOneLoad(t *testing.T) {
	l := newGatedLoader()
	c := NewCache(l)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*Texture, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tex, err := c.Fetch(ctx, "shared.png")
			if err != nil {
				t.Errorf("Fetch: %v", err)
			}
			results[i] = tex
		}()
	}
	// Mix in the non-blocking path as well.
	c.Resolve("shared.png")

	time.Sleep(20 * time.Millisecond)
	close(l.release)
	wg.Wait()

	if n := l.calls.Load(); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}
	for i, tex := range results {
		if tex == nil || tex != results[0] {
			t.Fatalf("caller %d got %p, want shared handle %p", i, tex, results[0])
		}
	}
	if tex, ok := c.Resolve("shared.png"); !ok || tex != results[0] {
		t.Fatal("Resolve must return the same handle")
	}
}

func TestFailureIsPermanent(t *testing.T) {
	l := newGatedLoader()
	l.err = errors.New("boom")
	close(l.release)
	c := NewCache(l)

	if _, err := c.Fetch(context.Background(), "bad.png"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("err = %v, want ErrUnresolved", err)
	}
	if got := c.State("bad.png"); got != Failed {
		t.Fatalf("state = %v, want failed", got)
	}
	for i := 0; i < 5; i++ {
		if _, ok := c.Resolve("bad.png"); ok {
			t.Fatal("failed reference resolved")
		}
		if _, err := c.Fetch(context.Background(), "bad.png"); !errors.Is(err, ErrUnresolved) {
			t.Fatalf("err = %v", err)
		}
	}
	if n := l.calls.Load(); n != 1 {
		t.Fatalf("loader called %d times, want 1 (no retry)", n)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestFetchCancelDoesNotAbortLoad(t *testing.T) {
	l := newGatedLoader()
	c := NewCache(l)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, "slow.png")
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	close(l.release)
	waitState(t, c, "slow.png", Resolved)
	if n := l.calls.Load(); n != 1 {
		t.Fatalf("loader called %d times", n)
	}
}

func TestEmptyReference(t *testing.T) {
	c := NewCache(newGatedLoader())
	if _, ok := c.Resolve(""); ok {
		t.Fatal("empty ref resolved")
	}
	if _, err := c.Fetch(context.Background(), ""); !errors.Is(err, ErrNoReference) {
		t.Fatalf("err = %v", err)
	}
	if c.State("") != Absent {
		t.Fatal("empty ref should never be recorded")
	}
}

func TestNilImageIsFailure(t *testing.T) {
	c := NewCache(LoaderFunc(func(context.Context, string) (*image.NRGBA, error) {
		return nil, nil
	}))
	if _, err := c.Fetch(context.Background(), "nil.png"); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("err = %v", err)
	}
}
