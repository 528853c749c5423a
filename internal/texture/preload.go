package texture

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"overlay-compositor/internal/logging"
)

// Preload fetches refs into the cache with at most workers loads in flight.
// A failed reference does not stop the others; their errors are joined.
func Preload(ctx context.Context, c *Cache, refs []string, workers int) (int, error) {
	if workers <= 0 {
		workers = 1
	}
	total := len(refs)
	var (
		loaded atomic.Int64
		mu     sync.Mutex
		errs   []error
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, ref := range refs {
		g.Go(func() error {
			if _, err := c.Fetch(gctx, ref); err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			n := loaded.Add(1)
			logging.Logger().Debug("texture: preloaded", "ref", ref, "done", n, "total", total)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(loaded.Load()), err
	}

	logging.Logger().Info("texture: preload finished",
		"loaded", loaded.Load(),
		"failed", len(errs),
		"elapsed", time.Since(start),
	)
	return int(loaded.Load()), errors.Join(errs...)
}
