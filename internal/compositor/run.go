package compositor

import (
	"context"
	"time"

	"overlay-compositor/internal/logging"
)

// DefaultTickRate is the display refresh rate used when none is configured.
const DefaultTickRate = 60

// Run ticks at rate Hz until ctx is cancelled. A tick that overruns the
// interval delays the next one; missed ticks are dropped, never queued.
func (c *Compositor) Run(ctx context.Context, rate int) error {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	logging.Logger().Info("compositor: render loop started", "rate_hz", rate)
	for {
		select {
		case <-ctx.Done():
			st := c.Debug()
			logging.Logger().Info("compositor: render loop stopped",
				"ticks", st.Tick,
				"detections", st.Detections,
			)
			return nil
		case now := <-ticker.C:
			c.Tick(ctx, now)
		}
	}
}
