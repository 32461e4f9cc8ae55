package caller

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// #region throttle

// Throttle enforces a minimum spacing between outbound model requests.
// One Throttle is shared by every session in the process.
type Throttle struct {
	lim *rate.Limiter
}

// NewThrottle allows one request per interval. The first request passes
// immediately. interval <= 0 disables spacing.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may go out or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.lim.Wait(ctx)
}

// #endregion throttle
