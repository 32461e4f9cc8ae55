package caller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atharvaajmera/vigilante-ai-championship/internal/codec"
)

// #region errors

// ErrRateLimitExceeded is returned when every attempt hit a retryable
// overload, quota or rate-limit failure.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// #endregion errors

// #region retry

// complete waits on the throttle once, then tries the backend up to
// MaxAttempts times. Only retryable failures are retried; the delay
// doubles from BackoffBase after each one.
func (c *Client) complete(ctx context.Context, req codec.Request) (string, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return "", fmt.Errorf("throttle: %w", err)
	}

	attempts := c.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		text, err := c.backend.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		if !isRetryable(err) {
			return "", err
		}
		lastErr = err
		if i == attempts-1 {
			break
		}

		delay := c.cfg.BackoffBase * time.Duration(1<<i)
		c.log.Warn("retryable caller failure",
			"kind", req.Kind, "attempt", i+1, "max", attempts, "backoff", delay, "error", err)
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %v", ErrRateLimitExceeded, attempts, lastErr)
}

func isRetryable(err error) bool {
	if errors.Is(err, codec.ErrRetryable) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return codec.IsRetryableMessage(err.Error())
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// #endregion retry
