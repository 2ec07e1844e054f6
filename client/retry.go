package client

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/roomrental/landlordauth/api"
)

// withRetry runs fn up to maxRetries+1 times, retrying only transient
// failures. Non-transient failures return immediately; after the last
// attempt the last error is surfaced as-is.
func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		c.logger.Warn("request attempt failed",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if api.KindOf(err) != api.KindTransient {
			return err
		}
		if attempt == c.maxRetries {
			break
		}

		delay := c.backoff(attempt)
		if c.onRetry != nil {
			c.onRetry(op, attempt+1, delay)
		}
		c.logger.Debug("retrying",
			zap.String("op", op),
			zap.Duration("delay", delay))

		if err := c.sleep(ctx, delay); err != nil {
			// Context ended while waiting; the last failure is more useful
			// to the caller than the cancellation.
			return lastErr
		}
	}

	if c.onRetryExhausted != nil {
		c.onRetryExhausted(op)
	}
	return lastErr
}

// backoff doubles the base delay per attempt and adds random jitter, so
// delays within one call never decrease by more than the jitter cap.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay + c.jitter(c.maxJitter)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}
