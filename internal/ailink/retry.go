package ailink

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = 2 * time.Second
	defaultMultiplier = 2.0
	defaultMaxDelay   = 30 * time.Second
)

// withDefaults fills zero values. A negative MaxRetries disables retries.
func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.Multiplier < 1 {
		c.Multiplier = defaultMultiplier
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

func (c RetryConfig) backOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          c.Multiplier,
		MaxInterval:         c.MaxDelay,
	}
	b.Reset()
	return b
}

// retryRateLimited runs op until it succeeds, fails with a non rate-limit
// error, or exhausts cfg.MaxRetries. Only rate-limited failures are retried;
// the wait between attempts grows geometrically from BaseDelay.
func retryRateLimited[T any](ctx context.Context, cfg RetryConfig, op func(attempt int) (T, error), notify func(attempt int, wait time.Duration, err error)) (T, int, error) {
	cfg = cfg.withDefaults()
	attempt := 0

	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		res, err := op(attempt)
		if err != nil && !IsRateLimited(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithMaxTries(uint(cfg.MaxRetries+1)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if notify != nil {
				notify(attempt, wait, err)
			}
		}),
	)
	// The final attempt may still carry the permanent marker.
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return result, attempt, err
}
