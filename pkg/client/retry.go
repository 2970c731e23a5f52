package client

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "substack_retries_total",
		Help: "Total number of retry attempts after transport errors",
	})

	retryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "substack_retry_backoff_seconds",
		Help:    "Backoff duration waited before a retry",
		Buckets: []float64{1, 3, 9, 27, 81, 243},
	})

	retryExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "substack_retry_exhausted_total",
		Help: "Total number of requests that failed on every attempt",
	})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is scaled by Multiplier^n to give the wait before retry n.
	BaseDelay time.Duration

	// Multiplier is the exponential base.
	Multiplier float64
}

// DefaultRetryConfig returns the default retry configuration:
// five attempts with waits of 3, 9, 27 and 81 seconds between them.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   1 * time.Second,
		Multiplier:  3,
	}
}

// Backoff returns the wait before retry n (1-indexed).
func (rc RetryConfig) Backoff(n int) time.Duration {
	return time.Duration(float64(rc.BaseDelay) * math.Pow(rc.Multiplier, float64(n)))
}

func (rc RetryConfig) validate() error {
	if rc.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", rc.MaxAttempts)
	}
	if rc.BaseDelay < 0 {
		return fmt.Errorf("base_delay must not be negative (got %v)", rc.BaseDelay)
	}
	if rc.Multiplier < 1 {
		return fmt.Errorf("multiplier must be >= 1 (got %v)", rc.Multiplier)
	}
	return nil
}

// retryWithBackoff runs fn until it succeeds or MaxAttempts is reached.
// fn must only return transport-level errors; every error it returns is
// retried.
func (c *Client) retryWithBackoff(ctx context.Context, target string, fn func() error) error {
	cfg := c.config.Retry

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				c.logger.Info().
					Str("url", target).
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return c.cancelled(target, attempt, ctxErr, lastErr)
		}

		wait := cfg.Backoff(attempt)
		retriesTotal.Inc()
		retryBackoffSeconds.Observe(wait.Seconds())

		c.logger.Warn().
			Err(err).
			Str("url", target).
			Int("attempt", attempt).
			Int("max_attempts", cfg.MaxAttempts).
			Dur("backoff", wait).
			Msgf("Request failed. Retrying in %s", wait)

		if err := c.sleep(ctx, wait); err != nil {
			return c.cancelled(target, attempt, err, lastErr)
		}
	}

	retryExhaustedTotal.Inc()
	c.logger.Error().
		Err(lastErr).
		Str("url", target).
		Int("max_attempts", cfg.MaxAttempts).
		Msg("Max retries reached")

	return &TransportError{
		URL:       target,
		Attempts:  cfg.MaxAttempts,
		Err:       lastErr,
		exhausted: true,
	}
}

// cancelled builds the error for a retry loop stopped by its context. It
// matches ErrContextCancelled, the context's own error and the last
// transport error.
func (c *Client) cancelled(target string, attempt int, ctxErr, lastErr error) error {
	c.logger.Warn().
		Err(lastErr).
		Str("url", target).
		Int("attempt", attempt).
		Msg("Context done, not retrying")
	return &TransportError{
		URL:      target,
		Attempts: attempt,
		Err:      fmt.Errorf("%w: %w (last error: %w)", ErrContextCancelled, ctxErr, lastErr),
	}
}

// sleepContext blocks for d or until ctx is done.
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
