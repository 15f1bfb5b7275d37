package api

import (
	"math"
	"math/rand"
	"time"
)

// Retryer decides whether a transport failure is retried and after how long.
// Domain failures are never retried.
type Retryer interface {
	// NextDelay returns the delay before retry attempt (0-based) and whether to retry at all.
	NextDelay(attempt int, lastErr error) (time.Duration, bool)
}

// NoRetry never retries.
type NoRetry struct{}

func (NoRetry) NextDelay(int, error) (time.Duration, bool) { return 0, false }

// ExponentialBackoff retries up to MaxRetries times with capped exponential
// delays and optional jitter.
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxRetries   int
	JitterFactor float64
}

// NewExponentialBackoff returns a backoff with the given retry budget.
func NewExponentialBackoff(maxRetries int) *ExponentialBackoff {
	return &ExponentialBackoff{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
		MaxRetries:   maxRetries,
		JitterFactor: 0.2,
	}
}

// NextDelay implements Retryer.
func (r *ExponentialBackoff) NextDelay(attempt int, _ error) (time.Duration, bool) {
	if attempt >= r.MaxRetries {
		return 0, false
	}

	delay := float64(r.InitialDelay) * math.Pow(r.Multiplier, float64(attempt))
	if delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}

	if r.JitterFactor > 0 {
		//nolint:gosec // jitter only
		delay += delay * r.JitterFactor * (2*rand.Float64() - 1)
		if delay < 0 {
			delay = float64(r.InitialDelay)
		}
	}

	return time.Duration(delay), true
}
