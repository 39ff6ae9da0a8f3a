// Package fetch implements spec.md §4.3's generic fetch pipeline on top of
// net/http: fetch_one, fetch_list (pagination + caller filter + max-bound
// truncation) and fetch_with_method for mutating verbs. Grounded on the
// teacher's internal/adapter/llm/http/retry.go (exponential backoff with
// jitter) and internal/adapter/github/client.go (Link-header pagination and
// SSRF-safe URL resolution), generalised from one provider's response shape
// to a caller-supplied parser/filter pair.
package fetch

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/herrhotzenplotz/gcli-go/internal/gclierr"
)

// RetryConfig mirrors the teacher's retry.RetryConfig.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultRetryConfig returns the teacher's defaults, tuned down slightly for
// a CLI tool that users are watching run synchronously rather than a batch
// review pipeline.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     8 * time.Second,
		Multiplier:     2.0,
	}
}

// ExponentialBackoff calculates wait time with jitter.
// Formula: min(initial * multiplier^attempt, maxBackoff) ± 25% jitter.
func ExponentialBackoff(attempt int, config RetryConfig) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(config.Multiplier, float64(attempt))
	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}
	jitterRange := 0.25 * backoff
	jitter := (rand.Float64() * 2 * jitterRange) - jitterRange
	result := backoff + jitter
	if result > float64(config.MaxBackoff) {
		result = float64(config.MaxBackoff)
	}
	if result < 0 {
		result = 0
	}
	return time.Duration(result)
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if gErr, ok := err.(*gclierr.Error); ok {
		return gErr.IsRetryable()
	}
	return false
}

// Operation is a function that can be retried.
type Operation func(ctx context.Context) error

// RetryWithBackoff executes an operation with exponential backoff retry
// logic, stopping at the first non-retryable error.
func RetryWithBackoff(ctx context.Context, operation Operation, config RetryConfig) error {
	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(err) {
			return err
		}
		if attempt >= config.MaxRetries {
			return err
		}
		backoff := ExponentialBackoff(attempt, config)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
