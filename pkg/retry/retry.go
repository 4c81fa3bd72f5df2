// Package retry runs an operation with exponential backoff and jitter.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrMaxAttemptsExceeded is returned when every attempt failed.
var ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")

// Config contains retry configuration.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int
	// InitialInterval is the first backoff interval.
	InitialInterval time.Duration
	// MaxInterval caps the backoff interval.
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry.
	Multiplier float64
	// JitterFactor (0..1) randomizes the interval by +-that fraction.
	JitterFactor float64
}

// DefaultConfig retries up to 3 times: 500ms, 1s, 2s.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried.
type Operation func(ctx context.Context) error

// PermanentError stops the retry loop immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks an error as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Do runs op until it succeeds, the attempts are exhausted, a permanent
// error occurs, or ctx is done. The returned error is the last attempt's.
func Do(ctx context.Context, cfg *Config, op Operation) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return perm.Err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(interval(cfg, attempt)):
		}
	}
	return lastErr
}

func interval(cfg *Config, attempt int) time.Duration {
	base := float64(cfg.InitialInterval)
	if cfg.Multiplier > 0 {
		base *= math.Pow(cfg.Multiplier, float64(attempt))
	}
	if max := float64(cfg.MaxInterval); cfg.MaxInterval > 0 && base > max {
		base = max
	}
	if cfg.JitterFactor > 0 {
		base += base * cfg.JitterFactor * (2*rand.Float64() - 1)
	}
	if base < 0 {
		base = 0
	}
	return time.Duration(base)
}
