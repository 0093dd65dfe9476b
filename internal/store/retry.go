package store

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/mattn/go-sqlite3"

	"go-codegen-pipeline/internal/model"
)

// DefaultRetryConfig retries briefly while another writer holds the database.
var DefaultRetryConfig = model.RetryConfig{
	MaxAttempts:       3,
	InitialDelay:      50 * time.Millisecond,
	MaxDelay:          500 * time.Millisecond,
	BackoffMultiplier: 2.0,
	Jitter:            true,
}

// isRetryable reports whether err is a transient sqlite lock error.
func isRetryable(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// withRetry runs op until it succeeds, fails permanently, or attempts run out.
func withRetry(ctx context.Context, cfg model.RetryConfig, op func() error) error {
	attempts := max(cfg.MaxAttempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil || !isRetryable(err) || attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff(cfg, attempt)):
		}
	}
	return err
}

// backoff returns the delay after the given failed attempt (1-based).
func backoff(cfg model.RetryConfig, attempt int) time.Duration {
	mult := cfg.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(mult, float64(attempt-1)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter && delay > 0 {
		// +/-10%
		delay += time.Duration(float64(delay) * 0.2 * (rand.Float64() - 0.5))
	}
	return delay
}
