package utils

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RetryConfig bounds retry attempts with exponential backoff between them.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig matches the backoff applied to all external provider
// calls: up to 3 retries, starting at 1s and doubling.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:    3,
	InitialDelay:  time.Second,
	BackoffFactor: 2.0,
}

// Retry runs fn up to cfg.MaxRetries+1 times, sleeping with exponential
// backoff between failed attempts. The sleep honors ctx cancellation. The
// final failure is returned to the caller, which applies its own isolation
// policy (skip batch, skip partition, abort run).
func Retry(ctx context.Context, cfg RetryConfig, op string, fn func() error) error {
	delay := cfg.InitialDelay

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if attempt >= cfg.MaxRetries {
			log.Printf("%s failed after %d retries: %v", op, cfg.MaxRetries, err)
			return fmt.Errorf("%s failed after %d retries: %w", op, cfg.MaxRetries, err)
		}

		log.Printf("%s failed (attempt %d/%d), retrying in %s: %v", op, attempt+1, cfg.MaxRetries, delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
	}
}
