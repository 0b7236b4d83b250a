// internal/retry/retry.go
package retry

import (
	"context"
	"math"
	"time"

	"github.com/law-makers/scrape/internal/engine"
	"github.com/rs/zerolog/log"
)

// DefaultAttempts is the number of tries used when none is configured
const DefaultAttempts = 3

// Config defines retry behavior with optional exponential backoff
type Config struct {
	MaxAttempts    int           // Total attempts including the first; <= 0 means 1
	InitialBackoff time.Duration // Pause before the second attempt; 0 retries immediately
	MaxBackoff     time.Duration // Upper bound for a single pause; 0 means uncapped
	Multiplier     float64       // Backoff growth per attempt; <= 0 means 1
}

// DefaultConfig returns three attempts with no pause between them
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultAttempts,
		Multiplier:  2.0,
	}
}

// WithRetry runs fn until it succeeds, returns a non-retryable error,
// or runs out of attempts. The final attempt's error is returned unchanged.
func WithRetry(ctx context.Context, cfg Config, fn func() error) error {
	_, err := Do(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Do is WithRetry for functions that produce a value
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var zero T
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		log.Debug().
			Int("attempt", attempt+1).
			Int("max_attempts", attempts).
			Msg("Attempting request")

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				log.Debug().
					Int("attempts", attempt+1).
					Msg("Retry succeeded")
			}
			return result, nil
		}
		lastErr = err

		if !engine.IsRetryable(err) {
			log.Debug().
				Err(err).
				Msg("Error is not retryable")
			return zero, err
		}

		if attempt == attempts-1 {
			break
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", attempts).
			Msg("Attempt failed")

		backoff := calculateBackoff(attempt, cfg)
		if backoff <= 0 {
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			continue
		}

		log.Debug().
			Dur("backoff", backoff).
			Msg("Retrying after backoff")

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}

	log.Warn().
		Int("attempts", attempts).
		Err(lastErr).
		Msg("All attempts failed")

	return zero, lastErr
}

// calculateBackoff returns InitialBackoff * Multiplier^attempt, capped at MaxBackoff
func calculateBackoff(attempt int, cfg Config) time.Duration {
	if cfg.InitialBackoff <= 0 {
		return 0
	}

	multiplier := cfg.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	backoff := float64(cfg.InitialBackoff) * math.Pow(multiplier, float64(attempt))

	if cfg.MaxBackoff > 0 && backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}

	return time.Duration(backoff)
}
