// Package retry runs operations with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/beachesmls/marketreport/pkg/utils"
	"go.uber.org/zap"
)

// Config defines retry behavior. MaxRetries counts attempts, so 1 means
// no retry at all.
type Config struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Multiplier    float64
	JitterEnabled bool
	// OnRetry, when set, is called before each retry sleep.
	OnRetry func(operation string, attempt int, err error)
}

// DefaultConfig is used while establishing long-lived connections at startup.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    10,
		InitialDelay:  2 * time.Second,
		MaxDelay:      60 * time.Second,
		Multiplier:    2.0,
		JitterEnabled: true,
	}
}

// QueryConfig is used for read queries inside a request. It stays well under
// typical HTTP client timeouts.
func QueryConfig() Config {
	return Config{
		MaxRetries:    3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      500 * time.Millisecond,
		Multiplier:    3.0,
		JitterEnabled: true,
	}
}

// FromEnv overrides def with <prefix>_RETRIES, <prefix>_RETRY_INITIAL and
// <prefix>_RETRY_MAX.
func FromEnv(prefix string, def Config) Config {
	def.MaxRetries = utils.EnvInt(prefix+"_RETRIES", def.MaxRetries)
	def.InitialDelay = utils.EnvDuration(prefix+"_RETRY_INITIAL", def.InitialDelay)
	def.MaxDelay = utils.EnvDuration(prefix+"_RETRY_MAX", def.MaxDelay)
	if def.MaxDelay < def.InitialDelay {
		def.MaxDelay = def.InitialDelay
	}
	return def
}

// WithBackoff executes fn with exponential backoff and optional jitter.
// Every error is retried.
func WithBackoff(ctx context.Context, cfg Config, logger *zap.Logger, operation string, fn func() error) error {
	return WithBackoffIf(ctx, cfg, logger, operation, nil, fn)
}

// WithBackoffIf is WithBackoff restricted to errors accepted by retryable.
// A nil predicate retries everything. A rejected error is returned unwrapped,
// as are context errors returned by fn.
func WithBackoffIf(ctx context.Context, cfg Config, logger *zap.Logger, operation string, retryable func(error) bool, fn func() error) error {
	attempts := max(cfg.MaxRetries, 1)
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		err := fn()
		switch {
		case err == nil:
			if attempt > 1 {
				logger.Debug("Operation succeeded after retries",
					zap.String("operation", operation),
					zap.Int("attempts", attempt))
			}
			return nil
		case !shouldRetry(err, retryable):
			return err
		case attempt >= attempts:
			return fmt.Errorf("%s failed after %d attempts: %w", operation, attempts, err)
		}

		delay := cfg.backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(operation, attempt, err)
		}
		logger.Warn("Operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_retries", attempts),
			zap.Duration("retry_in", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func shouldRetry(err error, retryable func(error) bool) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return retryable == nil || retryable(err)
}

// backoff is the sleep before retry number attempt, capped at MaxDelay and
// spread by +/-15% when jitter is on.
func (c Config) backoff(attempt int) time.Duration {
	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1))
	delay = math.Min(delay, float64(c.MaxDelay))

	if c.JitterEnabled {
		delay *= 0.85 + rand.Float64()*0.3
	}
	return time.Duration(delay)
}
