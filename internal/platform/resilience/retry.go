package resilience

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// ErrTransient marks failures worth retrying. External clients wrap their
// retryable errors with it so classification survives `%w` chains.
var ErrTransient = crerr.New("transient upstream failure")

// Transientf builds an error that the default retry classifier treats as
// retryable.
func Transientf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrTransient}, args...)...)
}

// RetryConfig bounds a retry loop. Delay before attempt n (n >= 2) is
// min(MaxDelay, BaseDelay * 2^(n-2)).
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	IsRetryable func(error) bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}
}

func NormalizeRetryConfig(cfg RetryConfig) RetryConfig {
	defaults := DefaultRetryConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaults.MaxDelay
	}
	if cfg.IsRetryable == nil {
		cfg.IsRetryable = func(err error) bool { return crerr.Is(err, ErrTransient) }
	}
	return cfg
}

// Do runs op with bounded retry and exponential backoff. Fatal errors
// (those the classifier rejects) abort immediately without consuming the
// remaining attempt budget; after exhausting MaxAttempts the last error is
// returned with its kind intact, wrapped with the attempt count. A context
// cancellation or deadline, whether hit before an attempt, during one, or
// while backing off, surfaces ctx.Err(), distinct from the operation's own
// failures.
func Do[T any](ctx context.Context, cfg RetryConfig, op func(context.Context) (T, error)) (T, error) {
	cfg = NormalizeRetryConfig(cfg)

	var zero T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		// An attempt that failed because the caller's context expired is
		// a caller timeout, not an upstream failure, no matter how the
		// transport dressed it up.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		if !cfg.IsRetryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}
		if err := sleep(ctx, backoffDelay(cfg, attempt)); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= cfg.MaxDelay {
			return cfg.MaxDelay
		}
	}
	if delay > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
