// Package consistency waits for a write to show up on an eventually
// consistent read path.
package consistency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

var ErrNotVisible = commonerrors.ErrNotVisible

var errPending = errors.New("not yet visible")

// FetchFunc reads the record once. found=false means "try again"; a non-nil
// error stops the poll.
type FetchFunc[T any] func(ctx context.Context) (value T, found bool, err error)

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: constants.DefaultPollMaxAttempts,
		BaseDelay:   constants.DefaultPollBaseDelay,
		MaxDelay:    constants.DefaultPollMaxDelay,
		Timeout:     constants.DefaultPollTimeout,
	}
}

// withDefaults replaces unusable values: at least one read is always made,
// and non-positive delays or timeouts fall back to the defaults.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}

type Option func(*Config)

func WithConfig(c Config) Option {
	return func(cfg *Config) {
		if c.MaxAttempts > 0 {
			cfg.MaxAttempts = c.MaxAttempts
		}
		if c.BaseDelay > 0 {
			cfg.BaseDelay = c.BaseDelay
		}
		if c.MaxDelay > 0 {
			cfg.MaxDelay = c.MaxDelay
		}
		if c.Timeout > 0 {
			cfg.Timeout = c.Timeout
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(cfg *Config) { cfg.MaxAttempts = n }
}

func WithBackoff(base, max time.Duration) Option {
	return func(cfg *Config) {
		cfg.BaseDelay = base
		cfg.MaxDelay = max
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *Config) { cfg.Timeout = d }
}

// AwaitVisible calls fetch until it reports the record, backing off
// exponentially between reads. It gives up with ErrNotVisible after
// MaxAttempts reads or once Timeout has elapsed, whichever comes first.
// Cancellation of ctx itself is returned as ctx.Err().
func AwaitVisible[T any](ctx context.Context, fetch FetchFunc[T], opts ...Option) (T, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	var zero T
	start := time.Now()
	defer func() {
		metrics.VisibilityPollDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	pollCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	b := retry.NewExponential(cfg.BaseDelay)
	b = retry.WithCappedDuration(cfg.MaxDelay, b)
	b = retry.WithMaxRetries(uint64(cfg.MaxAttempts-1), b)

	attempts := 0
	v, err := retry.DoValue(pollCtx, b, func(ctx context.Context) (T, error) {
		attempts++
		v, found, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		if !found {
			return zero, retry.RetryableError(errPending)
		}
		return v, nil
	})

	switch {
	case err == nil:
		metrics.VisibilityPollOutcomesTotal.WithLabelValues("visible").Inc()
		metrics.VisibilityPollAttempts.Observe(float64(attempts))
		return v, nil
	case ctx.Err() != nil:
		metrics.VisibilityPollOutcomesTotal.WithLabelValues("canceled").Inc()
		return zero, ctx.Err()
	case errors.Is(err, errPending), pollCtx.Err() != nil:
		metrics.VisibilityPollOutcomesTotal.WithLabelValues("not_visible").Inc()
		return zero, ErrNotVisible.WithCause(fmt.Errorf("gave up after %d reads in %s", attempts, time.Since(start).Round(time.Millisecond)))
	default:
		metrics.VisibilityPollOutcomesTotal.WithLabelValues("error").Inc()
		return zero, err
	}
}
