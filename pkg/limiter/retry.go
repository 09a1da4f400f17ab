package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ErrAttemptsExhausted is returned when every allowed attempt failed.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// RetryConfig holds retry configuration
type RetryConfig struct {
	// MaxAttempts caps the number of attempts; 0 retries until success or cancellation.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`
	// ReportEvery reports one failure out of every ReportEvery.
	ReportEvery int `json:"report_every" yaml:"report_every"`
	// ReportInterval reports at most one failure per interval, in addition to ReportEvery.
	ReportInterval time.Duration `json:"report_interval" yaml:"report_interval"`
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:    0,
		ReportEvery:    1000,
		ReportInterval: 5 * time.Second,
	}
}

// FailureReporter is told about a sample of failed attempts.
type FailureReporter func(attempt int)

// RetryManager repeats an attempt until it succeeds. Failures are reported through a
// throttle so that a long unlucky streak does not flood the logs.
type RetryManager struct {
	config   *RetryConfig
	reporter FailureReporter
	sampler  *rate.Sometimes
}

// NewRetryManager creates a new retry manager. reporter may be nil.
func NewRetryManager(config *RetryConfig, reporter FailureReporter) *RetryManager {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &RetryManager{
		config:   config,
		reporter: reporter,
		sampler: &rate.Sometimes{
			First:    1,
			Every:    config.ReportEvery,
			Interval: config.ReportInterval,
		},
	}
}

// MaxAttempts returns the configured cap, 0 meaning unbounded.
func (rm *RetryManager) MaxAttempts() int { return rm.config.MaxAttempts }

// Retry calls fn with attempt numbers starting at 1 until it reports success. It returns
// the value, the number of attempts made, and an error wrapping ErrAttemptsExhausted
// when the cap is reached, or the context error when ctx ends first.
func Retry[T any](ctx context.Context, rm *RetryManager, fn func(attempt int) (T, bool)) (T, int, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt - 1, err
		}

		v, ok := fn(attempt)
		if ok {
			return v, attempt, nil
		}

		if rm.reporter != nil {
			rm.sampler.Do(func() { rm.reporter(attempt) })
		}

		if rm.config.MaxAttempts > 0 && attempt >= rm.config.MaxAttempts {
			return zero, attempt, fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, attempt)
		}
	}
}
