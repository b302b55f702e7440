package translation

import (
	"time"

	lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
)

// RetryPolicy defines retry behavior for failed translation calls.
type RetryPolicy struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
}

// DefaultRetryPolicy returns the default retry policy: up to three attempts
// per transcript, starting at one second and doubling, capped at thirty
// seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// Backoff calculates the backoff duration before the given retry attempt.
// Attempt 1 waits InitialBackoff, attempt 2 waits InitialBackoff*factor, and
// so on, capped at MaxBackoff.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return p.InitialBackoff
	}
	backoff := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * p.BackoffFactor)
		if backoff > p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return backoff
}

// ShouldRetry determines whether a failed attempt should be retried.
// Permanent errors are never retried; transient ones are, until the attempt
// budget is spent.
func (p RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.MaxRetries {
		return false
	}
	return lmerrors.IsTransient(err)
}
