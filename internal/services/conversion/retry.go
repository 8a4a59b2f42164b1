package conversion

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ternarybob/transcribo/internal/common"
)

// RetryConfig defines retry behavior for the remote upload and conversion
// calls. Only transient failures are retried; a missing source file or a
// rejected request fails immediately.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per call (default: 3)
	MaxAttempts int

	// InitialBackoff is the wait before the first retry (default: 2s)
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between retries (default: 10s)
	MaxBackoff time.Duration

	// BackoffMultiplier is applied to the backoff on each retry (default: 2.0)
	BackoffMultiplier float64
}

const (
	defaultMaxAttempts       = 3
	defaultInitialBackoff    = 2 * time.Second
	defaultMaxBackoff        = 10 * time.Second
	defaultBackoffMultiplier = 2.0
)

// NewDefaultRetryConfig returns a RetryConfig with the default bounds.
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       defaultMaxAttempts,
		InitialBackoff:    defaultInitialBackoff,
		MaxBackoff:        defaultMaxBackoff,
		BackoffMultiplier: defaultBackoffMultiplier,
	}
}

// NewRetryConfig builds a RetryConfig from application configuration,
// falling back to defaults for unset or unparseable values.
func NewRetryConfig(cfg *common.ConversionConfig) *RetryConfig {
	rc := NewDefaultRetryConfig()
	if cfg == nil {
		return rc
	}
	if cfg.MaxAttempts > 0 {
		rc.MaxAttempts = cfg.MaxAttempts
	}
	if d, err := time.ParseDuration(cfg.InitialBackoff); err == nil && d > 0 {
		rc.InitialBackoff = d
	}
	if d, err := time.ParseDuration(cfg.MaxBackoff); err == nil && d > 0 {
		rc.MaxBackoff = d
	}
	return rc
}

// Backoff computes the wait before retry number attempt (0-based),
// capped at MaxBackoff.
func (c *RetryConfig) Backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	backoff := time.Duration(float64(c.InitialBackoff) * multiplier)
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}

// IsTransient reports whether a remote-call error is worth retrying.
// Covers request timeouts, rate limiting, and server-side failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 408, apiErr.Code == 429:
			return true
		case apiErr.Code >= 500:
			return true
		}
		return false
	}

	// The SDK does not classify every failure mode; match the known
	// transient signatures in the message as a fallback.
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection reset")
}
