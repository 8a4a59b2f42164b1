package conversion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "Nil error", err: nil, want: false},
		{name: "Deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "Rate limit code", err: genai.APIError{Code: 429, Message: "rate limited"}, want: true},
		{name: "Server error code", err: genai.APIError{Code: 503, Message: "unavailable"}, want: true},
		{name: "Request timeout code", err: genai.APIError{Code: 408, Message: "timeout"}, want: true},
		{name: "Bad request code", err: genai.APIError{Code: 400, Message: "invalid argument"}, want: false},
		{name: "Not found code", err: genai.APIError{Code: 404, Message: "file not found"}, want: false},
		{name: "Quota message", err: errors.New("Error 429: quota exceeded, Status: RESOURCE_EXHAUSTED"), want: true},
		{name: "Timeout message", err: errors.New("request timeout waiting for response"), want: true},
		{name: "Missing local file", err: fmt.Errorf("PDF file not found: stat /x: no such file"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestRetryConfig_Backoff(t *testing.T) {
	config := NewDefaultRetryConfig()

	assert.Equal(t, 2*time.Second, config.Backoff(0))
	assert.Equal(t, 4*time.Second, config.Backoff(1))
	assert.Equal(t, 8*time.Second, config.Backoff(2))
	// Capped at MaxBackoff from here on.
	assert.Equal(t, 10*time.Second, config.Backoff(3))
	assert.Equal(t, 10*time.Second, config.Backoff(10))
}

func TestNewRetryConfig_FromConfig(t *testing.T) {
	cfg := NewRetryConfig(nil)
	assert.Equal(t, defaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, defaultInitialBackoff, cfg.InitialBackoff)
	assert.Equal(t, defaultMaxBackoff, cfg.MaxBackoff)
}
