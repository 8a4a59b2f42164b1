// -----------------------------------------------------------------------
// Conversion Client - Remote PDF to Markdown conversion with retry and
// fallback parsing
// -----------------------------------------------------------------------

package conversion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/transcribo/internal/interfaces"
	"github.com/ternarybob/transcribo/internal/models"
)

// Client drives the remote conversion backend: file upload, structured
// generation with fallback parsing, local Markdown persistence, and
// best-effort remote cleanup.
type Client struct {
	backend interfaces.ConversionBackend
	retry   *RetryConfig
	logger  arbor.ILogger
}

// NewClient creates a conversion client over the given backend.
func NewClient(backend interfaces.ConversionBackend, retry *RetryConfig, logger arbor.ILogger) *Client {
	if retry == nil {
		retry = NewDefaultRetryConfig()
	}
	return &Client{
		backend: backend,
		retry:   retry,
		logger:  logger,
	}
}

// Upload sends the PDF to the remote Files API and returns its opaque
// handle. A missing source file fails immediately without retry.
func (c *Client) Upload(ctx context.Context, pdfPath string) (string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("PDF file not found: %w", err)
	}

	var handle string
	err := c.withRetry(ctx, "upload", func(ctx context.Context) error {
		h, err := c.backend.UploadFile(ctx, pdfPath)
		if err != nil {
			return err
		}
		handle = h
		return nil
	})
	if err != nil {
		return "", err
	}
	return handle, nil
}

// Convert requests a structured conversion for an uploaded file and parses
// the output.
//
// Parsing runs as a small state machine: strict JSON parse first; on
// failure the request is re-issued once and a JSON object substring is
// recovered from the new output; if that also fails the raw text is
// returned verbatim as degraded Markdown with an empty manifest.
func (c *Client) Convert(ctx context.Context, handle string) (*models.ConversionResult, error) {
	var raw string
	err := c.withRetry(ctx, "convert", func(ctx context.Context) error {
		out, err := c.backend.GenerateFromFile(ctx, handle, conversionPrompt)
		if err != nil {
			return err
		}
		raw = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, parseErr := parseConversionResponse(raw)
	if parseErr == nil {
		return result, nil
	}

	c.logger.Warn().
		Err(parseErr).
		Int("response_length", len(raw)).
		Msg("Strict parse of conversion response failed, re-requesting")

	// One re-issue, then JSON recovery from the response text. This is a
	// parsing fallback, separate from the transport retry above.
	if retried, err := c.backend.GenerateFromFile(ctx, handle, conversionPrompt); err == nil {
		raw = retried
	} else {
		c.logger.Warn().Err(err).Msg("Conversion re-request failed, recovering from original response")
	}

	if candidate := extractJSON(raw); candidate != "" {
		if result, err := parseConversionResponse(candidate); err == nil {
			c.logger.Info().Msg("Recovered conversion result from embedded JSON")
			return result, nil
		}
	}

	c.logger.Warn().
		Int("response_length", len(raw)).
		Msg("Conversion response is unstructured, returning raw text with empty manifest")

	return degradedResult(raw), nil
}

// SaveMarkdown writes the converted Markdown to {reportDir}/report.md,
// creating the directory if absent. Local disk writes carry no retry.
func (c *Client) SaveMarkdown(markdown, reportDir string) (string, error) {
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", reportDir, err)
	}

	markdownPath := filepath.Join(reportDir, "report.md")
	if err := os.WriteFile(markdownPath, []byte(markdown), 0644); err != nil {
		return "", fmt.Errorf("failed to save markdown to %s: %w", markdownPath, err)
	}

	c.logger.Info().Str("path", markdownPath).Int("bytes", len(markdown)).Msg("Saved Markdown")
	return markdownPath, nil
}

// Cleanup deletes the remote file handle. Best-effort: failures are
// logged and swallowed, never propagated.
func (c *Client) Cleanup(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := c.backend.DeleteFile(ctx, handle); err != nil {
		c.logger.Warn().Err(err).Str("handle", handle).Msg("Failed to delete remote file")
		return
	}
	c.logger.Info().Str("handle", handle).Msg("Deleted remote file")
}

// withRetry runs fn up to MaxAttempts times, backing off between attempts.
// Non-transient errors fail immediately.
func (c *Client) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.retry.Backoff(attempt - 1)
			c.logger.Warn().
				Str("operation", op).
				Int("attempt", attempt+1).
				Dur("backoff", delay).
				Err(lastErr).
				Msg("Retrying after transient error")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during %s backoff: %w", op, ctx.Err())
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, c.retry.MaxAttempts, lastErr)
}
