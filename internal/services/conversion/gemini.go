package conversion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/transcribo/internal/common"
	"github.com/ternarybob/transcribo/internal/interfaces"
)

const pdfMIMEType = "application/pdf"

// GeminiBackend implements the ConversionBackend interface against the
// Gemini Files and GenerateContent APIs.
type GeminiBackend struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.ConversionBackend = (*GeminiBackend)(nil)

// NewGeminiBackend creates a Gemini conversion backend instance.
//
// Requires an API key (config or GEMINI_API_KEY); model name and call
// timeout come from configuration with sensible defaults applied upstream.
func NewGeminiBackend(ctx context.Context, config *common.GeminiConfig, logger arbor.ILogger) (*GeminiBackend, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for the conversion backend (set TRANSCRIBO_GEMINI_API_KEY or gemini.api_key in config)")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Info().
		Str("model", config.Model).
		Dur("timeout", timeout).
		Msg("Gemini conversion backend initialized")

	return &GeminiBackend{
		config:  config,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}, nil
}

// UploadFile uploads a local PDF to the Files API and returns the remote
// file name as the opaque handle.
func (b *GeminiBackend) UploadFile(ctx context.Context, path string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	startTime := time.Now()
	file, err := b.client.Files.UploadFromPath(timeoutCtx, path, &genai.UploadFileConfig{
		MIMEType: pdfMIMEType,
	})
	if err != nil {
		return "", fmt.Errorf("file upload failed: %w", err)
	}

	b.logger.Info().
		Str("handle", file.Name).
		Dur("duration", time.Since(startTime)).
		Msg("Uploaded PDF to Files API")

	return file.Name, nil
}

// GenerateFromFile submits the conversion prompt together with the
// uploaded file and returns the raw model output text.
func (b *GeminiBackend) GenerateFromFile(ctx context.Context, handle, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	file, err := b.client.Files.Get(timeoutCtx, handle, nil)
	if err != nil {
		return "", fmt.Errorf("failed to resolve uploaded file %s: %w", handle, err)
	}

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromText(prompt),
				genai.NewPartFromURI(file.URI, pdfMIMEType),
			},
		},
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(b.config.Temperature),
	}

	startTime := time.Now()
	resp, err := b.client.Models.GenerateContent(timeoutCtx, b.config.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("conversion generation failed: %w", err)
	}

	// Extract text from response - iterate candidates until non-empty text is found
	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from conversion model")
	}

	b.logger.Info().
		Str("handle", handle).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Conversion generation completed")

	return response.String(), nil
}

// DeleteFile removes an uploaded file from the Files API.
func (b *GeminiBackend) DeleteFile(ctx context.Context, handle string) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if _, err := b.client.Files.Delete(timeoutCtx, handle, nil); err != nil {
		return fmt.Errorf("failed to delete remote file %s: %w", handle, err)
	}
	return nil
}
