package conversion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/transcribo/internal/models"
)

// parseConversionResponse attempts a strict JSON parse of the model output
// into the conversion contract. Empty markdown is treated as a parse
// failure so the caller's recovery path runs.
func parseConversionResponse(raw string) (*models.ConversionResult, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("conversion response is empty")
	}

	var result models.ConversionResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversion response: %w", err)
	}
	// Structurally valid JSON with an empty markdown field carries no
	// usable conversion; it takes the same recovery path as malformed
	// output rather than being returned as an empty document.
	if result.Markdown == "" {
		return nil, fmt.Errorf("conversion response has no markdown content")
	}

	if result.Manifest.Figures == nil {
		result.Manifest.Figures = []models.Figure{}
	}
	if result.Manifest.Tables == nil {
		result.Manifest.Tables = []models.TableRef{}
	}

	return &result, nil
}

// extractJSON extracts a JSON object from response text, handling markdown
// code blocks and prose-wrapped output.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	// Check for markdown code blocks
	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		var jsonLines []string
		inCodeBlock := false

		for _, line := range lines {
			if strings.HasPrefix(line, "```") {
				if inCodeBlock {
					break
				}
				inCodeBlock = true
				continue
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}

		if len(jsonLines) > 0 {
			return strings.Join(jsonLines, "\n")
		}
	}

	// Greedy scan: first opening brace to last closing brace
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx >= 0 && endIdx > startIdx {
		return response[startIdx : endIdx+1]
	}

	return ""
}

// degradedResult wraps unstructured model output as a usable conversion
// result: the raw text verbatim as markdown with an empty manifest. The
// pipeline always produces some Markdown rather than failing outright on
// an unstructured response.
func degradedResult(raw string) *models.ConversionResult {
	return &models.ConversionResult{
		Markdown: raw,
		Manifest: models.EmptyManifest(),
	}
}
