package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConversionResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name:    "Valid contract",
			raw:     `{"markdown": "# Report", "manifest": {"figures": [{"page": 1, "index": 1, "caption": "Scan"}], "tables": []}}`,
			wantErr: false,
		},
		{
			name:    "Missing manifest still parses",
			raw:     `{"markdown": "# Report"}`,
			wantErr: false,
		},
		{
			name:    "Empty response",
			raw:     "   ",
			wantErr: true,
		},
		{
			name:    "Prose response",
			raw:     "I could not convert this document.",
			wantErr: true,
		},
		{
			name:    "JSON without markdown",
			raw:     `{"manifest": {"figures": [], "tables": []}}`,
			wantErr: true,
		},
		{
			name:    "Valid JSON with empty markdown",
			raw:     `{"markdown": "", "manifest": {"figures": [], "tables": []}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseConversionResponse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, result.Markdown)
			// Manifest lists are always materialized, never nil.
			assert.NotNil(t, result.Manifest.Figures)
			assert.NotNil(t, result.Manifest.Tables)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "Plain JSON",
			response: `{"markdown": "x"}`,
			want:     `{"markdown": "x"}`,
		},
		{
			name:     "JSON with markdown fence",
			response: "```json\n{\"markdown\": \"x\"}\n```",
			want:     `{"markdown": "x"}`,
		},
		{
			name:     "JSON with bare fence",
			response: "```\n{\"markdown\": \"x\"}\n```",
			want:     `{"markdown": "x"}`,
		},
		{
			name:     "JSON embedded in prose",
			response: "Here is the result: {\"markdown\": \"x\"} as requested.",
			want:     `{"markdown": "x"}`,
		},
		{
			name:     "No JSON at all",
			response: "This is just text without any object",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.response))
		})
	}
}

func TestDegradedResult(t *testing.T) {
	prose := "The lab values are within normal range."
	result := degradedResult(prose)

	assert.Equal(t, prose, result.Markdown)
	assert.Empty(t, result.Manifest.Figures)
	assert.Empty(t, result.Manifest.Tables)
	assert.NotNil(t, result.Manifest.Figures)
	assert.NotNil(t, result.Manifest.Tables)
}
