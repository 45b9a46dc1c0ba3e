package provider

import (
	"net/http"
	"testing"

	"firstaidguide-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmbeddingScalesToUnitLength(t *testing.T) {
	embedding := []float64{3, 4}

	normalizeEmbedding(embedding)

	assert.InDelta(t, 0.6, embedding[0], 1e-9)
	assert.InDelta(t, 0.8, embedding[1], 1e-9)
}

func TestNormalizeEmbeddingLeavesZeroVectorAlone(t *testing.T) {
	embedding := []float64{0, 0, 0}

	normalizeEmbedding(embedding)

	assert.Equal(t, []float64{0, 0, 0}, embedding)
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "plain object passes through",
			response: `{"category": "burn"}`,
			want:     `{"category": "burn"}`,
		},
		{
			name:     "markdown fence is stripped",
			response: "```json\n{\"category\": \"burn\"}\n```",
			want:     `{"category": "burn"}`,
		},
		{
			name:     "surrounding prose is stripped",
			response: `Here is the result: {"severity": 3} hope that helps`,
			want:     `{"severity": 3}`,
		},
		{
			name:     "nested braces keep the outer object",
			response: `{"a": {"b": 1}}`,
			want:     `{"a": {"b": 1}}`,
		},
		{
			name:     "no object yields empty",
			response: "sorry, I cannot help with that",
			want:     "",
		},
		{
			name:     "reversed braces yield empty",
			response: "} oops {",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONObject(tt.response))
		})
	}
}

func TestBuildCategorizationPromptListsEveryCategory(t *testing.T) {
	prompt := buildCategorizationPrompt("my arm is burned")

	for _, c := range models.Categories {
		assert.Contains(t, prompt, string(c))
	}
	assert.Contains(t, prompt, "my arm is burned")
	assert.Contains(t, prompt, `"unknown"`)
}

func TestAPIStatusErrorRetryable(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		err := &apiStatusError{status: tt.status, body: "boom"}
		assert.Equal(t, tt.retryable, err.retryable(), "status %d", tt.status)
	}
}
