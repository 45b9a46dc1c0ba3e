package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"firstaidguide-backend/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
)

const (
	embeddingAPI  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	generationAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-flash:generateContent"

	embeddingModel      = "models/gemini-embedding-001"
	categorizationModel = "gemini-3-flash"

	// EmbeddingDimensions is the output dimensionality requested from the
	// embedding model. Must match the vector column in the guide_chunks table.
	EmbeddingDimensions = 768

	maxRetries     = 3
	initialBackoff = time.Second
)

var (
	ErrEmbeddingFailed  = errors.New("failed to generate embedding")
	ErrCompletionFailed = errors.New("failed to generate completion")
	ErrNoCandidates     = errors.New("API returned no candidates")
)

// EmbeddingRequest represents an embedding API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents an embedding API response
type EmbeddingResponse struct {
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// GeminiEmbedder generates embeddings via the Gemini embedding API
type GeminiEmbedder struct {
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewGeminiEmbedder creates an embedder backed by the Gemini embedding API
func NewGeminiEmbedder(apiKey string, logger zerolog.Logger) *GeminiEmbedder {
	return &GeminiEmbedder{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With().Str("component", "gemini_embedder").Logger(),
	}
}

// EmbedQuery embeds a retrieval query
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return e.embed(ctx, text, "RETRIEVAL_QUERY")
}

// EmbedDocument embeds a knowledge-base document chunk
func (e *GeminiEmbedder) EmbedDocument(ctx context.Context, text string) ([]float64, error) {
	return e.embed(ctx, text, "RETRIEVAL_DOCUMENT")
}

func (e *GeminiEmbedder) embed(ctx context.Context, text, taskType string) ([]float64, error) {
	reqBody := EmbeddingRequest{
		Model: embeddingModel,
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             taskType,
		OutputDimensionality: EmbeddingDimensions,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", embeddingAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", e.apiKey)

		resp, err := e.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp EmbeddingResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			resp.Body.Close()

			embedding := apiResp.Embedding.Values
			normalizeEmbedding(embedding)
			return embedding, nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrEmbeddingFailed
}

// normalizeEmbedding scales the vector to unit length in place. Required for
// cosine distance to behave when the requested dimensionality is below the
// model's native size.
func normalizeEmbedding(embedding []float64) {
	var sumSq float64
	for _, v := range embedding {
		sumSq += v * v
	}
	if sumSq == 0 {
		return
	}

	norm := math.Sqrt(sumSq)
	for i := range embedding {
		embedding[i] /= norm
	}
}

// GeminiCompleter generates guidance text via the Gemini generation API
type GeminiCompleter struct {
	apiKey      string
	temperature float64
	httpClient  *http.Client
	logger      zerolog.Logger
}

// NewGeminiCompleter creates a completer backed by the Gemini generation API
func NewGeminiCompleter(apiKey string, logger zerolog.Logger) *GeminiCompleter {
	return &GeminiCompleter{
		apiKey:      apiKey,
		temperature: 0.3,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		logger:      logger.With().Str("component", "gemini_completer").Logger(),
	}
}

// Complete sends the prompt to the generation API and returns the text of
// the first candidate, retrying transient failures with exponential backoff
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	// Truncate prompt if too long to avoid context limits
	if len(prompt) > 30000 {
		c.logger.Warn().Int("chars", len(prompt)).Msg("prompt too long, truncating to 30000 chars")
		prompt = prompt[:30000] + "\n\n[Content truncated due to length...]"
	}

	var content string
	var err error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		content, err = c.callGenerationAPI(ctx, prompt)
		if err != nil {
			var apiErr *apiStatusError
			if errors.As(err, &apiErr) && !apiErr.retryable() {
				return "", err
			}
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("failed to generate content after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if content != "" {
			return content, nil
		}
	}

	if err != nil {
		return "", err
	}
	return "", ErrCompletionFailed
}

// apiStatusError carries the HTTP status of a failed generation call so the
// retry loop can skip statuses that will never succeed
type apiStatusError struct {
	status int
	body   string
}

func (e *apiStatusError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.status, e.body)
}

func (e *apiStatusError) retryable() bool {
	return e.status != http.StatusBadRequest && e.status != http.StatusUnauthorized
}

// callGenerationAPI calls the Gemini generation API directly via HTTP
func (c *GeminiCompleter) callGenerationAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": c.temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", generationAPI, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error().Int("status", resp.StatusCode).Str("body", string(bodyBytes)).Msg("generation API error")
		return "", &apiStatusError{status: resp.StatusCode, body: string(bodyBytes)}
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		c.logger.Error().Str("body", string(bodyBytes)).Msg("failed to decode generation response")
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// Check for API errors in response
	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}

	if len(apiResp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		// Log finish reason if present (e.g., SAFETY, RECITATION)
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			c.logger.Warn().Int("candidate", i).Str("finish_reason", candidate.FinishReason).Msg("candidate finished abnormally")
		}

		if len(candidate.Content.Parts) == 0 {
			return "", fmt.Errorf("API candidate has no parts (finish reason: %s)", candidate.FinishReason)
		}

		for _, part := range candidate.Content.Parts {
			if part.Text == "" {
				continue
			}
			responseText.WriteString(part.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("API returned empty content")
	}

	return result, nil
}

// GeminiCategorizer classifies user text via the Gemini SDK in JSON mode
type GeminiCategorizer struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

// NewGeminiCategorizer creates a categorizer backed by the Gemini SDK
func NewGeminiCategorizer(client *genai.Client, logger zerolog.Logger) *GeminiCategorizer {
	return &GeminiCategorizer{
		client: client,
		model:  categorizationModel,
		logger: logger.With().Str("component", "gemini_categorizer").Logger(),
	}
}

// Categorize asks the model for a category, severity and keyword list for text
func (g *GeminiCategorizer) Categorize(ctx context.Context, text string) (*Categorization, error) {
	if g.client == nil {
		return nil, errors.New("gemini client not set")
	}

	model := g.client.GenerativeModel(g.model)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(buildCategorizationPrompt(text)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate classification: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoCandidates
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}

	payload := extractJSONObject(raw.String())
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in classification response")
	}

	var out Categorization
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}

	return &out, nil
}

func buildCategorizationPrompt(text string) string {
	categories := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		categories[i] = string(c)
	}

	return fmt.Sprintf(`You are a first-aid triage classifier.

TASK:
Classify the user message below into exactly one category from this list:
%s

Rate severity as an integer from 0 (no emergency) to 5 (life-threatening).
List the keywords from the message that drove your decision.
If the message does not describe a first-aid situation, use category "unknown" and severity 0.

OUTPUT JSON SCHEMA:
{"category": "bleeding", "severity": 3, "keywords": ["cut", "blood"]}

USER MESSAGE:
%s

Return ONLY valid JSON, no markdown, no explanations.`, strings.Join(categories, ", "), text)
}

// extractJSONObject returns the substring between the first '{' and the last
// '}' so fenced or prefixed model output still parses
func extractJSONObject(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || start >= end {
		return ""
	}
	return response[start : end+1]
}
