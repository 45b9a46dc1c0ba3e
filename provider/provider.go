// Package provider defines the external capabilities the pipeline depends on
// and their concrete implementations. Each capability has a live
// implementation and a deterministic substitute; the process decides once at
// startup which one to wire in, and the pipeline itself never inspects
// configuration.
package provider

import (
	"context"

	"firstaidguide-backend/models"
)

// Categorization is the raw classification returned by a Categorizer before
// the pipeline validates it
type Categorization struct {
	Category string   `json:"category"`
	Severity int      `json:"severity"`
	Keywords []string `json:"keywords,omitempty"`
}

// Categorizer assigns a first-aid category and severity to user text
type Categorizer interface {
	Categorize(ctx context.Context, text string) (*Categorization, error)
}

// Embedder converts text into a vector for similarity search
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
	EmbedDocument(ctx context.Context, text string) ([]float64, error)
}

// VectorSearcher finds knowledge-base chunks near an embedding
type VectorSearcher interface {
	Search(ctx context.Context, embedding []float64, limit int) ([]models.GuideChunk, error)
}

// ChatCompleter produces free-form guidance text from a prompt
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ToolDirectory resolves locality helpers for a response
type ToolDirectory interface {
	EmergencyNumber(ctx context.Context, category models.Category, locale string) (string, error)
	NearbyHelp(ctx context.Context, locale string) (string, error)
}
