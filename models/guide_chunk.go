package models

import (
	"github.com/google/uuid"
)

// GuideChunk represents a chunk of first-aid guide text from the knowledge base
type GuideChunk struct {
	ID         uuid.UUID `json:"id"`
	GuideTitle string    `json:"guide_title"`
	Section    string    `json:"section"`
	Content    string    `json:"content"`
	Embedding  []float64 `json:"embedding,omitempty"`
	Distance   float64   `json:"distance,omitempty"` // Vector similarity distance
}
