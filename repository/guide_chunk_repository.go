package repository

import (
	"context"
	"fmt"
	"strings"

	"firstaidguide-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// GuideChunkRepository handles database operations for guide chunks
type GuideChunkRepository struct {
	db *pgxpool.Pool
}

// NewGuideChunkRepository creates a new guide chunk repository
func NewGuideChunkRepository(db *pgxpool.Pool) *GuideChunkRepository {
	return &GuideChunkRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Search performs a vector similarity search over guide chunks
// embedding: query embedding vector (768 dimensions)
// limit: maximum number of chunks to return
func (r *GuideChunkRepository) Search(
	ctx context.Context,
	embedding []float64,
	limit int,
) ([]models.GuideChunk, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id,
			guide_title,
			section,
			content,
			embedding <=> $1::vector AS distance
		FROM guide_chunks
		ORDER BY
			embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query guide chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.GuideChunk
	for rows.Next() {
		var chunk models.GuideChunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.GuideTitle,
			&chunk.Section,
			&chunk.Content,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guide chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guide chunks: %w", err)
	}

	return chunks, nil
}

// Upsert inserts a guide chunk, replacing any previous chunk with the same
// guide title and section
func (r *GuideChunkRepository) Upsert(ctx context.Context, chunk *models.GuideChunk) error {
	vectorStr := formatVector(chunk.Embedding)

	query := `
		INSERT INTO guide_chunks (id, guide_title, section, content, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (guide_title, section)
		DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding, updated_at = NOW()`

	_, err := r.db.Exec(ctx, query,
		chunk.ID, chunk.GuideTitle, chunk.Section, chunk.Content, vectorStr,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert guide chunk: %w", err)
	}

	return nil
}

// CountByGuide returns the number of stored chunks for a guide title
func (r *GuideChunkRepository) CountByGuide(ctx context.Context, guideTitle string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM guide_chunks WHERE guide_title = $1", guideTitle,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count guide chunks: %w", err)
	}
	return count, nil
}
