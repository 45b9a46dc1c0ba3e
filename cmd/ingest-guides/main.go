package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"firstaidguide-backend/models"
	"firstaidguide-backend/provider"
	"firstaidguide-backend/repository"
	"firstaidguide-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	// maxChunkChars bounds a chunk; paragraphs are never split, so a single
	// oversized paragraph still becomes one chunk
	maxChunkChars = 1200

	// embedDelay keeps the embedding API within its rate limits
	embedDelay = 100 * time.Millisecond
)

func main() {
	initSchema := flag.Bool("init-schema", false, "drop and recreate the guide_chunks table before ingesting")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("app", "ingest-guides").Logger()

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			logger.Warn().Msg("no .env file found, using environment variables")
		}
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Fatal().Msg("GEMINI_API_KEY environment variable is required")
	}

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		logger.Fatal().Msg("DATABASE_URL environment variable is required")
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	ctx := context.Background()

	if *initSchema {
		if err := createSchema(ctx, pool, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to create schema")
		}
	}

	var tableExists bool
	err = pool.QueryRow(ctx, "SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'guide_chunks')").Scan(&tableExists)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to check table existence")
	}
	if !tableExists {
		logger.Fatal().Msg("guide_chunks table does not exist, run with --init-schema first")
	}

	source, err := storage.NewGuideSourceFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize guide source")
	}

	embedder := provider.NewGeminiEmbedder(apiKey, logger)
	repo := repository.NewGuideChunkRepository(pool)

	guides, err := source.List(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to list guides")
	}
	if len(guides) == 0 {
		logger.Warn().Msg("no guide documents found, nothing to ingest")
		return
	}

	ingested := 0
	for _, name := range guides {
		title := guideTitle(name)
		log := logger.With().Str("guide", title).Logger()

		// Skip guides that already have chunks
		count, err := repo.CountByGuide(ctx, title)
		if err != nil {
			log.Error().Err(err).Msg("failed to check existing chunks")
			continue
		}
		if count > 0 {
			log.Info().Int("chunks", count).Msg("skipping, already ingested")
			continue
		}

		content, err := source.Read(ctx, name)
		if err != nil {
			log.Error().Err(err).Msg("failed to read guide")
			continue
		}

		sections := chunkGuide(content)
		if len(sections) == 0 {
			log.Warn().Msg("guide has no usable content, skipping")
			continue
		}

		log.Info().Int("chunks", len(sections)).Msg("embedding and storing guide")

		failed := false
		for _, section := range sections {
			embedding, err := embedder.EmbedDocument(ctx, section.content)
			if err != nil {
				log.Error().Err(err).Str("section", section.label).Msg("failed to embed chunk")
				failed = true
				break
			}

			chunk := &models.GuideChunk{
				ID:         uuid.New(),
				GuideTitle: title,
				Section:    section.label,
				Content:    section.content,
				Embedding:  embedding,
			}
			if err := repo.Upsert(ctx, chunk); err != nil {
				log.Error().Err(err).Str("section", section.label).Msg("failed to store chunk")
				failed = true
				break
			}

			time.Sleep(embedDelay)
		}
		if failed {
			continue
		}

		ingested++
		log.Info().Msg("guide ingested")
	}

	logger.Info().Int("ingested", ingested).Int("total", len(guides)).Msg("ingestion complete")
}

// guideTitle derives the stored guide title from a document name
func guideTitle(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// guideSection is one embeddable chunk of a guide document
type guideSection struct {
	label   string
	content string
}

// chunkGuide splits a guide into paragraph-bounded chunks of roughly
// maxChunkChars. Markdown headings name the sections they introduce.
func chunkGuide(content string) []guideSection {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	paragraphs := strings.Split(content, "\n\n")

	var sections []guideSection
	heading := "general"
	var current []string
	currentLen := 0

	flush := func() {
		if currentLen == 0 {
			return
		}
		sections = append(sections, guideSection{
			label:   fmt.Sprintf("%d. %s", len(sections)+1, heading),
			content: strings.Join(current, "\n\n"),
		})
		current = nil
		currentLen = 0
	}

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if strings.HasPrefix(paragraph, "#") {
			flush()
			heading = strings.ToLower(strings.TrimSpace(strings.TrimLeft(paragraph, "# ")))
			if heading == "" {
				heading = "general"
			}
		}

		if currentLen > 0 && currentLen+len(paragraph) > maxChunkChars {
			flush()
		}
		current = append(current, paragraph)
		currentLen += len(paragraph)
	}
	flush()

	return sections
}

func createSchema(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		logger.Warn().Err(err).Msg("could not create pgvector extension, it may already exist or require superuser privileges")
	}

	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS guide_chunks CASCADE"); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}

	schemaSQL := `
CREATE TABLE guide_chunks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    guide_title VARCHAR(255) NOT NULL,
    section VARCHAR(255) NOT NULL,
    content TEXT NOT NULL,
    embedding vector(768),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    CONSTRAINT guide_section_unique UNIQUE (guide_title, section)
);`

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create guide_chunks table: %w", err)
	}
	logger.Info().Msg("created guide_chunks table")

	indexes := []string{
		`CREATE INDEX idx_guide_embedding_hnsw ON guide_chunks
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
		"CREATE INDEX idx_guide_title ON guide_chunks(guide_title);",
	}
	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			logger.Warn().Err(err).Msg("failed to create index")
		}
	}
	logger.Info().Msg("schema ready")

	return nil
}
