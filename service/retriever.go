package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"firstaidguide-backend/models"
	"firstaidguide-backend/provider"
)

const (
	retrieverTimeout = 10 * time.Second

	// retrievalTopK is how many chunks the vector search returns
	retrievalTopK = 4

	// retrievalMinScore drops chunks whose similarity score falls below it
	retrievalMinScore = 0.30

	// maxContextChars caps the assembled grounding context
	maxContextChars = 4000
)

// Retriever grounds instruction generation in the guide corpus
type Retriever struct {
	embedder provider.Embedder
	searcher provider.VectorSearcher
	logger   zerolog.Logger
}

// NewRetriever creates a retriever. Either dependency may be nil, in which
// case retrieval is skipped and generation runs without grounding context.
func NewRetriever(embedder provider.Embedder, searcher provider.VectorSearcher, logger zerolog.Logger) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		logger:   logger.With().Str("component", "retriever").Logger(),
	}
}

// Retrieve embeds the query, searches the guide corpus and assembles the
// grounding context. fellBack reports whether retrieval was skipped or
// failed; a healthy search with no close matches is not a fallback.
func (r *Retriever) Retrieve(ctx context.Context, query string) (docs []models.RetrievedDocument, grounding string, fellBack bool) {
	if r.embedder == nil || r.searcher == nil {
		r.logger.Debug().Msg("retrieval not configured, skipping")
		return nil, "", true
	}

	ctx, cancel := context.WithTimeout(ctx, retrieverTimeout)
	defer cancel()

	// 1. Embed the query
	embedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Warn().Err(err).Msg("query embedding failed, generating without context")
		return nil, "", true
	}

	// 2. Search the guide corpus
	chunks, err := r.searcher.Search(ctx, embedding, retrievalTopK)
	if err != nil {
		r.logger.Warn().Err(err).Msg("vector search failed, generating without context")
		return nil, "", true
	}

	// 3. Keep chunks above the similarity floor
	var contents []string
	total := 0
	for _, chunk := range chunks {
		score := 1.0 - chunk.Distance
		if score < retrievalMinScore {
			continue
		}
		if total+len(chunk.Content) > maxContextChars {
			break
		}
		total += len(chunk.Content)
		docs = append(docs, models.RetrievedDocument{Content: chunk.Content, Score: score})
		contents = append(contents, chunk.Content)
	}

	if len(docs) == 0 {
		r.logger.Debug().Str("query", query).Msg("no guide chunks above similarity floor")
		return nil, "", false
	}

	return docs, strings.Join(contents, "\n\n"), false
}
