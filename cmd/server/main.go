package main

import (
	"context"
	"os"

	"firstaidguide-backend/handlers"
	"firstaidguide-backend/policy"
	"firstaidguide-backend/provider"
	"firstaidguide-backend/repository"
	"firstaidguide-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("app", "firstaidguide-backend").Logger()

	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			logger.Warn().Msg("no .env file found, using environment variables")
		}
	}

	// Every capability is decided here, once. A missing integration means
	// the pipeline runs that stage on its deterministic fallback.
	options := []service.AgentOption{
		service.WithLogger(logger),
		service.WithToolDirectory(provider.NewStaticToolDirectory()),
	}

	options = append(options, service.WithPolicy(loadPolicy(logger)))

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, triage and generation run on keyword and template fallbacks")
	} else {
		geminiClient, err := initGemini(apiKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize Gemini client")
		}
		options = append(options,
			service.WithCategorizer(provider.NewGeminiCategorizer(geminiClient, logger)),
			service.WithChatCompleter(provider.NewGeminiCompleter(apiKey, logger)),
		)
	}

	db := initPostgres(logger)
	if db != nil {
		defer db.Close()
	}
	if db != nil && apiKey != "" {
		options = append(options,
			service.WithEmbedder(provider.NewGeminiEmbedder(apiKey, logger)),
			service.WithVectorSearcher(repository.NewGuideChunkRepository(db)),
		)
	} else {
		logger.Warn().Msg("retrieval disabled, instructions are generated without guide context")
	}

	if locale := os.Getenv("EMERGENCY_LOCALE"); locale != "" {
		options = append(options, service.WithLocale(locale))
	}

	agent := service.NewConversationalAgent(options...)
	chatHandler := handlers.NewChatHandler(agent, logger)

	// Setup Gin router
	r := gin.Default()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)
		api.POST("/chat/continue", chatHandler.ChatContinue)
		api.GET("/health", chatHandler.Health)
		api.GET("/health/details", chatHandler.HealthDetails)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("server starting")
	if err := r.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

// loadPolicy reads the guardrail policy, failing open to an empty policy so
// a broken config file does not take the service down
func loadPolicy(logger zerolog.Logger) *policy.Policy {
	path := os.Getenv("GUARDRAILS_PATH")
	if path == "" {
		path = policy.DefaultPath
	}

	p, err := policy.Load(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("guardrail policy unavailable, running fail-open")
		return policy.Empty()
	}

	logger.Info().
		Str("path", path).
		Int("topics", len(p.Topics)).
		Int("deny_phrases", len(p.DenyPhrases)).
		Int("diagnosis_patterns", len(p.DiagnosisPatterns)).
		Msg("guardrail policy loaded")
	return p
}

// initPostgres connects to the guide corpus database. Returning nil is not
// fatal; the server runs without retrieval.
func initPostgres(logger zerolog.Logger) *pgxpool.Pool {
	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		logger.Warn().Msg("DATABASE_URL not set, guide retrieval disabled")
		return nil
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Postgres")
	}

	ctx := context.Background()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping Postgres")
	}

	// Enable pgvector extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		logger.Warn().Err(err).Msg("could not create pgvector extension, it may already exist or require superuser privileges")
	}

	logger.Info().Msg("Postgres connection established with pgvector support")
	return pool
}

func initGemini(apiKey string) (*genai.Client, error) {
	return genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
}
