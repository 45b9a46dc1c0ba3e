package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"firstaidguide-backend/models"
	"firstaidguide-backend/policy"
	"firstaidguide-backend/provider"
)

var (
	// ErrEmptyMessage is returned when the user message is empty after sanitization
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNoUserTurn is returned when a transcript contains no user-authored turn
	ErrNoUserTurn = errors.New("no user message provided")
)

// refusalConfidence reflects that refusing out-of-scope input is a
// deterministic decision, not a guess
const refusalConfidence = 0.95

// ConversationalAgent runs the full first-aid pipeline over chat turns.
// Every capability is optional; a missing one routes that stage through its
// deterministic fallback.
type ConversationalAgent struct {
	policy      *policy.Policy
	categorizer provider.Categorizer
	directory   provider.ToolDirectory
	embedder    provider.Embedder
	searcher    provider.VectorSearcher
	completer   provider.ChatCompleter
	locale      string
	logger      zerolog.Logger

	sanitizer  *Sanitizer
	classifier *Classifier
	tools      *ToolAdapter
	retriever  *Retriever
	generator  *Generator
	verifier   *GuardrailVerifier
}

// AgentOption configures the conversational agent
type AgentOption func(*ConversationalAgent)

// WithPolicy sets the guardrail policy
func WithPolicy(p *policy.Policy) AgentOption {
	return func(a *ConversationalAgent) {
		a.policy = p
	}
}

// WithCategorizer sets the model-backed triage provider
func WithCategorizer(c provider.Categorizer) AgentOption {
	return func(a *ConversationalAgent) {
		a.categorizer = c
	}
}

// WithToolDirectory sets the emergency directory
func WithToolDirectory(d provider.ToolDirectory) AgentOption {
	return func(a *ConversationalAgent) {
		a.directory = d
	}
}

// WithEmbedder sets the embedding provider used for retrieval
func WithEmbedder(e provider.Embedder) AgentOption {
	return func(a *ConversationalAgent) {
		a.embedder = e
	}
}

// WithVectorSearcher sets the guide corpus search backend
func WithVectorSearcher(s provider.VectorSearcher) AgentOption {
	return func(a *ConversationalAgent) {
		a.searcher = s
	}
}

// WithChatCompleter sets the instruction generation provider
func WithChatCompleter(c provider.ChatCompleter) AgentOption {
	return func(a *ConversationalAgent) {
		a.completer = c
	}
}

// WithLocale sets the locale for emergency directory lookups
func WithLocale(locale string) AgentOption {
	return func(a *ConversationalAgent) {
		a.locale = locale
	}
}

// WithLogger sets the logger shared by all pipeline stages
func WithLogger(logger zerolog.Logger) AgentOption {
	return func(a *ConversationalAgent) {
		a.logger = logger
	}
}

// NewConversationalAgent wires the pipeline stages from the configured
// capabilities
func NewConversationalAgent(opts ...AgentOption) *ConversationalAgent {
	agent := &ConversationalAgent{
		locale: provider.DefaultLocale,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(agent)
	}
	if agent.policy == nil {
		agent.policy = policy.Empty()
	}

	agent.sanitizer = NewSanitizer(agent.policy)
	agent.classifier = NewClassifier(agent.categorizer, agent.logger)
	agent.tools = NewToolAdapter(agent.directory, agent.locale, agent.logger)
	agent.retriever = NewRetriever(agent.embedder, agent.searcher, agent.logger)
	agent.generator = NewGenerator(agent.completer, agent.logger)
	agent.verifier = NewGuardrailVerifier(agent.policy, agent.logger)
	agent.logger = agent.logger.With().Str("component", "agent").Logger()

	return agent
}

// ChatRequest represents a single-turn chat request
type ChatRequest struct {
	Message string
}

// ChatResult represents the outcome of a single chat turn
type ChatResult struct {
	Result *models.PipelineResult
}

// Chat runs the pipeline over a single user message
func (a *ConversationalAgent) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	sanitized := a.sanitizer.Sanitize(req.Message)
	if sanitized.CleanText == "" {
		return nil, ErrEmptyMessage
	}

	turns := []models.ChatTurn{{Role: models.RoleUser, Content: sanitized.CleanText}}
	result := a.process(ctx, turns, sanitized)

	return &ChatResult{Result: result}, nil
}

// ChatContinueRequest represents a continuation request over a transcript
type ChatContinueRequest struct {
	Messages []models.ChatTurn
}

// ChatContinueResult represents the continuation outcome, including the
// transcript extended with the assistant's reply
type ChatContinueResult struct {
	Messages []models.ChatTurn
	Result   *models.PipelineResult
}

// ChatContinue runs the pipeline over the latest user turn of a transcript
// and appends the composed assistant reply
func (a *ConversationalAgent) ChatContinue(ctx context.Context, req ChatContinueRequest) (*ChatContinueResult, error) {
	last := -1
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == models.RoleUser {
			last = i
			break
		}
	}
	if last == -1 {
		return nil, ErrNoUserTurn
	}

	sanitized := a.sanitizer.Sanitize(req.Messages[last].Content)
	if sanitized.CleanText == "" {
		return nil, ErrEmptyMessage
	}

	result := a.process(ctx, req.Messages[:last+1], sanitized)

	messages := make([]models.ChatTurn, 0, len(req.Messages)+1)
	messages = append(messages, req.Messages...)
	messages = append(messages, models.ChatTurn{
		Role:    models.RoleAssistant,
		Content: composeAssistantMessage(result),
	})

	return &ChatContinueResult{Messages: messages, Result: result}, nil
}

// process runs the pipeline stages in order. turns must include the current
// user turn as its last user-authored entry.
func (a *ConversationalAgent) process(ctx context.Context, turns []models.ChatTurn, sanitized models.SanitizedInput) *models.PipelineResult {
	// 1. Refuse out-of-scope input before spending any model calls
	if !sanitized.InScope {
		a.logger.Info().Str("topic", sanitized.MatchedTopic).Msg("refusing out-of-scope message")
		triage := models.TriageResult{Category: models.CategoryUnknown, Source: models.TriageSourceFallback}
		return &models.PipelineResult{
			Triage:       triage,
			Instructions: RefusalInstructions(),
			Verdict:      models.GuardrailVerdict{Passed: true},
			Risk:         models.RiskConfidence{Risk: models.RiskLow, Confidence: refusalConfidence},
			Conversation: DetectRecovery(turns, triage),
			Degraded:     false,
		}
	}

	// 2. Triage the message
	triage := a.classifier.Classify(ctx, sanitized.CleanText)

	// 3. Enrich with emergency directory data
	toolResult, toolsFellBack := a.tools.Enrich(ctx, triage.Category)

	// 4. Ground generation in the guide corpus
	docs, grounding, retrievalFellBack := a.retriever.Retrieve(ctx, sanitized.CleanText)

	// 5. Generate instructions
	instructions := a.generator.Generate(ctx, triage.Category, sanitized.CleanText, grounding)
	generationSource := instructions.Source

	// 6. Verify against the policy; a failed verdict swaps in the vetted
	// template but stays on the record
	verdict := a.verifier.Verify(instructions)
	if !verdict.Passed {
		instructions = FallbackInstructions(triage.Category)
	}

	// 7. Score risk and confidence
	risk := ScoreRisk(RiskInputs{
		Triage:           triage,
		Verdict:          verdict,
		RetrievalEmpty:   len(docs) == 0,
		GenerationSource: generationSource,
	})

	// 8. Update the conversation's emergency state
	conversation := DetectRecovery(turns, triage)
	if conversation.Recovered {
		risk.Risk = models.RiskLow
	}

	degraded := triage.Source == models.TriageSourceFallback ||
		toolsFellBack ||
		retrievalFellBack ||
		instructions.Source == models.InstructionSourceFallback ||
		a.policy.Missing

	a.logger.Info().
		Str("category", string(triage.Category)).
		Int("severity", triage.Severity).
		Str("risk", string(risk.Risk)).
		Bool("degraded", degraded).
		Bool("emergency_active", conversation.EmergencyActive).
		Msg("pipeline completed")

	return &models.PipelineResult{
		Triage:       triage,
		Tools:        toolResult,
		Retrieved:    docs,
		Instructions: instructions,
		Verdict:      verdict,
		Risk:         risk,
		Conversation: conversation,
		Degraded:     degraded,
	}
}

// Integrations reports which capabilities run with live providers
type Integrations struct {
	CategorizationProvider bool `json:"categorization_provider"`
	GenerationProvider     bool `json:"generation_provider"`
	EmbeddingProvider      bool `json:"embedding_provider"`
	VectorStore            bool `json:"vector_store"`
	ToolDirectory          bool `json:"tool_directory"`
	PolicyLoaded           bool `json:"policy_loaded"`
}

// Integrations describes the agent's wiring for health reporting
func (a *ConversationalAgent) Integrations() Integrations {
	return Integrations{
		CategorizationProvider: a.categorizer != nil,
		GenerationProvider:     a.completer != nil,
		EmbeddingProvider:      a.embedder != nil,
		VectorStore:            a.searcher != nil,
		ToolDirectory:          a.directory != nil,
		PolicyLoaded:           !a.policy.Missing,
	}
}

// RefusalInstructions returns the fixed response for out-of-scope messages
func RefusalInstructions() models.InstructionSet {
	return models.InstructionSet{
		Summary: "I can only help with first-aid topics.",
		Steps:   []string{"Ask me about a first-aid situation, like a cut, a burn or a sprain."},
		Source:  models.InstructionSourceFallback,
	}
}

// composeAssistantMessage renders a pipeline result as a conversational reply
func composeAssistantMessage(result *models.PipelineResult) string {
	var sb strings.Builder

	sb.WriteString("I'm here to help.\n\n")

	if result.Risk.Risk == models.RiskHigh || result.Risk.Risk == models.RiskCritical {
		hint := "If this is getting worse, call emergency services immediately."
		if number := result.Tools.EmergencyNumber; number != "" && number != fallbackEmergencyNumber {
			hint = fmt.Sprintf("If this is getting worse, call emergency services immediately (dial %s).", number)
		}
		sb.WriteString(hint)
		sb.WriteString("\n\n")
	}

	if result.Instructions.Summary != "" {
		sb.WriteString(result.Instructions.Summary)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Here's what you can do right now:\n")
	for i, step := range result.Instructions.Steps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	sb.WriteString(fmt.Sprintf("\nAssessed risk: %s (confidence %.0f%%).\n", result.Risk.Risk, result.Risk.Confidence*100))

	if result.Conversation.EmergencyActive && result.Triage.Category != models.CategoryUnknown {
		sb.WriteString("\nCan you tell me where exactly and how severe it is (mild, steady, or heavy)? This helps me guide you more precisely right now.")
	}

	return sb.String()
}
