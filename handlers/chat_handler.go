package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"firstaidguide-backend/metrics"
	"firstaidguide-backend/models"
	"firstaidguide-backend/service"
)

// ChatHandler handles HTTP requests for the first-aid chat pipeline
type ChatHandler struct {
	agent  *service.ConversationalAgent
	logger zerolog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(agent *service.ConversationalAgent, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		agent:  agent,
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// ChatRequest represents the request body for a single chat turn
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatMessage represents one transcript turn on the wire
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// ChatContinueRequest represents the request body for continuing a transcript
type ChatContinueRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required"`
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ChatRequests.WithLabelValues("chat", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"ok": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.agent.Chat(c.Request.Context(), service.ChatRequest{Message: req.Message})
	if err != nil {
		h.respondPipelineError(c, "chat", err)
		return
	}

	h.recordResult("chat", result.Result)
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"result": result.Result,
	})
}

// ChatContinue handles POST /api/chat/continue
func (h *ChatHandler) ChatContinue(c *gin.Context) {
	var req ChatContinueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ChatRequests.WithLabelValues("chat_continue", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"ok": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	turns := make([]models.ChatTurn, 0, len(req.Messages))
	for _, message := range req.Messages {
		turns = append(turns, models.ChatTurn{
			Role:    models.Role(message.Role),
			Content: message.Content,
		})
	}

	result, err := h.agent.ChatContinue(c.Request.Context(), service.ChatContinueRequest{Messages: turns})
	if err != nil {
		h.respondPipelineError(c, "chat_continue", err)
		return
	}

	h.recordResult("chat_continue", result.Result)
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"result":   result.Result,
		"messages": result.Messages,
	})
}

// Health handles GET /api/health
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": "firstaidguide-backend",
	})
}

// HealthDetails handles GET /api/health/details
func (h *ChatHandler) HealthDetails(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"service":      "firstaidguide-backend",
		"integrations": h.agent.Integrations(),
	})
}

func (h *ChatHandler) respondPipelineError(c *gin.Context, endpoint string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		metrics.ChatRequests.WithLabelValues(endpoint, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"ok": false,
			"error": gin.H{
				"code":    "EMPTY_MESSAGE",
				"message": "Message is empty",
			},
		})
	case errors.Is(err, service.ErrNoUserTurn):
		metrics.ChatRequests.WithLabelValues(endpoint, "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"ok": false,
			"error": gin.H{
				"code":    "NO_USER_MESSAGE",
				"message": "No user message provided",
			},
		})
	default:
		h.logger.Error().Err(err).Str("endpoint", endpoint).Msg("chat pipeline failed")
		metrics.ChatRequests.WithLabelValues(endpoint, "error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok": false,
			"error": gin.H{
				"code":    "CHAT_FAILED",
				"message": err.Error(),
			},
		})
	}
}

func (h *ChatHandler) recordResult(endpoint string, result *models.PipelineResult) {
	metrics.ChatRequests.WithLabelValues(endpoint, "ok").Inc()
	metrics.RiskLevels.WithLabelValues(string(result.Risk.Risk)).Inc()

	if result.Degraded {
		metrics.DegradedResults.WithLabelValues(endpoint).Inc()
	}
	if result.Triage.Source == models.TriageSourceFallback {
		metrics.StageFallbacks.WithLabelValues("triage").Inc()
	}
	if result.Instructions.Source == models.InstructionSourceFallback {
		metrics.StageFallbacks.WithLabelValues("generation").Inc()
	}
	for _, violation := range result.Verdict.Violations {
		metrics.GuardrailViolations.WithLabelValues(violation.Rule).Inc()
	}
}
