package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firstaidguide-backend/policy"
	"firstaidguide-backend/provider"
	"firstaidguide-backend/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testRouter mounts the handler on a fresh engine with a fully deterministic
// agent: no model providers, static tools, the real policy keys.
func testRouter() *gin.Engine {
	agent := service.NewConversationalAgent(
		service.WithPolicy(&policy.Policy{
			Topics:      []string{"crypto"},
			DenyPhrases: []string{"apply butter"},
		}),
		service.WithToolDirectory(provider.NewStaticToolDirectory()),
	)
	handler := NewChatHandler(agent, zerolog.Nop())

	router := gin.New()
	router.POST("/api/chat", handler.Chat)
	router.POST("/api/chat/continue", handler.ChatContinue)
	router.GET("/api/health", handler.Health)
	router.GET("/api/health/details", handler.HealthDetails)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

func TestChatEndpoint(t *testing.T) {
	router := testRouter()

	recorder, body := postJSON(t, router, "/api/chat", gin.H{"message": "my hand is bleeding badly"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, body["ok"])

	result, ok := body["result"].(map[string]interface{})
	require.True(t, ok)

	triage := result["triage"].(map[string]interface{})
	assert.Equal(t, "bleeding", triage["category"])
	assert.Equal(t, "fallback", triage["source"])

	instructions := result["instructions"].(map[string]interface{})
	assert.NotEmpty(t, instructions["steps"])

	conversation := result["conversation"].(map[string]interface{})
	assert.Equal(t, true, conversation["emergency_active"])

	assert.Equal(t, true, result["degraded"])
}

func TestChatEndpointRefusesOffTopic(t *testing.T) {
	router := testRouter()

	recorder, body := postJSON(t, router, "/api/chat", gin.H{"message": "tell me about crypto"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, false, result["degraded"])

	triage := result["triage"].(map[string]interface{})
	assert.Equal(t, "unknown", triage["category"])

	risk := result["risk"].(map[string]interface{})
	assert.Equal(t, "low", risk["risk"])
}

func TestChatEndpointRejectsMissingMessage(t *testing.T) {
	router := testRouter()

	recorder, body := postJSON(t, router, "/api/chat", gin.H{})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, false, body["ok"])

	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_REQUEST", errBody["code"])
}

func TestChatEndpointRejectsBlankMessage(t *testing.T) {
	router := testRouter()

	recorder, body := postJSON(t, router, "/api/chat", gin.H{"message": "   "})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "EMPTY_MESSAGE", errBody["code"])
}

func TestChatContinueEndpoint(t *testing.T) {
	router := testRouter()

	recorder, body := postJSON(t, router, "/api/chat/continue", gin.H{
		"messages": []gin.H{
			{"role": "user", "content": "my hand is bleeding badly"},
			{"role": "assistant", "content": "Apply pressure to the wound."},
			{"role": "user", "content": "it stopped, I'm okay now"},
		},
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, body["ok"])

	result := body["result"].(map[string]interface{})
	conversation := result["conversation"].(map[string]interface{})
	assert.Equal(t, false, conversation["emergency_active"])
	assert.Equal(t, true, conversation["recovered"])

	messages, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 4)

	reply := messages[3].(map[string]interface{})
	assert.Equal(t, "assistant", reply["role"])
	assert.NotEmpty(t, reply["content"])
}

func TestChatContinueEndpointRequiresUserTurn(t *testing.T) {
	router := testRouter()

	recorder, body := postJSON(t, router, "/api/chat/continue", gin.H{
		"messages": []gin.H{
			{"role": "assistant", "content": "Hello, how can I help?"},
		},
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "NO_USER_MESSAGE", errBody["code"])
}

func TestChatContinueEndpointRejectsMissingMessages(t *testing.T) {
	router := testRouter()

	recorder, body := postJSON(t, router, "/api/chat/continue", gin.H{})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_REQUEST", errBody["code"])
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "firstaidguide-backend", body["service"])
}

func TestHealthDetailsEndpoint(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health/details", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	integrations, ok := body["integrations"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, integrations["categorization_provider"])
	assert.Equal(t, false, integrations["generation_provider"])
	assert.Equal(t, true, integrations["tool_directory"])
	assert.Equal(t, true, integrations["policy_loaded"])
}
