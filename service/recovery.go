package service

import (
	"regexp"
	"strings"

	"firstaidguide-backend/models"
)

const (
	// recoveryWindow is how many trailing user turns participate in
	// recovery detection
	recoveryWindow = 2

	// emergencyThreshold is the severity at which a turn opens an
	// emergency
	emergencyThreshold = 3
)

// recoveryPatterns match phrases that signal the emergency has resolved
var recoveryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\ball good now\b`),
	regexp.MustCompile(`(?i)\ball better now\b`),
	regexp.MustCompile(`(?i)\bfeeling (?:fine|okay|ok) now\b`),
	regexp.MustCompile(`(?i)\bi'?m (?:fine|okay|ok) now\b`),
	regexp.MustCompile(`(?i)\bno (?:longer|more) (?:hurting|hurt|pain|bleeding)\b`),
	regexp.MustCompile(`(?i)\bnot (?:painful|hurting) anymore\b`),
	regexp.MustCompile(`(?i)\bpain (?:is )?gone\b`),
	regexp.MustCompile(`(?i)\bbleeding (?:has )?stopped\b`),
	regexp.MustCompile(`(?i)\bit (?:has |'?s )?stopped\b`),
	regexp.MustCompile(`(?i)\bit'?s healed now\b`),
}

// DetectRecovery derives the conversation's emergency state from its trailing
// user turns. The prior state comes from keyword triage of the previous user
// turn, never from a model call, so the same transcript always produces the
// same state. A recovery phrase closes an active emergency even when the
// phrase itself mentions the injury, as in "the bleeding has stopped".
func DetectRecovery(turns []models.ChatTurn, current models.TriageResult) models.ConversationStatus {
	window := lastUserTurns(turns, recoveryWindow)
	if len(window) == 0 {
		return models.ConversationStatus{
			EmergencyActive: current.Severity >= emergencyThreshold,
		}
	}

	previousActive := false
	if len(window) > 1 {
		previous := KeywordTriage(window[0])
		previousActive = previous.Severity >= emergencyThreshold
	}

	currentText := window[len(window)-1]
	if previousActive && matchesRecovery(currentText) {
		return models.ConversationStatus{
			EmergencyActive: false,
			Recovered:       true,
		}
	}

	return models.ConversationStatus{
		EmergencyActive: previousActive || current.Severity >= emergencyThreshold,
	}
}

// lastUserTurns returns the content of the most recent user-authored turns,
// oldest first
func lastUserTurns(turns []models.ChatTurn, n int) []string {
	var texts []string
	for i := len(turns) - 1; i >= 0 && len(texts) < n; i-- {
		if turns[i].Role != models.RoleUser {
			continue
		}
		content := strings.TrimSpace(turns[i].Content)
		if content == "" {
			continue
		}
		texts = append(texts, content)
	}

	for i, j := 0, len(texts)-1; i < j; i, j = i+1, j-1 {
		texts[i], texts[j] = texts[j], texts[i]
	}
	return texts
}

func matchesRecovery(text string) bool {
	for _, pattern := range recoveryPatterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
