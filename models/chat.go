package models

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatTurn represents a single turn in a conversation
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationStatus represents the emergency state derived from recent turns
type ConversationStatus struct {
	EmergencyActive bool `json:"emergency_active"`
	Recovered       bool `json:"recovered"`
}
