package models

// ToolResult represents locality enrichment attached to a response
type ToolResult struct {
	EmergencyNumber string                 `json:"emergency_number"`
	MapsHint        string                 `json:"maps_hint"`
	Raw             map[string]interface{} `json:"raw,omitempty"`
}
