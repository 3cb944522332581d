package models

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn represents a single message in a session's chat history
type ConversationTurn struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message content
}

// AskRequest represents the incoming question request
type AskRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// Validate validates the ask request
func (r *AskRequest) Validate() error {
	if r.SessionID == "" {
		return &ValidationError{Field: "session_id", Message: "session ID is required"}
	}
	return nil
}

// AskResponse is the response envelope for a question.
// The orchestrator always returns a well-formed envelope, never a raw fault.
type AskResponse struct {
	Answer     string   `json:"answer"`
	References string   `json:"references"`
	ChunksUsed int      `json:"chunks_used"`
	Sources    []string `json:"sources"`
}

// SessionInfo describes a session for API consumers
type SessionInfo struct {
	SessionID         string   `json:"session_id"`
	CreatedAt         string   `json:"created_at"`
	Documents         []string `json:"documents"`
	HasIndex          bool     `json:"has_index"`
	ChatHistoryLength int      `json:"chat_history_length"`
}
