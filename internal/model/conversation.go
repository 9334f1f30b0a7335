// Package model defines data structures for the agent platform.
package model

import (
	"time"
)

// Conversation represents one chat thread and its model selection.
type Conversation struct {
	ID        string    `json:"id"`
	ModelID   string    `json:"model_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message          string `json:"message"`
	ModelID          string `json:"model_id"`
	ConversationID   string `json:"conversation_id,omitempty"`
	WebSearchEnabled *bool  `json:"web_search_enabled,omitempty"`
}

// WebSearch reports whether web search is enabled for the request.
// Defaults to true when the field is omitted.
func (r *ChatRequest) WebSearch() bool {
	if r.WebSearchEnabled == nil {
		return true
	}
	return *r.WebSearchEnabled
}

// DownloadRequest is the body of POST /download-pdf.
type DownloadRequest struct {
	ConversationID string `json:"conversation_id"`
}
