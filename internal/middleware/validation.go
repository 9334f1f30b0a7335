package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateMessageContent validates chat message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("message cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}

// ValidateConversationID validates a conversation ID.
func ValidateConversationID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid conversation ID format")
	}
	return nil
}

// ValidateModelID validates a model identifier.
func ValidateModelID(id string) error {
	if len(id) == 0 {
		return errors.New("model_id is required")
	}
	if len(id) > 128 {
		return errors.New("model_id exceeds maximum length")
	}
	return nil
}
