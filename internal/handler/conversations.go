package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deepagent-ai/agent-platform/internal/middleware"
	"github.com/deepagent-ai/agent-platform/internal/store"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	conversations *store.ConversationStore
	logger        *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(conversations *store.ConversationStore, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		logger:        log,
	}
}

// Get handles GET /conversation/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.conversations.Get(conversationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// Delete handles DELETE /conversation/{id}
//
// Deletion is idempotent: unknown IDs still acknowledge.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.conversations.Delete(conversationID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
