// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deepagent-ai/agent-platform/internal/middleware"
	"github.com/deepagent-ai/agent-platform/internal/model"
	"github.com/deepagent-ai/agent-platform/internal/service"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
	"github.com/deepagent-ai/agent-platform/pkg/metrics"
)

// ChatHandler handles the streaming chat endpoint.
type ChatHandler struct {
	chatService *service.ChatService
	logger      *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatSvc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatSvc,
		logger:      log,
	}
}

// Chat handles POST /chat
//
// The response is an SSE stream of data-only frames; the envelope type
// rides inside the JSON payload, so failures after the headers commit are
// reported as error envelopes rather than HTTP status codes.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateModelID(req.ModelID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ConversationID != "" {
		if err := middleware.ValidateConversationID(req.ConversationID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sink := func(env model.Envelope) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return sendSSE(w, flusher, env)
	}

	h.chatService.Stream(ctx, &req, sink)
}

// sendSSE writes one data-only SSE frame and flushes it to the client.
func sendSSE(w http.ResponseWriter, flusher http.Flusher, env model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()

	return nil
}
