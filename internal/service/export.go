package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/deepagent-ai/agent-platform/internal/export"
	"github.com/deepagent-ai/agent-platform/internal/store"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
	"github.com/deepagent-ai/agent-platform/pkg/metrics"
)

// ExportService turns stored conversations into PDF export artifacts.
type ExportService struct {
	conversations *store.ConversationStore
	renderer      *export.Renderer
	logger        *logger.Logger
}

// NewExportService creates a new export service.
func NewExportService(conversations *store.ConversationStore, renderer *export.Renderer, log *logger.Logger) *ExportService {
	return &ExportService{
		conversations: conversations,
		renderer:      renderer,
		logger:        log,
	}
}

// ExportPDF renders the conversation to a PDF under the exports root and
// returns the file path and download filename. Unknown conversations
// return store.ErrNotFound.
func (s *ExportService) ExportPDF(conversationID string) (path, filename string, err error) {
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return "", "", err
	}

	path, filename, err = s.renderer.Render(conv)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return "", "", fmt.Errorf("failed to render conversation %s: %w", conversationID, err)
	}

	metrics.ExportsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("conversation exported",
		zap.String("conversation_id", conversationID),
		zap.String("file", filename),
	)

	return path, filename, nil
}
