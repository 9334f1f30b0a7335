package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/deepagent-ai/agent-platform/internal/middleware"
	"github.com/deepagent-ai/agent-platform/internal/model"
	"github.com/deepagent-ai/agent-platform/internal/service"
	"github.com/deepagent-ai/agent-platform/internal/store"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
)

// ExportHandler handles conversation PDF export.
type ExportHandler struct {
	exportService *service.ExportService
	logger        *logger.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exportSvc *service.ExportService, log *logger.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportSvc,
		logger:        log,
	}
}

// DownloadPDF handles POST /download-pdf
func (h *ExportHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	var req model.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateConversationID(req.ConversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, filename, err := h.exportService.ExportPDF(req.ConversationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	http.ServeFile(w, r, path)
}
