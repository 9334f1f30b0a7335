package handler

import (
	"net/http"

	"github.com/deepagent-ai/agent-platform/internal/config"
)

// ModelsHandler serves the static model catalog.
type ModelsHandler struct {
	catalog *config.ModelCatalog
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(catalog *config.ModelCatalog) *ModelsHandler {
	return &ModelsHandler{catalog: catalog}
}

// List handles GET /models
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog)
}
