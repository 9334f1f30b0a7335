package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deepagent-ai/agent-platform/internal/markdown"
	"github.com/deepagent-ai/agent-platform/internal/store"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
)

// ArtifactHandler handles artifact listing and retrieval.
type ArtifactHandler struct {
	artifacts *store.ArtifactStore
	logger    *logger.Logger
}

// NewArtifactHandler creates a new artifact handler.
func NewArtifactHandler(artifacts *store.ArtifactStore, log *logger.Logger) *ArtifactHandler {
	return &ArtifactHandler{
		artifacts: artifacts,
		logger:    log,
	}
}

// List handles GET /artifacts
func (h *ArtifactHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.artifacts.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"artifacts": infos})
}

// Get handles GET /artifacts/{filename}
//
// With ?render=html the content is returned as an HTML fragment, for
// previewing markdown work products.
func (h *ArtifactHandler) Get(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	if err := store.ValidateFilename(filename); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	content, err := h.artifacts.Read(filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "artifact not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("render") == "html" {
		html, err := markdown.ToHTML(content)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"filename": filename,
		"content":  content,
	})
}
