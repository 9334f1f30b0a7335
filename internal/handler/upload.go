package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deepagent-ai/agent-platform/internal/extract"
	"github.com/deepagent-ai/agent-platform/pkg/logger"
	"github.com/deepagent-ai/agent-platform/pkg/metrics"
)

const maxUploadBytes = 32 << 20 // 32MB

// UploadHandler handles PDF uploads.
type UploadHandler struct {
	uploadsDir string
	logger     *logger.Logger
}

// NewUploadHandler creates a new upload handler writing into uploadsDir.
func NewUploadHandler(uploadsDir string, log *logger.Logger) *UploadHandler {
	return &UploadHandler{
		uploadsDir: uploadsDir,
		logger:     log,
	}
}

// UploadResponse is the body returned by POST /upload.
type UploadResponse struct {
	FileID      string              `json:"file_id"`
	Filename    string              `json:"filename"`
	TextContent string              `json:"text_content"`
	Images      []extract.PageImage `json:"images"`
	PageCount   int                 `json:"page_count"`
}

// Upload handles POST /upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "Only PDF files are supported")
		return
	}

	fileID := uuid.New().String()
	path := filepath.Join(h.uploadsDir, fileID+".pdf")

	dst, err := os.Create(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := dst.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Extraction never fails the request; text and images degrade
	// independently to placeholders.
	res := extract.FromPDF(path)

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	h.logger.Info("pdf uploaded",
		zap.String("file_id", fileID),
		zap.String("filename", header.Filename),
		zap.Int("pages", res.PageCount),
	)

	images := res.Images
	if images == nil {
		images = []extract.PageImage{}
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		FileID:      fileID,
		Filename:    header.Filename,
		TextContent: res.Text,
		Images:      images,
		PageCount:   res.PageCount,
	})
}
