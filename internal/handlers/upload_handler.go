package handlers

import (
	"fmt"
	"context"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"docqa/internal/repositories"
	"docqa/internal/session"
)

// maxUploadSize caps the parsed multipart form at 100MB
const maxUploadSize = 100 << 20

// UploadHandler handles document upload and ingestion requests
type UploadHandler struct {
	registry *session.Registry
	jobRepo  repositories.JobRepository
	logger   *log.Logger
}

// NewUploadHandler creates a new upload handler. jobRepo may be nil, in
// which case async uploads degrade to synchronous processing.
func NewUploadHandler(registry *session.Registry, jobRepo repositories.JobRepository, logger *log.Logger) *UploadHandler {
	return &UploadHandler{
		registry: registry,
		jobRepo:  jobRepo,
		logger:   logger,
	}
}

// UploadResponse is returned after synchronous ingestion
type UploadResponse struct {
	SessionID   string   `json:"session_id"`
	Documents   []string `json:"documents"`
	TotalChunks int      `json:"total_chunks"`
}

// AsyncUploadResponse is returned when ingestion is queued
type AsyncUploadResponse struct {
	SessionID string `json:"session_id"`
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
}

// Upload ingests one or more PDF files into a session
// @Summary Upload documents
// @Description Upload PDF files into a session and index them for retrieval
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param session_id formData string true "Session ID"
// @Param files formData file true "PDF files"
// @Param async formData bool false "Process asynchronously" default(false)
// @Success 200 {object} UploadResponse
// @Success 202 {object} AsyncUploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/upload [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Upload request from %s", r.RemoteAddr)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.logger.Printf("Failed to parse form: %v", err)
		sendError(h.logger, w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		sendError(h.logger, w, http.StatusBadRequest, "session_id is required")
		return
	}

	sess, err := h.registry.Get(sessionID)
	if err != nil {
		sendError(h.logger, w, http.StatusNotFound, "Session not found")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		sendError(h.logger, w, http.StatusBadRequest, "No files uploaded")
		return
	}

	for _, header := range files {
		if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			sendError(h.logger, w, http.StatusBadRequest,
				fmt.Sprintf("Unsupported file type: %s (only PDF is supported)", header.Filename))
			return
		}
	}

	paths, err := h.saveFiles(sess.UploadDir(), files)
	if err != nil {
		h.logger.Printf("Failed to save uploads: %v", err)
		sendError(h.logger, w, http.StatusInternalServerError, fmt.Sprintf("Failed to save files: %v", err))
		return
	}

	async := h.getBoolParam(r, "async", false)
	if async && h.jobRepo == nil {
		h.logger.Printf("Async upload requested but job queue unavailable, processing synchronously")
		async = false
	}

	if async {
		h.enqueue(r.Context(), w, sessionID, paths)
		return
	}

	result, err := sess.AddDocuments(r.Context(), paths)
	if err != nil {
		h.logger.Printf("Ingestion failed for session %s: %v", sessionID, err)
		sendError(h.logger, w, http.StatusInternalServerError, fmt.Sprintf("Ingestion failed: %v", err))
		return
	}

	sendJSON(h.logger, w, http.StatusOK, UploadResponse{
		SessionID:   sessionID,
		Documents:   result.Documents,
		TotalChunks: result.TotalChunks,
	})
}

func (h *UploadHandler) enqueue(ctx context.Context, w http.ResponseWriter, sessionID string, paths []string) {
	job := &repositories.Job{
		ID:     uuid.NewString(),
		Type:   repositories.JobTypeIngest,
		Status: repositories.JobStatusPending,
		Payload: map[string]interface{}{
			"session_id": sessionID,
			"paths":      toInterfaces(paths),
		},
	}

	if err := h.jobRepo.Enqueue(ctx, job); err != nil {
		h.logger.Printf("Failed to enqueue ingest job: %v", err)
		sendError(h.logger, w, http.StatusInternalServerError, fmt.Sprintf("Failed to queue ingestion: %v", err))
		return
	}

	h.logger.Printf("Queued ingest job %s for session %s (%d files)", job.ID, sessionID, len(paths))
	sendJSON(h.logger, w, http.StatusAccepted, AsyncUploadResponse{
		SessionID: sessionID,
		JobID:     job.ID,
		Status:    string(repositories.JobStatusPending),
	})
}

func (h *UploadHandler) saveFiles(dir string, files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, header := range files {
		src, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
		}

		dest := filepath.Join(dir, filepath.Base(header.Filename))
		dst, err := os.Create(dest)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("failed to create %s: %w", dest, err)
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", dest, err)
		}

		paths = append(paths, dest)
	}
	return paths, nil
}

func (h *UploadHandler) getBoolParam(r *http.Request, key string, defaultValue bool) bool {
	value := r.FormValue(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func toInterfaces(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
