package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"docqa/internal/repositories"
)

// JobHandler exposes background job status
type JobHandler struct {
	jobRepo repositories.JobRepository
	logger  *log.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobRepo repositories.JobRepository, logger *log.Logger) *JobHandler {
	return &JobHandler{
		jobRepo: jobRepo,
		logger:  logger,
	}
}

// GetJob returns the status of a background job
// @Summary Get job status
// @Description Get status, progress, and result of a background ingestion job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} repositories.Job
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/jobs/{id} [get]
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.jobRepo == nil {
		sendError(h.logger, w, http.StatusServiceUnavailable, "Job queue is not available")
		return
	}

	jobID := mux.Vars(r)["id"]

	job, err := h.jobRepo.Get(r.Context(), jobID)
	if err != nil {
		sendError(h.logger, w, http.StatusNotFound, "Job not found")
		return
	}

	sendJSON(h.logger, w, http.StatusOK, job)
}
