package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"docqa/internal/models"
	"docqa/internal/session"
)

// AskHandler handles question-answering requests
type AskHandler struct {
	registry *session.Registry
	logger   *log.Logger
}

// NewAskHandler creates a new ask handler
func NewAskHandler(registry *session.Registry, logger *log.Logger) *AskHandler {
	return &AskHandler{
		registry: registry,
		logger:   logger,
	}
}

// Ask answers a question against a session's documents.
// Processing failures inside the pipeline are reported in the answer
// envelope with HTTP 200, so clients always get a renderable response;
// only unknown sessions and malformed requests produce error statuses.
// @Summary Ask a question
// @Description Answer a question using the documents uploaded to a session
// @Tags qa
// @Accept json
// @Produce json
// @Param request body models.AskRequest true "Question"
// @Success 200 {object} models.AskResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/ask [post]
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := req.Validate(); err != nil {
		sendError(h.logger, w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.registry.Get(req.SessionID)
	if err != nil {
		sendError(h.logger, w, http.StatusNotFound, "Session not found")
		return
	}

	h.logger.Printf("Question for session %s: %q", req.SessionID, req.Question)
	resp := sess.Ask(r.Context(), req.Question)
	sendJSON(h.logger, w, http.StatusOK, resp)
}
