package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"docqa/internal/session"
)

// SessionHandler handles HTTP requests for session lifecycle and
// session-scoped state (documents, chat history)
type SessionHandler struct {
	registry *session.Registry
	logger   *log.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *session.Registry, logger *log.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   logger,
	}
}

// CreateSessionResponse is returned when a new session is created
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

// CreateSession creates a new empty session
// @Summary Create session
// @Description Create a new empty question-answering session
// @Tags sessions
// @Produce json
// @Success 201 {object} CreateSessionResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/session [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.registry.Create(r.Context())
	if err != nil {
		h.logger.Printf("Failed to create session: %v", err)
		sendError(h.logger, w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	sendJSON(h.logger, w, http.StatusCreated, CreateSessionResponse{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// GetSession returns session metadata
// @Summary Get session
// @Description Get metadata for an existing session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionInfo
// @Failure 404 {object} ErrorResponse
// @Router /api/session/{id} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	sendJSON(h.logger, w, http.StatusOK, sess.Info())
}

// DeleteSession deletes a session and all its state
// @Summary Delete session
// @Description Delete a session, its documents, indexes, and chat history
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/session/{id} [delete]
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.registry.Delete(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			sendError(h.logger, w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Printf("Failed to delete session %s: %v", id, err)
		sendError(h.logger, w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete session: %v", err))
		return
	}

	sendJSON(h.logger, w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Session deleted successfully",
	})
}

// DocumentListResponse lists the documents uploaded to a session
type DocumentListResponse struct {
	SessionID string   `json:"session_id"`
	Documents []string `json:"documents"`
	Count     int      `json:"count"`
}

// GetDocuments lists the documents uploaded to a session
// @Summary List session documents
// @Description Get the names of all documents ingested into a session
// @Tags documents
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} DocumentListResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/documents/{id} [get]
func (h *SessionHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	docs := sess.Documents()
	sendJSON(h.logger, w, http.StatusOK, DocumentListResponse{
		SessionID: sess.ID,
		Documents: docs,
		Count:     len(docs),
	})
}

// HistoryResponse carries a session's chat history
type HistoryResponse struct {
	SessionID string      `json:"session_id"`
	History   interface{} `json:"history"`
	Length    int         `json:"length"`
}

// GetHistory returns a session's chat history
// @Summary Get chat history
// @Description Get the full conversation history for a session
// @Tags history
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} HistoryResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/history/{id} [get]
func (h *SessionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	history := sess.History()
	sendJSON(h.logger, w, http.StatusOK, HistoryResponse{
		SessionID: sess.ID,
		History:   history,
		Length:    len(history),
	})
}

// ClearHistory clears a session's chat history without touching its documents
// @Summary Clear chat history
// @Description Reset the conversation while keeping uploaded documents searchable
// @Tags history
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/history/{id} [delete]
func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}

	sess.ClearChat()
	sendJSON(h.logger, w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Chat history cleared",
	})
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := mux.Vars(r)["id"]

	sess, err := h.registry.Get(id)
	if err != nil {
		sendError(h.logger, w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}
