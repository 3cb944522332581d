// Package routes wires HTTP paths to their handlers.
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"docqa/internal/handlers"
)

// Handlers groups everything RegisterRoutes needs
type Handlers struct {
	Health http.HandlerFunc

	Session *handlers.SessionHandler
	Upload  *handlers.UploadHandler
	Ask     *handlers.AskHandler
	Job     *handlers.JobHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Session lifecycle
	router.HandleFunc("/api/session", h.Session.CreateSession).Methods(http.MethodPost)
	router.HandleFunc("/api/session/{id}", h.Session.GetSession).Methods(http.MethodGet)
	router.HandleFunc("/api/session/{id}", h.Session.DeleteSession).Methods(http.MethodDelete)

	// Documents and ingestion
	router.HandleFunc("/api/upload", h.Upload.Upload).Methods(http.MethodPost)
	router.HandleFunc("/api/documents/{id}", h.Session.GetDocuments).Methods(http.MethodGet)

	// Question answering and history
	router.HandleFunc("/api/ask", h.Ask.Ask).Methods(http.MethodPost)
	router.HandleFunc("/api/history/{id}", h.Session.GetHistory).Methods(http.MethodGet)
	router.HandleFunc("/api/history/{id}", h.Session.ClearHistory).Methods(http.MethodDelete)

	// Background jobs
	router.HandleFunc("/api/jobs/{id}", h.Job.GetJob).Methods(http.MethodGet)
}
