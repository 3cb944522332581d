// Package handlers contains the HTTP layer: request decoding, response
// encoding, and status-code mapping. All business behavior lives in the
// session and qa packages.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the standard error envelope for failed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SuccessResponse is the standard envelope for requests with no payload
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func sendJSON(logger *log.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Printf("Failed to encode JSON: %v", err)
	}
}

func sendError(logger *log.Logger, w http.ResponseWriter, status int, message string) {
	sendJSON(logger, w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}
