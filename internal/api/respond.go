package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"todonest/internal/db"
)

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respondJSON writes v as the JSON response body
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError writes the failure envelope
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// decodeJSON decodes the request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// respondStoreError maps store errors onto the HTTP taxonomy: validation
// failures are 400 with the message passed through, missing or foreign
// entities are 404, everything else is a 500 with the detail withheld.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case db.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error("store operation failed",
			zap.String("action", action),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
