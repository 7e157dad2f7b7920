// internal/server/respond.go
package server

import (
	"encoding/json"
	"net/http"

	apperrors "jobmate-backend/internal/common/errors"
)

// successEnvelope is the JSON wrapper for successful responses.
type successEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// errorEnvelope is the JSON wrapper for failures.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data})
}

// respondError normalizes err through the error handler, which also logs it.
func (s *Server) respondError(w http.ResponseWriter, err error, operation string) {
	stdErr, status := s.errors.Handle(err, operation)

	envelope := errorEnvelope{
		Success: false,
		Message: stdErr.Message,
		Code:    string(stdErr.Code),
	}
	// Client errors carry details so callers can fix their request; server
	// errors keep internals out of the response body.
	if apperrors.IsClientError(stdErr.Code) {
		envelope.Details = stdErr.Details
	}

	writeJSON(w, status, envelope)
}

func respondValidation(w http.ResponseWriter, details string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{
		Success: false,
		Message: "Request validation failed",
		Code:    string(apperrors.ErrCodeValidationFailed),
		Details: details,
	})
}

// decodeBody parses the JSON request body into dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
