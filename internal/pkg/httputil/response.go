// Package httputil provides HTTP response helpers and middleware shared by
// the caseflow services.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// StatusResponse is the wire envelope used by mutation endpoints.
// Status is 1 on success and 0 otherwise; Error carries the reason for a
// zero status and is omitted on success.
type StatusResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
	Token  string `json:"token,omitempty"`
}

// JSON writes a JSON response.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// StatusOK writes a success envelope: {"status":1}.
func StatusOK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, StatusResponse{Status: 1})
}

// StatusError writes a zero-status envelope with the given HTTP code.
// Negative outcomes that are not errors (duplicates, no-op moves) use
// http.StatusOK; internal failures use http.StatusInternalServerError.
func StatusError(w http.ResponseWriter, httpStatus int, message string) {
	JSON(w, httpStatus, StatusResponse{Status: 0, Error: message})
}

// InternalError writes the standard internal-error envelope.
func InternalError(w http.ResponseWriter) {
	StatusError(w, http.StatusInternalServerError, "Internal error")
}

// ValidationError writes a validation error response.
// If err is validator.ValidationErrors, returns structured field details.
// Otherwise, returns err.Error() as details string.
func ValidationError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	var details interface{}
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		fieldErrors := make([]map[string]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fieldErrors = append(fieldErrors, map[string]string{
				"field":   e.Field(),
				"message": e.Tag(),
			})
		}
		details = fieldErrors
	} else {
		details = err.Error()
	}

	if encErr := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  0,
		"error":   "validation error",
		"details": details,
	}); encErr != nil {
		slog.Error("failed to encode validation error response", "error", encErr)
	}
}
