package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"emi-calculator/domain"
	"emi-calculator/logger"
	"emi-calculator/validation"
)

// Error codes returned in the response envelope.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"
	ErrCodeUnsupportedType = "UNSUPPORTED_MEDIA_TYPE"
)

type apiResponse struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *apiError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type apiError struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// writeJSON encodes into a buffer first so an encoding failure can still
// become a clean 500 instead of a half-written body.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body apiResponse) {
	body.RequestID = logger.RequestID(r.Context())
	body.Timestamp = time.Now().UTC()

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", slog.Any("error", err))
		http.Error(w, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`,
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, r, status, apiResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, apiResponse{Error: &apiError{Code: code, Message: message}})
}

// writeDomainError maps service errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if perr, ok := validation.IsParseError(err); ok {
		writeJSON(w, r, http.StatusBadRequest, apiResponse{Error: &apiError{
			Code:    domain.CodeValidation,
			Message: "loan input is invalid",
			Fields:  perr.Fields,
		}})
		return
	}

	var derr *domain.DomainError
	if errors.As(err, &derr) {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, domain.ErrNumericOverflow), errors.Is(err, domain.ErrNoViableTerm):
			status = http.StatusUnprocessableEntity
		}
		writeError(w, r, status, derr.Code, derr.Message)
		return
	}

	log.ErrorContext(r.Context(), "request failed", slog.Any("error", err))
	writeError(w, r, http.StatusInternalServerError, domain.CodeInternal, "internal server error")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
