// Package httputil centralizes JSON response and error mapping for handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "mintgate/pkg/domain-errors"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to an HTTP response. Internal errors omit
// the description so infrastructure details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) {
		body.ErrorDescription = de.Message()
	}
	WriteJSON(w, StatusForCode(code), body)
}

// StatusForCode maps domain error codes to HTTP status codes.
func StatusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput,
		dErrors.CodeInvalidAccount, dErrors.CodeInvalidAmount:
		return http.StatusBadRequest
	case dErrors.CodeNotFound, dErrors.CodeNotBlacklisted:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeAlreadyBlacklisted:
		return http.StatusConflict
	case dErrors.CodeQuotaExceeded, dErrors.CodeAccountFrozen,
		dErrors.CodeComplianceNotEnabled, dErrors.CodePermanentDelegateNotEnabled,
		dErrors.CodeSenderBlacklisted, dErrors.CodeRecipientBlacklisted:
		return http.StatusUnprocessableEntity
	case dErrors.CodeTokenPaused, dErrors.CodeTransferPaused:
		// Paused instruments are a retry-later condition, not a client fault.
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Decode parses a JSON request body into T, returning a bad_request domain
// error on malformed input.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return v, nil
}

// LogAndWriteError logs the failure with its request id and writes the
// mapped response.
func LogAndWriteError(w http.ResponseWriter, logger *slog.Logger, requestID string, msg string, err error) {
	if logger != nil {
		logger.Error(msg, "request_id", requestID, "error", err)
	}
	WriteError(w, err)
}
