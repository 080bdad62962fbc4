// Package response writes the JSON envelopes shared by handlers and middleware.
package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"b2b-quote/internal/database"
	"b2b-quote/internal/model"

	"github.com/rs/zerolog"
)

type contextKey string

const ctxRequestID contextKey = "request_id"

// WithRequestID stores the correlation id of the request in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}

// RequestIDFromContext returns the correlation id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRequestID).(string); ok {
		return v
	}
	return ""
}

// WriteJSON writes data with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out, so an encode failure cannot be reported to the client.
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess wraps data in the success envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, model.APIResponse{Success: true, Message: message, Data: data})
}

// WriteError resolves err to a status code and writes the error envelope.
// Internal errors are logged with their cause and reported without it.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	de := resolve(err)
	status := StatusFor(de.Kind)
	requestID := RequestIDFromContext(r.Context())

	body := model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		Details:       de.Details(),
		CorrelationID: requestID,
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("code", de.Code).
		Int("status", status).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", requestID).
		Msg("request failed")

	WriteJSON(w, status, body)
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	case model.KindNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func resolve(err error) *model.DomainError {
	var de *model.DomainError
	if errors.As(err, &de) {
		return de
	}
	if database.IsUnavailable(err) {
		return model.ErrStoreUnavailable
	}
	return model.NewDomainError(model.KindInternal, model.ErrCodeInternalError, "An unexpected error occurred")
}
