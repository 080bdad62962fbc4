package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"b2b-quote/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"validation", model.Validation("quantity is required"), http.StatusBadRequest, model.ErrCodeValidation},
		{"unauthorised", model.ErrUnauthorised, http.StatusUnauthorized, model.ErrCodeUnauthorised},
		{"forbidden", model.ErrForbidden, http.StatusForbidden, model.ErrCodeForbidden},
		{"not found", fmt.Errorf("lookup: %w", model.ErrRFQNotFound), http.StatusNotFound, model.ErrCodeRFQNotFound},
		{"conflict", model.ErrStaleState, http.StatusConflict, model.ErrCodeStaleState},
		{"store unavailable", model.ErrStoreUnavailable, http.StatusServiceUnavailable, model.ErrCodeStoreUnavailable},
		{"raw connection failure", &pgconn.PgError{Code: "08006"}, http.StatusServiceUnavailable, model.ErrCodeStoreUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, model.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/rfq", nil)
			req = req.WithContext(WithRequestID(req.Context(), "req-123"))
			w := httptest.NewRecorder()

			WriteError(w, req, tt.err, zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedCode, body.Error)
			assert.Equal(t, "req-123", body.CorrelationID)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	w := httptest.NewRecorder()

	WriteError(w, req, errors.New("pq: password authentication failed for user admin"), zerolog.Nop())

	assert.NotContains(t, w.Body.String(), "password")
}

func TestWriteError_Details(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/rfq", nil)
	w := httptest.NewRecorder()

	WriteError(w, req, model.Validation("validation failed").WithDetails(map[string]string{"containerType": "is invalid"}), zerolog.Nop())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"containerType": "is invalid"}, body["details"])
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	WriteSuccess(w, http.StatusCreated, "RFQ created", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"RFQ created","data":{"id":"abc"}}`, w.Body.String())
}
