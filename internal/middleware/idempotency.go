package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"b2b-quote/internal/cache"
	"b2b-quote/internal/model"
	"b2b-quote/internal/response"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
	idempotencyLockTTL    = time.Minute
	maxIdempotentBody     = 1 << 20
)

const (
	stateInProgress = "in_progress"
	stateCompleted  = "completed"
)

type idempotencyRecord struct {
	State       string `json:"state"`
	Status      int    `json:"status,omitempty"`
	Body        string `json:"body,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the stored response of a request repeated with the same
// Idempotency-Key. The key is reserved before the handler runs, so a duplicate
// arriving while the first is still running gets a conflict instead of a second
// execution. Reusing a key with a different body is a conflict too. Requests
// without the header, and all requests when store is nil, pass through.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	lockTTL := min(idempotencyLockTTL, ttl)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if store == nil || id == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					response.WriteError(w, r, model.ErrBodyTooLarge, logger)
					return
				}
				response.WriteError(w, r, model.Validation("failed to read request body"), logger)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(scope(r), id)

			reservation, err := json.Marshal(idempotencyRecord{State: stateInProgress, RequestHash: requestHash})
			if err != nil {
				response.WriteError(w, r, err, logger)
				return
			}
			acquired, err := store.SetNX(r.Context(), key, string(reservation), lockTTL)
			if err != nil {
				response.WriteError(w, r, model.ErrStoreUnavailable.Wrap(err), logger)
				return
			}
			if !acquired {
				replayOrRefuse(w, r, store, key, requestHash, logger)
				return
			}

			// Stores outlive the request context so a cancelled client does not leave the key locked.
			storeCtx := context.WithoutCancel(r.Context())
			completed := false
			defer func() {
				if completed {
					return
				}
				if err := store.Del(storeCtx, key); err != nil {
					logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to release idempotency key")
				}
			}()

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// Failures are not stored so the client can retry with the same key.
			if rec.status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(idempotencyRecord{
				State:       stateCompleted,
				Status:      defaultStatus(rec.status),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				ContentType: rec.Header().Get("Content-Type"),
				RequestHash: requestHash,
			})
			if err != nil {
				logger.Error().Err(err).Msg("failed to encode idempotency record")
				return
			}
			if err := store.Set(storeCtx, key, string(payload), ttl); err != nil {
				logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to persist idempotency record")
				return
			}
			completed = true
		})
	}
}

// replayOrRefuse answers a request whose key is already taken.
func replayOrRefuse(w http.ResponseWriter, r *http.Request, store cache.IdempotencyStore, key, requestHash string, logger zerolog.Logger) {
	stored, err := store.Get(r.Context(), key)
	if errors.Is(err, redis.Nil) {
		// Released between the reservation attempt and the read.
		response.WriteError(w, r, model.ErrIdempotencyBusy, logger)
		return
	}
	if err != nil {
		response.WriteError(w, r, model.ErrStoreUnavailable.Wrap(err), logger)
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		response.WriteError(w, r, err, logger)
		return
	}
	switch {
	case record.RequestHash != requestHash:
		response.WriteError(w, r, model.ErrIdempotencyReused, logger)
	case record.State == stateInProgress:
		response.WriteError(w, r, model.ErrIdempotencyBusy, logger)
	default:
		writeStoredResponse(w, &record)
	}
}

func scope(r *http.Request) string {
	user := ""
	if p := PrincipalFromContext(r.Context()); p != nil {
		user = p.UserID.String()
	}
	return strings.Join([]string{user, r.Method, r.URL.Path}, "|")
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
