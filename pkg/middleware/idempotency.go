package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/diagnosis/carshop-bookings/pkg/logger"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour

	// pendingTTL bounds how long a crashed request can hold its key.
	pendingTTL    = time.Minute
	pendingMarker = "\x00pending"
)

// IdempotencyStore returns "" with a nil error from Get on a miss. SetNX
// reports whether the key was free and is now held.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Idempotency replays the stored body of an earlier successful POST that
// carried the same Idempotency-Key. The key is reserved before the handler
// runs, so a concurrent duplicate gets 409 instead of a second insert.
func Idempotency(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			hashedKey := fmt.Sprintf("idempotency:%x", sha256.Sum256([]byte(r.URL.Path+"\n"+key)))

			reserved, err := store.SetNX(r.Context(), hashedKey, pendingMarker, pendingTTL)
			if err != nil {
				logger.WarnContext(r.Context(), "Idempotency reservation failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !reserved {
				existing, err := store.Get(r.Context(), hashedKey)
				if err != nil {
					logger.WarnContext(r.Context(), "Idempotency lookup failed", "error", err)
					next.ServeHTTP(w, r)
					return
				}
				if existing == "" || existing == pendingMarker {
					writeInProgress(w)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(existing))
				return
			}

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			// Record the outcome even if the client has gone away.
			ctx := context.WithoutCancel(r.Context())
			if recorder.statusCode >= 200 && recorder.statusCode < 300 && len(recorder.body) > 0 {
				if err := store.Set(ctx, hashedKey, string(recorder.body), idempotencyTTL); err != nil {
					logger.WarnContext(ctx, "Idempotency store failed", "error", err)
				}
				return
			}
			// Failed requests release the key so the client can retry.
			if err := store.Delete(ctx, hashedKey); err != nil {
				logger.WarnContext(ctx, "Idempotency release failed", "error", err)
			}
		})
	}
}

func writeInProgress(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	w.Write([]byte(`{"message":"A request with this Idempotency-Key is in progress"}` + "\n"))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       []byte
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(body []byte) (int, error) {
	r.body = append(r.body, body...)
	return r.ResponseWriter.Write(body)
}
