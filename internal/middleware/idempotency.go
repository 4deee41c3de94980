// Package middleware provides HTTP middleware components for the wallet API.
package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/benx421/lzar-wallet/internal/auth"
	"github.com/benx421/lzar-wallet/internal/models"
	"github.com/benx421/lzar-wallet/internal/repository"
)

const idempotencyKeyHeader = "Idempotency-Key"

// idempotentPaths defines which paths require idempotency handling
//
// Only operations that move funds or create charges need idempotency
var idempotentPaths = []string{
	"/api/v1/transfer",
	"/api/v1/mint",
	"/api/v1/redeem",
	"/api/v1/charges",
}

type responseCapture struct {
	http.ResponseWriter
	body       bytes.Buffer
	statusCode int
}

func newResponseCapture(w http.ResponseWriter) *responseCapture {
	return &responseCapture{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // Default if WriteHeader not called
	}
}

func (rc *responseCapture) WriteHeader(code int) {
	rc.statusCode = code
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b) // Capture for caching
	return rc.ResponseWriter.Write(b)
}

// Idempotency creates middleware that handles idempotent request caching. Keys are
// scoped to the authenticated user, so it must run after Authenticate.
//
// A key is reserved before the request runs. A concurrent request with the same key
// gets 409 until the first one finishes. Successful responses are stored and
// replayed, and failed requests release the key so they can be retried.
func Idempotency(repo repository.IdempotencyRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresIdempotency(r) {
				next.ServeHTTP(w, r)
				return
			}

			headerKey := r.Header.Get(idempotencyKeyHeader)
			userID, ok := auth.UserFrom(r.Context())
			if headerKey == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}
			idempotencyKey := userID.String() + ":" + headerKey

			requestPath := normalizeRequestPath(r.URL.Path)
			ctx := r.Context()

			err := repo.Reserve(ctx, idempotencyKey, requestPath)
			switch {
			case errors.Is(err, models.ErrIdempotencyConflict):
				replayOrConflict(w, r, repo, logger, idempotencyKey, requestPath)
				return
			case err != nil:
				logger.Error("failed to reserve idempotency key", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			capture := newResponseCapture(w)
			next.ServeHTTP(capture, r)

			// the outcome is recorded even if the client has gone away
			ctx = context.WithoutCancel(ctx)

			if !shouldCacheResponse(capture.statusCode) {
				if err := repo.Release(ctx, idempotencyKey, requestPath); err != nil {
					logger.Error("failed to release idempotency key",
						"error", err,
						"key", idempotencyKey,
					)
				}
				return
			}

			idemKey := &models.IdempotencyKey{
				Key:            idempotencyKey,
				RequestPath:    requestPath,
				Status:         models.IdempotencyCompleted,
				ResponseStatus: capture.statusCode,
				ResponseBody:   capture.body.String(),
				CreatedAt:      time.Now(),
			}

			if err := repo.Complete(ctx, idemKey); err != nil {
				logger.Error("failed to store idempotency key",
					"error", err,
					"key", idempotencyKey,
				)
			}
		})
	}
}

func replayOrConflict(
	w http.ResponseWriter,
	r *http.Request,
	repo repository.IdempotencyRepository,
	logger *slog.Logger,
	key, requestPath string,
) {
	cached, err := repo.Get(r.Context(), key, requestPath)
	if err != nil {
		logger.Error("failed to check idempotency cache", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to check idempotency key")
		return
	}

	if cached == nil || !cached.Completed() {
		logger.Debug("idempotency key in use", "key", key, "path", requestPath)
		writeError(w, http.StatusConflict, "idempotency_conflict",
			"a request with this Idempotency-Key is still being processed")
		return
	}

	logger.Debug("returning cached idempotent response",
		"key", key,
		"path", requestPath,
		"status", cached.ResponseStatus,
	)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotent-Replayed", "true")
	w.WriteHeader(cached.ResponseStatus)
	//nolint:errcheck // Best effort response writing
	w.Write([]byte(cached.ResponseBody))
}

func requiresIdempotency(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}

	return slices.Contains(idempotentPaths, normalizeRequestPath(r.URL.Path))
}

func normalizeRequestPath(urlPath string) string {
	return strings.TrimSuffix(urlPath, "/")
}

func shouldCacheResponse(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
