package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/team-portal/internal/identity"
	"github.com/example/team-portal/internal/logging"
)

// SessionResolver maps a bearer token to the acting user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (identity.User, error)
}

// RequireSession rejects requests without a valid session token and places
// the acting user into the request context.
func RequireSession(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractTokenFromRequest(r)
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, identity.ErrSessionExpired):
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "session expired, please sign in again"})
				case errors.Is(err, identity.ErrNoSession):
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Message: "session not found, please sign in again"})
				case errors.Is(err, identity.ErrAccountInactive):
					responder.writeJSON(r.Context(), w, http.StatusForbidden, errorResponse{Message: "this account has been deactivated"})
				default:
					responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "session validation failed"})
				}
				return
			}

			ctx := identity.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a per-request logger to the context and records
// request timing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

func extractTokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	// Websocket clients cannot set headers from the browser API.
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
