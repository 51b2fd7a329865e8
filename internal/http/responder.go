// Package http is the portal's delivery layer: a JSON API over the
// scheduling core plus a websocket stream of live week views. The core never
// depends on this package; it stays usable as a library.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/team-portal/internal/identity"
	"github.com/example/team-portal/internal/logging"
	"github.com/example/team-portal/internal/scheduling"
)

var (
	errBadRequestBody      = errors.New("invalid request body")
	errInvalidMeetingID    = errors.New("invalid meeting id")
	errInvalidUserID       = errors.New("invalid user id")
	errInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	errMissingSessionToken = errors.New("missing session token")
	errDeleteNotConfirmed  = errors.New("deletion requires confirm=true")
)

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}
	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps core errors onto stable HTTP semantics.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "unknown error"})
	case errors.Is(err, scheduling.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{Message: "you are not allowed to perform this operation"})
	case errors.Is(err, scheduling.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
	case errors.Is(err, scheduling.ErrSaveInFlight):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "a save is already in progress"})
	case errors.Is(err, scheduling.ErrDeleteNotConfirmed):
		r.writeError(ctx, w, http.StatusBadRequest, errDeleteNotConfirmed)
	case errors.Is(err, identity.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Message: "invalid email or password"})
	case errors.Is(err, identity.ErrAccountInactive):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{Message: "this account has been deactivated"})
	default:
		var vErr *scheduling.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "the submitted values are invalid",
				Errors:  vErr.FieldErrors,
			})
			return
		}
		r.loggerFor(ctx).ErrorContext(ctx, "internal error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "failed to save or load, please retry"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	return logging.Resolve(ctx, r.logger)
}
