package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/team-portal/internal/availability"
	"github.com/example/team-portal/internal/identity"
	"github.com/example/team-portal/internal/records"
)

type userService interface {
	ActiveUsers(ctx context.Context) ([]records.User, error)
	UpdateAvailability(ctx context.Context, actor identity.User, userID string, profile availability.Profile) error
}

type UserHandler struct {
	service   userService
	responder responder
}

func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, responder: newResponder(logger)}
}

// List returns the active user directory with availability profiles, used
// to populate participant pickers.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	users, err := h.service.ActiveUsers(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]userPayload, 0, len(users))
	for _, user := range users {
		payload = append(payload, toUserPayload(user))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// UpdateAvailability replaces a user's weekly schedule and exceptions. The
// service enforces that only the user themselves or an admin may do this.
func (h *UserHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	var req availabilityPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	profile, vErr := req.toProfile()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	actor, _ := currentUser(r.Context())
	if err := h.service.UpdateAvailability(r.Context(), actor, userID, profile); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
