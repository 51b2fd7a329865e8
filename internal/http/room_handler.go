package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/team-portal/internal/records"
)

type roomService interface {
	ActiveRooms(ctx context.Context) ([]records.Room, error)
}

type RoomHandler struct {
	service   roomService
	responder responder
}

func NewRoomHandler(service roomService, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{service: service, responder: newResponder(logger)}
}

// List returns the rooms currently offered for new bookings.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.service.ActiveRooms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]roomPayload, 0, len(rooms))
	for _, room := range rooms {
		payload = append(payload, toRoomPayload(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}
