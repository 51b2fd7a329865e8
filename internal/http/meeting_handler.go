package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/team-portal/internal/conflict"
	"github.com/example/team-portal/internal/identity"
	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/scheduling"
)

type meetingService interface {
	CreateMeeting(ctx context.Context, user identity.User, draft scheduling.Draft) (scheduling.SaveResult, error)
	UpdateMeeting(ctx context.Context, user identity.User, meetingID string, draft scheduling.Draft) (scheduling.SaveResult, error)
	DeleteMeeting(ctx context.Context, user identity.User, meetingID string, confirm scheduling.ConfirmFunc) error
	CheckDraft(ctx context.Context, draft scheduling.Draft, excludeID string) (conflict.Result, error)
	Meeting(ctx context.Context, id string) (records.Meeting, error)
}

type MeetingHandler struct {
	service   meetingService
	responder responder
}

func NewMeetingHandler(service meetingService, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{service: service, responder: newResponder(logger)}
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	user, _ := currentUser(r.Context())
	result, err := h.service.CreateMeeting(r.Context(), user, draft)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderSaveResult(r.Context(), w, result, http.StatusCreated)
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	user, _ := currentUser(r.Context())
	result, err := h.service.UpdateMeeting(r.Context(), user, meetingID, draft)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderSaveResult(r.Context(), w, result, http.StatusOK)
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	// The API carries the confirmation decision as a query parameter; the
	// interactive prompt lives on the client side.
	confirmed := r.URL.Query().Get("confirm") == "true"
	confirm := func(string) bool { return confirmed }

	user, _ := currentUser(r.Context())
	if err := h.service.DeleteMeeting(r.Context(), user, meetingID, confirm); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	meeting, err := h.service.Meeting(r.Context(), meetingID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMeetingPayload(meeting))
}

// Check runs the conflict checker against a draft without persisting
// anything, so clients can surface live warnings while the user edits.
func (h *MeetingHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	draft, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}

	excludeID := strings.TrimSpace(r.URL.Query().Get("exclude_id"))
	result, err := h.service.CheckDraft(r.Context(), draft, excludeID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, checkResponse{
		HardConflicts: emptyIfNil(result.Hard),
		SoftWarnings:  emptyIfNil(result.Soft),
	})
}

func (h *MeetingHandler) decodeDraft(w http.ResponseWriter, r *http.Request) (scheduling.Draft, bool) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return scheduling.Draft{}, false
	}
	draft, vErr := req.toDraft()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return scheduling.Draft{}, false
	}
	return draft, true
}

func (h *MeetingHandler) renderSaveResult(ctx context.Context, w http.ResponseWriter, result scheduling.SaveResult, okStatus int) {
	if result.Status == scheduling.SaveStatusBlocked {
		h.responder.writeJSON(ctx, w, http.StatusConflict, blockedResponse{
			Message:       "the meeting cannot be saved because of scheduling conflicts",
			HardConflicts: result.HardConflicts,
			SoftWarnings:  result.SoftWarnings,
		})
		return
	}
	h.responder.writeJSON(ctx, w, okStatus, saveResponse{
		ID:           result.MeetingID,
		SoftWarnings: result.SoftWarnings,
	})
}

func emptyIfNil(messages []string) []string {
	if messages == nil {
		return []string{}
	}
	return messages
}
