package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/team-portal/internal/scheduling"
	"github.com/example/team-portal/internal/timegrid"
)

type weekService interface {
	LoadWeek(ctx context.Context, anchor timegrid.Date) (scheduling.WeekView, error)
	WatchWeek(ctx context.Context, anchor timegrid.Date) (*scheduling.WeekWatcher, error)
}

type WeekHandler struct {
	service   weekService
	responder responder
	logger    *slog.Logger
	now       func() time.Time
}

func NewWeekHandler(service weekService, logger *slog.Logger) *WeekHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeekHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the week view containing the requested date, defaulting to
// the current week when no date is given.
func (h *WeekHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	anchor, ok := h.anchorDate(w, r)
	if !ok {
		return
	}

	view, err := h.service.LoadWeek(r.Context(), anchor)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWeekPayload(view))
}

func (h *WeekHandler) anchorDate(w http.ResponseWriter, r *http.Request) (timegrid.Date, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return timegrid.DateOf(h.now()), true
	}
	anchor, err := timegrid.ParseDate(raw)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return timegrid.Date{}, false
	}
	return anchor, true
}
