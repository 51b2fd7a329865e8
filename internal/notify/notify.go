// Package notify delivers best-effort notifications to meeting participants.
// Delivery failures are logged and swallowed: the scheduling flow must never
// block or fail because a notification could not be written.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/team-portal/internal/logging"
	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/store"
)

// Message is the payload delivered to each recipient.
type Message struct {
	Kind        string
	Title       string
	Body        string
	ReferenceID string
	// CreatedBy names the actor; they are excluded from delivery so users
	// are never notified about their own actions.
	CreatedBy string
}

// Dispatcher is the notification collaborator: fire-and-forget by contract.
type Dispatcher interface {
	Notify(ctx context.Context, recipientNames []string, msg Message)
}

// StoreDispatcher writes one unread notification document per recipient.
type StoreDispatcher struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewStoreDispatcher wires the dispatcher to the record store.
func NewStoreDispatcher(s store.Store, logger *slog.Logger, now func() time.Time) *StoreDispatcher {
	if now == nil {
		now = time.Now
	}
	return &StoreDispatcher{store: s, logger: logger, now: now}
}

// Notify writes notification records for every named recipient except the
// creator. Errors are logged per recipient and never returned.
func (d *StoreDispatcher) Notify(ctx context.Context, recipientNames []string, msg Message) {
	if d == nil || d.store == nil {
		return
	}
	logger := logging.Resolve(ctx, d.logger)
	for _, name := range recipients(recipientNames, msg.CreatedBy) {
		notification := records.Notification{
			RecipientName: name,
			Kind:          msg.Kind,
			Title:         msg.Title,
			Message:       msg.Body,
			ReferenceID:   msg.ReferenceID,
			Read:          false,
			CreatedAt:     d.now(),
		}
		if _, err := d.store.Create(ctx, records.CollectionNotifications, notification.EncodeFields()); err != nil {
			logger.WarnContext(ctx, "notification delivery failed",
				"recipient", name, "kind", msg.Kind, "error", err)
		}
	}
}

// LogDispatcher records deliveries in the log only; used in tests and when
// no store-backed delivery is wanted.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher constructs a log-only dispatcher.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Notify logs each would-be delivery.
func (d *LogDispatcher) Notify(ctx context.Context, recipientNames []string, msg Message) {
	logger := logging.Resolve(ctx, d.logger)
	for _, name := range recipients(recipientNames, msg.CreatedBy) {
		logger.InfoContext(ctx, "notification", "recipient", name, "kind", msg.Kind, "title", msg.Title)
	}
}

func recipients(names []string, createdBy string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" || name == createdBy {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
