package records

import (
	"time"

	"github.com/example/team-portal/internal/store"
)

// Notification is an in-app notification document written for one recipient.
type Notification struct {
	ID            string
	RecipientName string
	Kind          string
	Title         string
	Message       string
	ReferenceID   string
	Read          bool
	CreatedAt     time.Time
}

// EncodeFields serializes the notification for the record store.
func (n Notification) EncodeFields() store.Fields {
	var reference any
	if n.ReferenceID != "" {
		reference = n.ReferenceID
	}
	return store.Fields{
		"recipient_name": n.RecipientName,
		"kind":           n.Kind,
		"title":          n.Title,
		"message":        n.Message,
		"reference_id":   reference,
		"read":           n.Read,
		"created_at":     encodeTime(n.CreatedAt),
	}
}

// DecodeNotification rebuilds a notification from a stored document.
func DecodeNotification(doc store.Doc) Notification {
	return Notification{
		ID:            doc.ID,
		RecipientName: stringField(doc.Fields, "recipient_name"),
		Kind:          stringField(doc.Fields, "kind"),
		Title:         stringField(doc.Fields, "title"),
		Message:       stringField(doc.Fields, "message"),
		ReferenceID:   stringField(doc.Fields, "reference_id"),
		Read:          boolField(doc.Fields, "read", false),
		CreatedAt:     timeField(doc.Fields, "created_at"),
	}
}
