// Package records owns the portal's storage schema: the collection names
// and the codecs between typed domain records and the document store's
// JSON-like field maps.
//
// Decoding is tolerant of missing optional fields but strict about the
// scheduling invariants: a meeting without a parseable date or a valid
// start < end range is rejected rather than given nonsensical defaults.
package records

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/team-portal/internal/store"
)

// Collection names used against the record store.
const (
	CollectionMeetings      = "meetings"
	CollectionRooms         = "rooms"
	CollectionUsers         = "users"
	CollectionNotifications = "notifications"
	CollectionSessions      = "sessions"
)

// ErrMalformedRecord wraps decode failures so callers can distinguish bad
// stored data from store errors.
var ErrMalformedRecord = errors.New("records: malformed record")

func malformed(collection, id, field string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s/%s field %q: %v", ErrMalformedRecord, collection, id, field, err)
	}
	return fmt.Errorf("%w: %s/%s field %q", ErrMalformedRecord, collection, id, field)
}

func stringField(fields store.Fields, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func boolField(fields store.Fields, key string, fallback bool) bool {
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return fallback
}

func intField(fields store.Fields, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func timeField(fields store.Fields, key string) time.Time {
	raw := stringField(fields, key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodeTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
