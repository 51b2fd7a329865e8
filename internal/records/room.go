package records

import "github.com/example/team-portal/internal/store"

// Room is a bookable physical space. Rooms are soft-deleted: deactivating a
// room stops offering it for new bookings but never touches meetings that
// already reference it.
type Room struct {
	ID          string
	Name        string
	Capacity    int // 0 means undeclared
	Description string
	Color       string
	Active      bool
}

// EncodeFields serializes the room for the record store.
func (r Room) EncodeFields() store.Fields {
	return store.Fields{
		"name":        r.Name,
		"capacity":    r.Capacity,
		"description": r.Description,
		"color":       r.Color,
		"active":      r.Active,
	}
}

// DecodeRoom rebuilds a room from a stored document. Rooms written before
// the active flag existed default to active.
func DecodeRoom(doc store.Doc) Room {
	return Room{
		ID:          doc.ID,
		Name:        stringField(doc.Fields, "name"),
		Capacity:    intField(doc.Fields, "capacity"),
		Description: stringField(doc.Fields, "description"),
		Color:       stringField(doc.Fields, "color"),
		Active:      boolField(doc.Fields, "active", true),
	}
}

// DecodeRooms decodes a snapshot of rooms.
func DecodeRooms(snapshot store.Snapshot) []Room {
	rooms := make([]Room, 0, len(snapshot))
	for _, doc := range snapshot {
		rooms = append(rooms, DecodeRoom(doc))
	}
	return rooms
}
