package records

import (
	"time"

	"github.com/example/team-portal/internal/store"
	"github.com/example/team-portal/internal/timegrid"
)

// MeetingType distinguishes physical from virtual meetings.
type MeetingType string

const (
	MeetingInPerson MeetingType = "in_person"
	MeetingVirtual  MeetingType = "virtual"
)

// Participant is one attendee reference carried on a meeting.
type Participant struct {
	ID        string
	Name      string
	AvatarURL string
}

// Meeting is a booked time block.
type Meeting struct {
	ID            string
	Title         string
	Description   string
	Notes         string
	Type          MeetingType
	RoomID        string // set iff Type == MeetingInPerson
	RoomName      string // denormalized at booking time
	Date          timegrid.Date
	Time          timegrid.Range
	Participants  []Participant
	OrganizerID   string
	OrganizerName string
	ConferenceURL string
	CreatedAt     time.Time
}

// HasParticipant reports whether the user attends the meeting.
func (m Meeting) HasParticipant(userID string) bool {
	for _, p := range m.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// EncodeFields serializes the meeting for the record store. The id is
// store-owned and never written into the body.
func (m Meeting) EncodeFields() store.Fields {
	participants := make([]any, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, map[string]any{
			"id":         p.ID,
			"name":       p.Name,
			"avatar_url": p.AvatarURL,
		})
	}

	fields := store.Fields{
		"title":          m.Title,
		"description":    m.Description,
		"notes":          m.Notes,
		"type":           string(m.Type),
		"date":           m.Date.String(),
		"start_time":     m.Time.Start.String(),
		"end_time":       m.Time.End.String(),
		"participants":   participants,
		"organizer_id":   m.OrganizerID,
		"organizer_name": m.OrganizerName,
		"conference_url": m.ConferenceURL,
		"created_at":     encodeTime(m.CreatedAt),
	}
	if m.Type == MeetingInPerson {
		fields["room_id"] = m.RoomID
		fields["room_name"] = m.RoomName
	} else {
		fields["room_id"] = nil
		fields["room_name"] = nil
	}
	return fields
}

// DecodeMeeting rebuilds a meeting from a stored document.
func DecodeMeeting(doc store.Doc) (Meeting, error) {
	date, err := timegrid.ParseDate(stringField(doc.Fields, "date"))
	if err != nil {
		return Meeting{}, malformed(CollectionMeetings, doc.ID, "date", err)
	}
	start, err := timegrid.ParseTimeOfDay(stringField(doc.Fields, "start_time"))
	if err != nil {
		return Meeting{}, malformed(CollectionMeetings, doc.ID, "start_time", err)
	}
	end, err := timegrid.ParseTimeOfDay(stringField(doc.Fields, "end_time"))
	if err != nil {
		return Meeting{}, malformed(CollectionMeetings, doc.ID, "end_time", err)
	}
	timeRange, err := timegrid.NewRange(start, end)
	if err != nil {
		return Meeting{}, malformed(CollectionMeetings, doc.ID, "end_time", err)
	}

	meetingType := MeetingType(stringField(doc.Fields, "type"))
	if meetingType != MeetingInPerson && meetingType != MeetingVirtual {
		return Meeting{}, malformed(CollectionMeetings, doc.ID, "type", nil)
	}

	meeting := Meeting{
		ID:            doc.ID,
		Title:         stringField(doc.Fields, "title"),
		Description:   stringField(doc.Fields, "description"),
		Notes:         stringField(doc.Fields, "notes"),
		Type:          meetingType,
		Date:          date,
		Time:          timeRange,
		OrganizerID:   stringField(doc.Fields, "organizer_id"),
		OrganizerName: stringField(doc.Fields, "organizer_name"),
		ConferenceURL: stringField(doc.Fields, "conference_url"),
		CreatedAt:     timeField(doc.Fields, "created_at"),
	}
	if meetingType == MeetingInPerson {
		meeting.RoomID = stringField(doc.Fields, "room_id")
		meeting.RoomName = stringField(doc.Fields, "room_name")
	}

	if raw, ok := doc.Fields["participants"].([]any); ok {
		meeting.Participants = make([]Participant, 0, len(raw))
		for _, item := range raw {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			meeting.Participants = append(meeting.Participants, Participant{
				ID:        stringField(entry, "id"),
				Name:      stringField(entry, "name"),
				AvatarURL: stringField(entry, "avatar_url"),
			})
		}
	}

	return meeting, nil
}

// DecodeMeetings decodes a snapshot, skipping malformed documents and
// reporting them through the returned slice of errors. A single damaged
// record must not take the week view down.
func DecodeMeetings(snapshot store.Snapshot) ([]Meeting, []error) {
	meetings := make([]Meeting, 0, len(snapshot))
	var errs []error
	for _, doc := range snapshot {
		meeting, err := DecodeMeeting(doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		meetings = append(meetings, meeting)
	}
	return meetings, errs
}
