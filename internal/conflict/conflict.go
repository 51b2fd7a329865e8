// Package conflict classifies booking conflicts for a proposed meeting
// against the meetings already booked on the same date.
//
// Hard conflicts (room or participant double-booking) must block the save;
// soft conflicts (a participant outside their declared availability) are
// advisory and never block. Both are surfaced as human-readable descriptions
// naming the clashing meeting and its time range.
package conflict

import (
	"fmt"

	"github.com/example/team-portal/internal/availability"
	"github.com/example/team-portal/internal/timegrid"
)

// Participant identifies one attendee of a meeting.
type Participant struct {
	ID   string
	Name string
}

// Meeting is the minimal booked-meeting view the checker needs.
type Meeting struct {
	ID           string
	Title        string
	InPerson     bool
	RoomID       string
	Date         timegrid.Date
	Time         timegrid.Range
	Participants []Participant
}

// Draft is a proposed meeting not yet persisted.
type Draft struct {
	InPerson     bool
	RoomID       string
	RoomName     string
	Date         timegrid.Date
	Time         timegrid.Range
	Participants []Participant
	// ExcludeID lets an edit ignore its own prior booking.
	ExcludeID string
}

// Result partitions detected conflicts. Hard descriptions block the save;
// Soft descriptions warn only.
type Result struct {
	Hard []string
	Soft []string
}

// HasHard reports whether any blocking conflict was found.
func (r Result) HasHard() bool { return len(r.Hard) > 0 }

// Check evaluates the draft against the meetings booked on the draft's date.
// Profiles supplies participants' availability declarations keyed by user
// id; participants without a profile produce no soft warning.
//
// Hard conflicts are computed first: the room clash, then one clash per
// proposed participant in draft order. Soft warnings follow in draft order.
func Check(draft Draft, existingOnDate []Meeting, profiles map[string]availability.Profile) Result {
	var result Result

	overlapping := make([]Meeting, 0, len(existingOnDate))
	for _, m := range existingOnDate {
		if m.ID == draft.ExcludeID {
			continue
		}
		if m.Date != draft.Date {
			continue
		}
		if m.Time.Overlaps(draft.Time) {
			overlapping = append(overlapping, m)
		}
	}

	if draft.InPerson && draft.RoomID != "" {
		for _, m := range overlapping {
			if m.InPerson && m.RoomID == draft.RoomID {
				name := draft.RoomName
				if name == "" {
					name = "the room"
				}
				result.Hard = append(result.Hard,
					fmt.Sprintf("%s is already booked: %q (%s)", name, m.Title, m.Time))
				break
			}
		}
	}

	for _, p := range draft.Participants {
		for _, m := range overlapping {
			if meetingHasParticipant(m, p.ID) {
				result.Hard = append(result.Hard,
					fmt.Sprintf("%s already has a meeting: %q (%s)", p.Name, m.Title, m.Time))
				break
			}
		}
	}

	for _, p := range draft.Participants {
		profile, ok := profiles[p.ID]
		if !ok {
			continue
		}
		if !profile.IsAvailable(draft.Date, draft.Time) {
			result.Soft = append(result.Soft,
				fmt.Sprintf("%s is outside their declared availability (%s %s)", p.Name, draft.Date, draft.Time))
		}
	}

	return result
}

func meetingHasParticipant(m Meeting, userID string) bool {
	for _, p := range m.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
