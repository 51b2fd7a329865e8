// Package testfixtures supplies deterministic clocks, identifier generators
// and record fixtures shared across test suites.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/team-portal/internal/availability"
	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/timegrid"
)

var (
	userCounter    uint64
	roomCounter    uint64
	meetingCounter uint64
)

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so week arithmetic in tests stays readable.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the calendar date of ReferenceTime.
func ReferenceDate() timegrid.Date {
	return timegrid.DateOf(referenceTime)
}

// UserOption configures a generated user fixture.
type UserOption func(*records.User)

// NewUser returns a deterministic active user with optional overrides.
func NewUser(opts ...UserOption) records.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	user := records.User{
		ID:     id,
		Name:   fmt.Sprintf("User %03d", idx),
		Email:  fmt.Sprintf("%s@example.com", id),
		Active: true,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(u *records.User) { u.ID = id }
}

// WithUserName overrides the generated display name.
func WithUserName(name string) UserOption {
	return func(u *records.User) { u.Name = name }
}

// WithAdmin marks the user as an administrator.
func WithAdmin() UserOption {
	return func(u *records.User) { u.Admin = true }
}

// WithAvailability attaches an availability profile.
func WithAvailability(profile availability.Profile) UserOption {
	return func(u *records.User) { u.Availability = profile }
}

// RoomOption configures a generated room fixture.
type RoomOption func(*records.Room)

// NewRoom returns a deterministic active room with optional overrides.
func NewRoom(opts ...RoomOption) records.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	room := records.Room{
		ID:     fmt.Sprintf("room-%03d", idx),
		Name:   fmt.Sprintf("Room %03d", idx),
		Active: true,
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(r *records.Room) { r.ID = id }
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(r *records.Room) { r.Name = name }
}

// Inactive marks the room as retired.
func Inactive() RoomOption {
	return func(r *records.Room) { r.Active = false }
}

// MeetingOption configures a generated meeting fixture.
type MeetingOption func(*records.Meeting)

// NewMeeting returns a deterministic virtual meeting on the reference date
// from 09:00 to 10:00, with optional overrides.
func NewMeeting(opts ...MeetingOption) records.Meeting {
	idx := atomic.AddUint64(&meetingCounter, 1)
	meeting := records.Meeting{
		ID:        fmt.Sprintf("meeting-%03d", idx),
		Title:     fmt.Sprintf("Meeting %03d", idx),
		Type:      records.MeetingVirtual,
		Date:      ReferenceDate(),
		Time:      timegrid.Range{Start: timegrid.TimeAt(9, 0), End: timegrid.TimeAt(10, 0)},
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&meeting)
	}
	return meeting
}

// WithMeetingID overrides the generated meeting ID.
func WithMeetingID(id string) MeetingOption {
	return func(m *records.Meeting) { m.ID = id }
}

// WithTitle overrides the generated title.
func WithTitle(title string) MeetingOption {
	return func(m *records.Meeting) { m.Title = title }
}

// On places the meeting on the given date.
func On(date timegrid.Date) MeetingOption {
	return func(m *records.Meeting) { m.Date = date }
}

// Between sets the meeting's time range.
func Between(start, end timegrid.TimeOfDay) MeetingOption {
	return func(m *records.Meeting) { m.Time = timegrid.Range{Start: start, End: end} }
}

// InRoom makes the meeting in-person in the given room.
func InRoom(room records.Room) MeetingOption {
	return func(m *records.Meeting) {
		m.Type = records.MeetingInPerson
		m.RoomID = room.ID
		m.RoomName = room.Name
	}
}

// WithParticipants sets the attendee list.
func WithParticipants(users ...records.User) MeetingOption {
	return func(m *records.Meeting) {
		m.Participants = m.Participants[:0]
		for _, u := range users {
			m.Participants = append(m.Participants, u.AsParticipant())
		}
	}
}

// OrganizedBy stamps the meeting's organizer.
func OrganizedBy(user records.User) MeetingOption {
	return func(m *records.Meeting) {
		m.OrganizerID = user.ID
		m.OrganizerName = user.Name
	}
}
