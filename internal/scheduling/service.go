// Package scheduling is the user-facing workflow around the meeting week:
// loading the grid, driving edit sessions through conflict checking, and
// issuing persistence calls only when no hard conflict exists.
//
// The shared resource is the remote record store; there is no lock manager.
// The conflict check reads the meetings booked on the target date at submit
// time and then writes, so two sessions that pass the check concurrently can
// still save overlapping bookings. That time-of-check/time-of-use gap is an
// accepted limitation at this team's scale; if stronger guarantees are ever
// needed they belong in a conditional write at the store boundary, not here.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/example/team-portal/internal/availability"
	"github.com/example/team-portal/internal/conflict"
	"github.com/example/team-portal/internal/identity"
	"github.com/example/team-portal/internal/layout"
	"github.com/example/team-portal/internal/logging"
	"github.com/example/team-portal/internal/notify"
	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/store"
	"github.com/example/team-portal/internal/timegrid"
)

// Service orchestrates the scheduling workflow against the record store and
// the notification collaborator.
type Service struct {
	store      store.Store
	dispatcher notify.Dispatcher
	policy     OrganizerPolicy
	now        func() time.Time
	logger     *slog.Logger
}

// NewService wires dependencies for the scheduling workflow. A nil now
// defaults to time.Now; a nil dispatcher disables notifications.
func NewService(s store.Store, dispatcher notify.Dispatcher, policy OrganizerPolicy, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:      s,
		dispatcher: dispatcher,
		policy:     policy,
		now:        now,
		logger:     logger,
	}
}

// LoadWeek builds the week view for the Monday-start week containing the
// anchor date.
func (s *Service) LoadWeek(ctx context.Context, anchor timegrid.Date) (WeekView, error) {
	week := timegrid.WeekOf(anchor)

	meetings, err := s.meetingsBetween(ctx, week[0], week[6])
	if err != nil {
		return WeekView{}, err
	}
	rooms, err := s.ActiveRooms(ctx)
	if err != nil {
		return WeekView{}, err
	}
	users, err := s.ActiveUsers(ctx)
	if err != nil {
		return WeekView{}, err
	}

	return s.buildWeekView(ctx, week[0], meetings, rooms, users), nil
}

// ActiveRooms lists the rooms offered as booking targets for new meetings,
// ordered by name. Inactive rooms are excluded here; meetings that already
// reference one keep their stored room name.
func (s *Service) ActiveRooms(ctx context.Context) ([]records.Room, error) {
	snapshot, err := s.store.Query(ctx, records.CollectionRooms,
		[]store.Filter{{Field: "active", Op: store.OpEq, Value: true}},
		&store.Ordering{Field: "name"})
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	return records.DecodeRooms(snapshot), nil
}

// ActiveUsers lists the active user directory with availability profiles.
func (s *Service) ActiveUsers(ctx context.Context) ([]records.User, error) {
	snapshot, err := s.store.Query(ctx, records.CollectionUsers,
		[]store.Filter{{Field: "active", Op: store.OpEq, Value: true}},
		&store.Ordering{Field: "name"})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return records.DecodeUsers(snapshot), nil
}

// Meeting loads one meeting by id.
func (s *Service) Meeting(ctx context.Context, id string) (records.Meeting, error) {
	snapshot, err := s.store.Query(ctx, records.CollectionMeetings, nil, nil)
	if err != nil {
		return records.Meeting{}, fmt.Errorf("load meeting: %w", err)
	}
	for _, doc := range snapshot {
		if doc.ID == id {
			meeting, err := records.DecodeMeeting(doc)
			if err != nil {
				return records.Meeting{}, err
			}
			return meeting, nil
		}
	}
	return records.Meeting{}, ErrNotFound
}

// DeleteMeeting removes a meeting after explicit confirmation. Deletion is
// unconditional with respect to conflict state.
func (s *Service) DeleteMeeting(ctx context.Context, user identity.User, meetingID string, confirm ConfirmFunc) error {
	meeting, err := s.Meeting(ctx, meetingID)
	if err != nil {
		return err
	}
	if confirm == nil || !confirm(meeting.Title) {
		return ErrDeleteNotConfirmed
	}
	if err := s.store.Delete(ctx, records.CollectionMeetings, meetingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete meeting: %w", err)
	}
	s.log(ctx).InfoContext(ctx, "meeting deleted",
		"meeting_id", meetingID, "user_id", user.ID)
	return nil
}

// UpdateAvailability replaces a user's availability profile. Users may only
// edit their own profile unless they are an admin.
func (s *Service) UpdateAvailability(ctx context.Context, actor identity.User, userID string, profile availability.Profile) error {
	if actor.ID != userID && !actor.Admin {
		return ErrUnauthorized
	}
	err := s.store.Update(ctx, records.CollectionUsers, userID, records.EncodeAvailabilityFields(profile))
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	return nil
}

// CheckDraft runs the conflict checker for a draft against a fresh same-date
// snapshot, without persisting anything. excludeID lets an edit ignore its
// own booking.
func (s *Service) CheckDraft(ctx context.Context, draft Draft, excludeID string) (conflict.Result, error) {
	existing, err := s.meetingsOn(ctx, draft.Date)
	if err != nil {
		return conflict.Result{}, err
	}
	users, err := s.ActiveUsers(ctx)
	if err != nil {
		return conflict.Result{}, err
	}
	roomName := draft.RoomID
	if room, ok := s.findRoom(ctx, draft.RoomID); ok {
		roomName = room.Name
	}
	return conflict.Check(
		toConflictDraft(draft, roomName, excludeID),
		toConflictMeetings(existing),
		records.Profiles(users),
	), nil
}

// saveDraft is the single checked-save path shared by create and edit
// sessions. existing is nil for a creation. onPersisting, when non-nil, runs
// after the conflict check passes and before the store write, letting the
// edit session surface its Saving state.
func (s *Service) saveDraft(ctx context.Context, user identity.User, existing *records.Meeting, draft Draft, onPersisting func()) (SaveResult, error) {
	// The creator joins a new meeting before validation runs, so a draft
	// with no participants of its own is still a valid one-person booking.
	participants := normalizeParticipants(draft.Participants)
	if existing == nil && user.ID != "" && !hasParticipant(participants, user.ID) {
		participants = append([]records.Participant{{ID: user.ID, Name: user.Name, AvatarURL: user.AvatarURL}}, participants...)
	}

	vErr := validateDraft(draft)
	if len(participants) == 0 {
		vErr.add("participants", "at least one participant is required")
	}
	if vErr.HasErrors() {
		return SaveResult{}, vErr
	}

	roomName, vErr := s.resolveRoom(ctx, existing, draft)
	if vErr.HasErrors() {
		return SaveResult{}, vErr
	}

	organizerID, organizerName, err := s.resolveOrganizer(user, existing, draft)
	if err != nil {
		return SaveResult{}, err
	}

	// Fetch the date's bookings fresh at submit time rather than trusting
	// the week cache, to shrink the staleness window.
	excludeID := ""
	if existing != nil {
		excludeID = existing.ID
	}
	booked, err := s.meetingsOn(ctx, draft.Date)
	if err != nil {
		return SaveResult{}, err
	}
	users, err := s.ActiveUsers(ctx)
	if err != nil {
		return SaveResult{}, err
	}

	checkDraft := draft
	checkDraft.Participants = participants
	result := conflict.Check(
		toConflictDraft(checkDraft, roomName, excludeID),
		toConflictMeetings(booked),
		records.Profiles(users),
	)
	if result.HasHard() {
		return SaveResult{
			Status:        SaveStatusBlocked,
			HardConflicts: result.Hard,
			SoftWarnings:  result.Soft,
		}, nil
	}

	if onPersisting != nil {
		onPersisting()
	}

	meeting := records.Meeting{
		Title:         strings.TrimSpace(draft.Title),
		Description:   strings.TrimSpace(draft.Description),
		Notes:         strings.TrimSpace(draft.Notes),
		Type:          draft.Type,
		Date:          draft.Date,
		Time:          timegrid.Range{Start: draft.Start, End: draft.End},
		Participants:  participants,
		OrganizerID:   organizerID,
		OrganizerName: organizerName,
		ConferenceURL: strings.TrimSpace(draft.ConferenceURL),
	}
	if draft.Type == records.MeetingInPerson {
		meeting.RoomID = draft.RoomID
		meeting.RoomName = roomName
	}

	if existing == nil {
		meeting.CreatedAt = s.now()
		id, err := s.store.Create(ctx, records.CollectionMeetings, meeting.EncodeFields())
		if err != nil {
			return SaveResult{}, fmt.Errorf("create meeting: %w", err)
		}
		meeting.ID = id
		s.notifyParticipants(ctx, meeting, user)
		s.log(ctx).InfoContext(ctx, "meeting created",
			"meeting_id", id, "date", meeting.Date.String(), "organizer_id", organizerID)
		return SaveResult{Status: SaveStatusSaved, MeetingID: id, SoftWarnings: result.Soft}, nil
	}

	meeting.ID = existing.ID
	meeting.CreatedAt = existing.CreatedAt
	if err := s.store.Update(ctx, records.CollectionMeetings, existing.ID, meeting.EncodeFields()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SaveResult{}, ErrNotFound
		}
		return SaveResult{}, fmt.Errorf("update meeting: %w", err)
	}
	s.log(ctx).InfoContext(ctx, "meeting updated",
		"meeting_id", existing.ID, "date", meeting.Date.String())
	return SaveResult{Status: SaveStatusSaved, MeetingID: existing.ID, SoftWarnings: result.Soft}, nil
}

// notifyParticipants informs everyone but the organizer about a new
// meeting. Best-effort: the dispatcher swallows failures.
func (s *Service) notifyParticipants(ctx context.Context, meeting records.Meeting, user identity.User) {
	if s.dispatcher == nil {
		return
	}
	names := make([]string, 0, len(meeting.Participants))
	for _, p := range meeting.Participants {
		names = append(names, p.Name)
	}
	s.dispatcher.Notify(ctx, names, notify.Message{
		Kind:        "meeting",
		Title:       meeting.Title,
		Body:        fmt.Sprintf("%s invited you to a meeting", user.Name),
		ReferenceID: meeting.ID,
		CreatedBy:   user.Name,
	})
}

func (s *Service) meetingsBetween(ctx context.Context, from, to timegrid.Date) ([]records.Meeting, error) {
	snapshot, err := s.store.Query(ctx, records.CollectionMeetings, []store.Filter{
		{Field: "date", Op: store.OpGte, Value: from.String()},
		{Field: "date", Op: store.OpLte, Value: to.String()},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("load meetings: %w", err)
	}
	return s.decodeMeetings(ctx, snapshot), nil
}

func (s *Service) meetingsOn(ctx context.Context, date timegrid.Date) ([]records.Meeting, error) {
	snapshot, err := s.store.Query(ctx, records.CollectionMeetings, []store.Filter{
		{Field: "date", Op: store.OpEq, Value: date.String()},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("load meetings: %w", err)
	}
	return s.decodeMeetings(ctx, snapshot), nil
}

func (s *Service) decodeMeetings(ctx context.Context, snapshot store.Snapshot) []records.Meeting {
	meetings, errs := records.DecodeMeetings(snapshot)
	for _, err := range errs {
		s.log(ctx).WarnContext(ctx, "skipping malformed meeting record", "error", err)
	}
	return meetings
}

// resolveRoom validates the draft's room choice and returns the denormalized
// room name. Inactive rooms are rejected as new booking targets but a
// meeting that already references one may keep it; a meeting whose room
// record vanished keeps its stored name.
func (s *Service) resolveRoom(ctx context.Context, existing *records.Meeting, draft Draft) (string, *ValidationError) {
	vErr := &ValidationError{}
	if draft.Type != records.MeetingInPerson {
		return "", vErr
	}

	keepingRoom := existing != nil && existing.Type == records.MeetingInPerson && existing.RoomID == draft.RoomID

	room, found := s.findRoom(ctx, draft.RoomID)
	if !found {
		if keepingRoom {
			return existing.RoomName, vErr
		}
		vErr.add("room_id", "room does not exist")
		return "", vErr
	}
	if !room.Active && !keepingRoom {
		vErr.add("room_id", "room is not available for new bookings")
		return "", vErr
	}
	return room.Name, vErr
}

func (s *Service) findRoom(ctx context.Context, roomID string) (records.Room, bool) {
	if roomID == "" {
		return records.Room{}, false
	}
	snapshot, err := s.store.Query(ctx, records.CollectionRooms, nil, nil)
	if err != nil {
		return records.Room{}, false
	}
	for _, doc := range snapshot {
		if doc.ID == roomID {
			return records.DecodeRoom(doc), true
		}
	}
	return records.Room{}, false
}

// resolveOrganizer applies the configured organizer policy.
func (s *Service) resolveOrganizer(user identity.User, existing *records.Meeting, draft Draft) (string, string, error) {
	if existing == nil {
		return user.ID, user.Name, nil
	}
	if s.policy == OrganizerPolicyLastWriter {
		return user.ID, user.Name, nil
	}

	if draft.OrganizerID != "" && draft.OrganizerID != existing.OrganizerID {
		if user.ID != existing.OrganizerID && !user.Admin {
			return "", "", ErrUnauthorized
		}
		return draft.OrganizerID, draft.OrganizerName, nil
	}
	return existing.OrganizerID, existing.OrganizerName, nil
}

func (s *Service) buildWeekView(ctx context.Context, weekStart timegrid.Date, meetings []records.Meeting, rooms []records.Room, users []records.User) WeekView {
	view := WeekView{WeekStart: weekStart, Rooms: rooms, Users: users}
	week := timegrid.WeekOf(weekStart)
	for i, date := range week {
		day := DayView{Date: date, Placements: map[string]layout.Placement{}}
		for _, meeting := range meetings {
			if meeting.Date == date {
				day.Meetings = append(day.Meetings, meeting)
			}
		}
		sortMeetings(day.Meetings)
		events := make([]layout.Event, 0, len(day.Meetings))
		for _, meeting := range day.Meetings {
			events = append(events, layout.Event{ID: meeting.ID, Start: meeting.Time.Start, End: meeting.Time.End})
		}
		placements, err := layout.Layout(events)
		if err != nil {
			// Decoded meetings always satisfy start < end; reaching this
			// means a programming error upstream.
			s.log(ctx).ErrorContext(ctx, "week layout failed", "date", date.String(), "error", err)
		} else {
			day.Placements = placements
		}
		view.Days[i] = day
	}
	return view
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	return logging.Resolve(ctx, s.logger).With("service", "scheduling")
}

func validateDraft(draft Draft) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(draft.Title) == "" {
		vErr.add("title", "title is required")
	}
	if draft.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if draft.Start >= draft.End {
		vErr.add("time", "end time must be after start time")
	}
	switch draft.Type {
	case records.MeetingInPerson:
		if draft.RoomID == "" {
			vErr.add("room_id", "a room is required for an in-person meeting")
		}
	case records.MeetingVirtual:
		// No room.
	default:
		vErr.add("type", "meeting type must be in_person or virtual")
	}
	if trimmed := strings.TrimSpace(draft.ConferenceURL); trimmed != "" {
		if _, err := url.ParseRequestURI(trimmed); err != nil {
			vErr.add("conference_url", "must be a valid URL")
		}
	}
	return vErr
}

func normalizeParticipants(participants []records.Participant) []records.Participant {
	seen := make(map[string]struct{}, len(participants))
	out := make([]records.Participant, 0, len(participants))
	for _, p := range participants {
		if p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func hasParticipant(participants []records.Participant, userID string) bool {
	for _, p := range participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

func sortMeetings(meetings []records.Meeting) {
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetingLess(meetings[i], meetings[j])
	})
}

func meetingLess(a, b records.Meeting) bool {
	if a.Time.Start != b.Time.Start {
		return a.Time.Start < b.Time.Start
	}
	if a.Time.End != b.Time.End {
		return a.Time.End < b.Time.End
	}
	return a.ID < b.ID
}

func toConflictDraft(draft Draft, roomName, excludeID string) conflict.Draft {
	participants := make([]conflict.Participant, 0, len(draft.Participants))
	for _, p := range draft.Participants {
		participants = append(participants, conflict.Participant{ID: p.ID, Name: p.Name})
	}
	return conflict.Draft{
		InPerson:     draft.Type == records.MeetingInPerson,
		RoomID:       draft.RoomID,
		RoomName:     roomName,
		Date:         draft.Date,
		Time:         timegrid.Range{Start: draft.Start, End: draft.End},
		Participants: participants,
		ExcludeID:    excludeID,
	}
}

func toConflictMeetings(meetings []records.Meeting) []conflict.Meeting {
	out := make([]conflict.Meeting, 0, len(meetings))
	for _, m := range meetings {
		participants := make([]conflict.Participant, 0, len(m.Participants))
		for _, p := range m.Participants {
			participants = append(participants, conflict.Participant{ID: p.ID, Name: p.Name})
		}
		out = append(out, conflict.Meeting{
			ID:           m.ID,
			Title:        m.Title,
			InPerson:     m.Type == records.MeetingInPerson,
			RoomID:       m.RoomID,
			Date:         m.Date,
			Time:         m.Time,
			Participants: participants,
		})
	}
	return out
}
