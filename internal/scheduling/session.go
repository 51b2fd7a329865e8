package scheduling

import (
	"context"
	"errors"

	"github.com/example/team-portal/internal/availability"
	"github.com/example/team-portal/internal/identity"
	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/timegrid"
)

// EditSession drives one meeting through the editing lifecycle:
//
//	Idle → Editing → Validating → Blocked (back to Editing on change)
//	                            → Saving → Saved
//	                                     → SaveFailed (back to Editing)
//
// A session belongs to a single user interaction and is not safe for
// concurrent use; the in-flight guard only protects against double submission
// from the same flow.
type EditSession struct {
	svc      *Service
	user     identity.User
	state    State
	tab      Tab
	draft    Draft
	existing *records.Meeting
	hard     []string
	closed   bool
}

// NewMeetingSession opens an edit session for a new meeting. When prefill is
// non-nil the draft is anchored to the clicked grid cell with a one-hour
// range; otherwise today at 09:00–10:00. The creator is the first
// participant.
func (s *Service) NewMeetingSession(user identity.User, prefill *CellPrefill) *EditSession {
	draft := Draft{
		Type: records.MeetingInPerson,
		Participants: []records.Participant{
			{ID: user.ID, Name: user.Name, AvatarURL: user.AvatarURL},
		},
	}
	if prefill != nil {
		draft.Date = prefill.Date
		cell := timegrid.HourCell(prefill.Hour)
		draft.Start = cell.Start
		draft.End = cell.End
	} else {
		draft.Date = timegrid.DateOf(s.now())
		draft.Start = timegrid.TimeAt(9, 0)
		draft.End = timegrid.TimeAt(10, 0)
	}
	return &EditSession{svc: s, user: user, state: StateEditing, tab: TabInfo, draft: draft}
}

// EditMeetingSession opens an edit session over an existing meeting.
func (s *Service) EditMeetingSession(user identity.User, meeting records.Meeting) *EditSession {
	existing := meeting
	draft := Draft{
		Title:         meeting.Title,
		Description:   meeting.Description,
		Notes:         meeting.Notes,
		ConferenceURL: meeting.ConferenceURL,
		Type:          meeting.Type,
		RoomID:        meeting.RoomID,
		Date:          meeting.Date,
		Start:         meeting.Time.Start,
		End:           meeting.Time.End,
		Participants:  append([]records.Participant(nil), meeting.Participants...),
	}
	return &EditSession{svc: s, user: user, state: StateEditing, tab: TabInfo, draft: draft, existing: &existing}
}

// State returns the session's lifecycle position.
func (e *EditSession) State() State { return e.state }

// ActiveTab returns the pane currently shown.
func (e *EditSession) ActiveTab() Tab { return e.tab }

// SwitchTab changes the visible pane without touching conflict state.
func (e *EditSession) SwitchTab(tab Tab) {
	e.tab = tab
}

// Draft returns a copy of the working draft.
func (e *EditSession) Draft() Draft {
	draft := e.draft
	draft.Participants = append([]records.Participant(nil), e.draft.Participants...)
	return draft
}

// IsNew reports whether the session creates a meeting rather than editing
// one.
func (e *EditSession) IsNew() bool { return e.existing == nil }

// HardConflicts returns the blocking conflicts from the last save attempt.
// Empty outside the Blocked state.
func (e *EditSession) HardConflicts() []string {
	return append([]string(nil), e.hard...)
}

// SetDraft replaces the working draft. Changing any field the conflict
// checker depends on (date, time range, room, type, participants) discards
// previously computed hard conflicts and returns a Blocked session to
// Editing: conflicts are never cached across edits.
func (e *EditSession) SetDraft(draft Draft) error {
	if e.closed {
		return ErrSessionClosed
	}
	switch e.state {
	case StateEditing, StateBlocked, StateSaveFailed:
	default:
		return errInvalidTransition(e.state, "edit draft")
	}
	if !conflictRelevantEquals(e.draft, draft) {
		e.hard = nil
	}
	e.draft = draft
	e.state = StateEditing
	return nil
}

// AvailabilityWarnings evaluates the advisory availability check for the
// current draft against the given profiles. Purely informational; shown live
// in the participants pane and never persisted.
func (e *EditSession) AvailabilityWarnings(profiles map[string]availability.Profile) []string {
	if e.draft.Start >= e.draft.End {
		return nil
	}
	timeRange := timegrid.Range{Start: e.draft.Start, End: e.draft.End}
	var warnings []string
	for _, p := range e.draft.Participants {
		profile, ok := profiles[p.ID]
		if !ok {
			continue
		}
		if !profile.IsAvailable(e.draft.Date, timeRange) {
			warnings = append(warnings, p.Name+" is outside their declared availability")
		}
	}
	return warnings
}

// Save runs the checked-save path. The outcome maps onto the state machine:
// a ValidationError keeps the session Editing; hard conflicts move it to
// Blocked without persisting; a store failure moves it to SaveFailed so the
// user can retry; success moves it to Saved and ends the session.
func (e *EditSession) Save(ctx context.Context) (SaveResult, error) {
	if e.closed {
		return SaveResult{}, ErrSessionClosed
	}
	switch e.state {
	case StateEditing, StateBlocked, StateSaveFailed:
	case StateValidating, StateSaving:
		return SaveResult{}, ErrSaveInFlight
	default:
		return SaveResult{}, errInvalidTransition(e.state, "save")
	}

	e.state = StateValidating
	e.hard = nil

	result, err := e.svc.saveDraft(ctx, e.user, e.existing, e.draft, func() { e.state = StateSaving })
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) || errors.Is(err, ErrUnauthorized) {
			e.state = StateEditing
			return SaveResult{}, err
		}
		e.state = StateSaveFailed
		return SaveResult{}, err
	}

	if result.Status == SaveStatusBlocked {
		e.hard = result.HardConflicts
		e.state = StateBlocked
		return result, nil
	}

	e.state = StateSaved
	e.closed = true
	return result, nil
}

// Close discards the draft without saving. No background work survives the
// session.
func (e *EditSession) Close() {
	e.closed = true
	e.state = StateIdle
}

func errInvalidTransition(from State, action string) error {
	return errors.New("scheduling: cannot " + action + " in state " + from.String())
}

// CreateMeeting runs a complete new-meeting session in one call: used by
// delivery layers that receive the finished draft at once.
func (s *Service) CreateMeeting(ctx context.Context, user identity.User, draft Draft) (SaveResult, error) {
	session := s.NewMeetingSession(user, nil)
	if err := session.SetDraft(draft); err != nil {
		return SaveResult{}, err
	}
	return session.Save(ctx)
}

// UpdateMeeting runs a complete edit session in one call against the stored
// meeting.
func (s *Service) UpdateMeeting(ctx context.Context, user identity.User, meetingID string, draft Draft) (SaveResult, error) {
	existing, err := s.Meeting(ctx, meetingID)
	if err != nil {
		return SaveResult{}, err
	}
	session := s.EditMeetingSession(user, existing)
	if err := session.SetDraft(draft); err != nil {
		return SaveResult{}, err
	}
	return session.Save(ctx)
}
