package scheduling

import (
	"github.com/example/team-portal/internal/layout"
	"github.com/example/team-portal/internal/records"
	"github.com/example/team-portal/internal/timegrid"
)

// Draft captures the editable fields of a meeting being created or changed.
type Draft struct {
	Title         string
	Description   string
	Notes         string
	ConferenceURL string
	Type          records.MeetingType
	RoomID        string
	Date          timegrid.Date
	Start         timegrid.TimeOfDay
	End           timegrid.TimeOfDay
	Participants  []records.Participant
	// OrganizerID/OrganizerName request a reassignment of the organizer.
	// Whether the request takes effect depends on the service's
	// OrganizerPolicy; empty values always keep the current organizer.
	OrganizerID   string
	OrganizerName string
}

// conflictRelevantEquals reports whether two drafts agree on every field the
// conflict checker looks at. Hard-conflict state computed for one draft is
// stale the moment any of these change.
func conflictRelevantEquals(a, b Draft) bool {
	if a.Date != b.Date || a.Start != b.Start || a.End != b.End {
		return false
	}
	if a.Type != b.Type || a.RoomID != b.RoomID {
		return false
	}
	if len(a.Participants) != len(b.Participants) {
		return false
	}
	ids := make(map[string]struct{}, len(a.Participants))
	for _, p := range a.Participants {
		ids[p.ID] = struct{}{}
	}
	for _, p := range b.Participants {
		if _, ok := ids[p.ID]; !ok {
			return false
		}
	}
	return true
}

// OrganizerPolicy decides who may reassign a meeting's organizer on edit.
type OrganizerPolicy int

const (
	// OrganizerPolicyRestricted keeps the stored organizer unless the
	// acting user is that organizer or an admin. This is the default.
	OrganizerPolicyRestricted OrganizerPolicy = iota
	// OrganizerPolicyLastWriter stamps the acting user as organizer on
	// every save, reproducing the legacy portal's behavior.
	OrganizerPolicyLastWriter
)

// SaveStatus is the outcome class of a save attempt.
type SaveStatus int

const (
	// SaveStatusSaved means the meeting was persisted.
	SaveStatusSaved SaveStatus = iota
	// SaveStatusBlocked means hard conflicts prevented persistence.
	SaveStatusBlocked
)

// SaveResult reports the outcome of a checked save.
type SaveResult struct {
	Status        SaveStatus
	MeetingID     string
	HardConflicts []string
	SoftWarnings  []string
}

// DayView is one day column of the week grid: the day's meetings in start
// order and their collision-free placements.
type DayView struct {
	Date       timegrid.Date
	Meetings   []records.Meeting
	Placements map[string]layout.Placement
}

// WeekView is the orchestrator's state container for one Monday-start week:
// meetings per day, the rooms offered for new bookings, and the active user
// directory with availability profiles. It is rebuilt from store snapshots
// and never mutated in place by consumers.
type WeekView struct {
	WeekStart timegrid.Date
	Days      [7]DayView
	Rooms     []records.Room
	Users     []records.User
}

// CellPrefill identifies the grid cell a new meeting was started from.
type CellPrefill struct {
	Date timegrid.Date
	Hour int
}

// ConfirmFunc asks the user to confirm a destructive action, given the
// meeting title. Returning false aborts the action.
type ConfirmFunc func(title string) bool

// State is the edit session's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateValidating
	StateBlocked
	StateSaving
	StateSaved
	StateSaveFailed
)

// String names the state for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateBlocked:
		return "blocked"
	case StateSaving:
		return "saving"
	case StateSaved:
		return "saved"
	case StateSaveFailed:
		return "save_failed"
	default:
		return "unknown"
	}
}

// Tab is the active pane of the edit session.
type Tab int

const (
	TabInfo Tab = iota
	TabParticipants
)
