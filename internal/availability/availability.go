// Package availability resolves whether a participant's declared schedule
// admits a proposed meeting slot.
//
// A profile combines a recurring weekly window per weekday with dated
// exceptions. An exception is a whole-day verdict: when present it fully
// overrides the weekly schedule for that date, and an available-day
// exception opens the entire day regardless of the weekly window. Exceptions
// carry no time window of their own.
package availability

import (
	"github.com/example/team-portal/internal/timegrid"
)

// Window is the availability slot declared for one weekday.
type Window struct {
	Active bool
	Start  timegrid.TimeOfDay
	End    timegrid.TimeOfDay
}

// WeeklySchedule maps Monday-start weekdays to declared windows. A missing
// or inactive entry means the participant is unavailable that weekday.
type WeeklySchedule map[timegrid.Weekday]Window

// Exception overrides the weekly schedule for a single date. At most one
// exception exists per date; the last write wins at save time.
type Exception struct {
	Available bool
	Reason    string
}

// Profile is a participant's stored availability declaration.
type Profile struct {
	Weekly     WeeklySchedule
	Exceptions map[timegrid.Date]Exception
}

// IsAvailable reports whether the profile admits the requested date and
// range. It is a pure function of its inputs.
//
// Resolution order: a dated exception decides the whole day; otherwise the
// weekly window for the date's weekday must be active and contain the range.
// A profile with no weekly schedule at all declares nothing and is treated
// as always available, matching how unconfigured users behave in the portal.
func (p Profile) IsAvailable(date timegrid.Date, r timegrid.Range) bool {
	if exc, ok := p.Exceptions[date]; ok {
		return exc.Available
	}
	if len(p.Weekly) == 0 {
		return true
	}
	window, ok := p.Weekly[date.Weekday()]
	if !ok || !window.Active {
		return false
	}
	return r.Start >= window.Start && r.End <= window.End
}

// SetException records a whole-day override, replacing any previous entry
// for the same date.
func (p *Profile) SetException(date timegrid.Date, exc Exception) {
	if p.Exceptions == nil {
		p.Exceptions = make(map[timegrid.Date]Exception)
	}
	p.Exceptions[date] = exc
}

// ClearException removes the override for a date, restoring the weekly
// schedule.
func (p *Profile) ClearException(date timegrid.Date) {
	delete(p.Exceptions, date)
}
