// Package timegrid provides wall-clock calendar primitives for the meeting
// grid: timezone-free dates, minute-precision times, Monday-start weekdays
// and the geometry of the portal's day column.
//
// Dates and times are deliberately detached from time.Location. The portal
// treats a meeting's date as a local calendar day and its bounds as wall
// clock values; conversion to and from time.Time happens only at this
// package's boundary.
package timegrid

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDate is returned when a date string cannot be parsed.
	ErrInvalidDate = errors.New("timegrid: invalid date")
	// ErrInvalidTime is returned when a wall-clock time cannot be parsed.
	ErrInvalidTime = errors.New("timegrid: invalid time of day")
	// ErrInvalidRange is returned when a range does not satisfy start < end.
	ErrInvalidRange = errors.New("timegrid: range start must be before end")
)

// Grid bounds of the visible day column, in whole hours.
const (
	DayStartHour = 7
	DayEndHour   = 22
)

// Date is a timezone-free calendar day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// DateOf extracts the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n calendar days after d. Negative n moves back.
func (d Date) AddDays(n int) Date {
	return DateOf(d.anchor().AddDate(0, 0, n))
}

// Before reports whether d falls strictly before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Weekday returns the Monday-start weekday of d.
func (d Date) Weekday() Weekday {
	return weekdayFromTime(d.anchor().Weekday())
}

// anchor pins the date to noon UTC so calendar arithmetic cannot slip a day
// across DST transitions.
func (d Date) anchor() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// Weekday is a day of the week under the portal's Monday-start convention.
// It is distinct from time.Weekday, which starts the week on Sunday; the two
// are converted only at this boundary.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// String returns the lowercase English name used as the storage key for
// weekly availability windows.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// ParseWeekday resolves a storage key back into a Weekday.
func ParseWeekday(s string) (Weekday, bool) {
	for i, name := range weekdayNames {
		if name == s {
			return Weekday(i), true
		}
	}
	return 0, false
}

func weekdayFromTime(w time.Weekday) Weekday {
	// time.Weekday has Sunday == 0; shift so Monday == 0.
	return Weekday((int(w) + 6) % 7)
}

// MondayOf returns the Monday of the week containing d.
func MondayOf(d Date) Date {
	return d.AddDays(-int(d.Weekday()))
}

// WeekOf returns the seven days Monday through Sunday of the week
// containing d.
func WeekOf(d Date) [7]Date {
	var days [7]Date
	monday := MondayOf(d)
	for i := range days {
		days[i] = monday.AddDays(i)
	}
	return days
}

// TimeOfDay is a wall-clock time with minute precision, counted as minutes
// since midnight.
type TimeOfDay int

// ParseTimeOfDay parses a time in HH:MM form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// TimeAt builds a TimeOfDay from an hour and minute without validation of
// business bounds; values are clamped into the day.
func TimeAt(hour, minute int) TimeOfDay {
	t := hour*60 + minute
	if t < 0 {
		t = 0
	}
	if t > 24*60 {
		t = 24 * 60
	}
	return TimeOfDay(t)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Range is a half-open wall-clock interval [Start, End).
type Range struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewRange validates start < end and returns the interval.
func NewRange(start, end TimeOfDay) (Range, error) {
	if start >= end {
		return Range{}, fmt.Errorf("%w: %s >= %s", ErrInvalidRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// Overlaps reports whether r and other share any instant.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && r.End > other.Start
}

// Minutes returns the duration of the range in minutes.
func (r Range) Minutes() int {
	return int(r.End - r.Start)
}

// String formats the range as HH:MM–HH:MM.
func (r Range) String() string {
	return fmt.Sprintf("%s–%s", r.Start, r.End)
}

// RowCount returns the number of hour rows in the visible day grid.
func RowCount() int {
	return DayEndHour - DayStartHour
}

// RowOf maps a wall-clock time to its hour row in the day grid. Times before
// the grid start map to row 0 and times past the end to the last row.
func RowOf(t TimeOfDay) int {
	row := t.Hour() - DayStartHour
	if row < 0 {
		return 0
	}
	if row >= RowCount() {
		return RowCount() - 1
	}
	return row
}

// Span is the pixel-free vertical placement of a range inside the day grid:
// an offset from the grid start and a length, both in minutes.
type Span struct {
	OffsetMinutes int
	LengthMinutes int
}

// SpanOf projects a range onto the day grid, clamping any portion that falls
// outside the visible hours.
func SpanOf(r Range) (Span, error) {
	if r.Start >= r.End {
		return Span{}, fmt.Errorf("%w: %s >= %s", ErrInvalidRange, r.Start, r.End)
	}
	gridStart := TimeOfDay(DayStartHour * 60)
	gridEnd := TimeOfDay(DayEndHour * 60)

	start := r.Start
	if start < gridStart {
		start = gridStart
	}
	end := r.End
	if end > gridEnd {
		end = gridEnd
	}
	if end <= start {
		// Entirely outside the visible grid; collapse onto its nearest edge.
		if r.End <= gridStart {
			return Span{OffsetMinutes: 0, LengthMinutes: 0}, nil
		}
		return Span{OffsetMinutes: int(gridEnd - gridStart), LengthMinutes: 0}, nil
	}
	return Span{
		OffsetMinutes: int(start - gridStart),
		LengthMinutes: int(end - start),
	}, nil
}

// HourCell returns the one-hour range anchored at the given grid hour, used
// to prefill a new meeting from a clicked cell. The end is clamped to the
// grid's closing hour.
func HourCell(hour int) Range {
	if hour < DayStartHour {
		hour = DayStartHour
	}
	if hour >= DayEndHour {
		hour = DayEndHour - 1
	}
	end := hour + 1
	if end > DayEndHour {
		end = DayEndHour
	}
	return Range{Start: TimeAt(hour, 0), End: TimeAt(end, 0)}
}
