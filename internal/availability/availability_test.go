package availability

import (
	"testing"

	"github.com/example/team-portal/internal/timegrid"
)

func mustDate(t *testing.T, s string) timegrid.Date {
	t.Helper()
	date, err := timegrid.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %s: %v", s, err)
	}
	return date
}

func slot(startH, endH int) timegrid.Range {
	return timegrid.Range{Start: timegrid.TimeAt(startH, 0), End: timegrid.TimeAt(endH, 0)}
}

func TestIsAvailableWithoutWeeklySchedule(t *testing.T) {
	t.Parallel()

	var profile Profile
	if !profile.IsAvailable(mustDate(t, "2025-06-10"), slot(9, 10)) {
		t.Fatal("a profile declaring nothing should be treated as available")
	}
}

func TestIsAvailableWeeklyWindow(t *testing.T) {
	t.Parallel()

	profile := Profile{
		Weekly: WeeklySchedule{
			timegrid.Tuesday: {Active: true, Start: timegrid.TimeAt(9, 0), End: timegrid.TimeAt(17, 0)},
		},
	}
	tuesday := mustDate(t, "2025-06-10")
	wednesday := mustDate(t, "2025-06-11")

	cases := []struct {
		name string
		date timegrid.Date
		r    timegrid.Range
		want bool
	}{
		{"inside window", tuesday, slot(9, 10), true},
		{"exact window", tuesday, slot(9, 17), true},
		{"starts before window", tuesday, timegrid.Range{Start: timegrid.TimeAt(8, 30), End: timegrid.TimeAt(9, 30)}, false},
		{"ends after window", tuesday, timegrid.Range{Start: timegrid.TimeAt(16, 30), End: timegrid.TimeAt(17, 30)}, false},
		{"undeclared weekday", wednesday, slot(9, 10), false},
	}
	for _, tc := range cases {
		if got := profile.IsAvailable(tc.date, tc.r); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsAvailableInactiveWindow(t *testing.T) {
	t.Parallel()

	profile := Profile{
		Weekly: WeeklySchedule{
			timegrid.Monday:  {Active: true, Start: timegrid.TimeAt(9, 0), End: timegrid.TimeAt(17, 0)},
			timegrid.Tuesday: {Active: false, Start: timegrid.TimeAt(9, 0), End: timegrid.TimeAt(17, 0)},
		},
	}
	if profile.IsAvailable(mustDate(t, "2025-06-10"), slot(9, 10)) {
		t.Fatal("an inactive window should make the whole weekday unavailable")
	}
}

func TestExceptionOverridesWeeklySchedule(t *testing.T) {
	t.Parallel()

	tuesday := mustDate(t, "2025-06-10")
	profile := Profile{
		Weekly: WeeklySchedule{
			timegrid.Tuesday: {Active: true, Start: timegrid.TimeAt(9, 0), End: timegrid.TimeAt(17, 0)},
		},
	}
	profile.SetException(tuesday, Exception{Available: false, Reason: "public holiday"})

	// The slot sits squarely inside the weekly window, but the exception
	// decides the whole day.
	if profile.IsAvailable(tuesday, slot(10, 11)) {
		t.Fatal("unavailable exception should override the weekly window")
	}

	// Other days of the same week are untouched.
	if !profile.IsAvailable(tuesday.AddDays(-7), slot(10, 11)) {
		t.Fatal("exception should only affect its own date")
	}
}

func TestAvailableExceptionOpensWholeDay(t *testing.T) {
	t.Parallel()

	saturday := mustDate(t, "2025-06-14")
	profile := Profile{
		Weekly: WeeklySchedule{
			timegrid.Monday: {Active: true, Start: timegrid.TimeAt(9, 0), End: timegrid.TimeAt(17, 0)},
		},
	}
	profile.SetException(saturday, Exception{Available: true, Reason: "release weekend"})

	if !profile.IsAvailable(saturday, slot(7, 22)) {
		t.Fatal("available exception should open the entire day")
	}
}

func TestSetAndClearException(t *testing.T) {
	t.Parallel()

	tuesday := mustDate(t, "2025-06-10")
	profile := Profile{
		Weekly: WeeklySchedule{
			timegrid.Tuesday: {Active: true, Start: timegrid.TimeAt(9, 0), End: timegrid.TimeAt(17, 0)},
		},
	}

	profile.SetException(tuesday, Exception{Available: false})
	profile.SetException(tuesday, Exception{Available: true, Reason: "replaced"})
	if !profile.IsAvailable(tuesday, slot(7, 8)) {
		t.Fatal("second SetException should replace the first")
	}

	profile.ClearException(tuesday)
	if profile.IsAvailable(tuesday, slot(7, 8)) {
		t.Fatal("clearing the exception should restore the weekly window")
	}
}
