package timegrid

import (
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	date, err := ParseDate("2025-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := date.String(); got != "2025-06-10" {
		t.Fatalf("expected round trip, got %q", got)
	}

	for _, input := range []string{"", "2025-6-10", "2025-13-01", "10/06/2025", "2025-02-30"} {
		if _, err := ParseDate(input); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) expected ErrInvalidDate, got %v", input, err)
		}
	}
}

func TestWeekdayMondayStart(t *testing.T) {
	t.Parallel()

	cases := []struct {
		date string
		want Weekday
	}{
		{"2025-06-02", Monday},
		{"2025-06-03", Tuesday},
		{"2025-06-06", Friday},
		{"2025-06-07", Saturday},
		{"2025-06-08", Sunday},
	}
	for _, tc := range cases {
		date, err := ParseDate(tc.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.date, err)
		}
		if got := date.Weekday(); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.date, tc.want, got)
		}
	}
}

func TestMondayOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		date string
		want string
	}{
		{"2025-06-02", "2025-06-02"}, // Monday maps to itself
		{"2025-06-05", "2025-06-02"},
		{"2025-06-08", "2025-06-02"}, // Sunday belongs to the preceding Monday
		{"2025-01-01", "2024-12-30"}, // week spanning a year boundary
	}
	for _, tc := range cases {
		date, err := ParseDate(tc.date)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.date, err)
		}
		if got := MondayOf(date).String(); got != tc.want {
			t.Errorf("MondayOf(%s): expected %s, got %s", tc.date, tc.want, got)
		}
	}
}

func TestWeekOf(t *testing.T) {
	t.Parallel()

	date, _ := ParseDate("2025-06-05")
	week := WeekOf(date)
	if got := week[0].String(); got != "2025-06-02" {
		t.Fatalf("expected week to start on Monday 2025-06-02, got %s", got)
	}
	if got := week[6].String(); got != "2025-06-08" {
		t.Fatalf("expected week to end on Sunday 2025-06-08, got %s", got)
	}
	for i := 0; i < 7; i++ {
		if got := week[i].Weekday(); got != Weekday(i) {
			t.Errorf("day %d: expected weekday %s, got %s", i, Weekday(i), got)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	tod, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tod.Hour() != 9 || tod.Minute() != 30 {
		t.Fatalf("expected 09:30, got %s", tod)
	}

	for _, input := range []string{"", "9:3a", "24:00", "12:60", "noon"} {
		if _, err := ParseTimeOfDay(input); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("ParseTimeOfDay(%q) expected ErrInvalidTime, got %v", input, err)
		}
	}
}

func TestRangeOverlaps(t *testing.T) {
	t.Parallel()

	base := Range{Start: TimeAt(9, 0), End: TimeAt(10, 0)}
	cases := []struct {
		name  string
		other Range
		want  bool
	}{
		{"identical", Range{TimeAt(9, 0), TimeAt(10, 0)}, true},
		{"partial", Range{TimeAt(9, 30), TimeAt(10, 30)}, true},
		{"contained", Range{TimeAt(9, 15), TimeAt(9, 45)}, true},
		{"back to back after", Range{TimeAt(10, 0), TimeAt(11, 0)}, false},
		{"back to back before", Range{TimeAt(8, 0), TimeAt(9, 0)}, false},
		{"disjoint", Range{TimeAt(13, 0), TimeAt(14, 0)}, false},
	}
	for _, tc := range cases {
		if got := base.Overlaps(tc.other); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		// Overlap is symmetric.
		if got := tc.other.Overlaps(base); got != tc.want {
			t.Errorf("%s reversed: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestNewRangeRejectsInverted(t *testing.T) {
	t.Parallel()

	if _, err := NewRange(TimeAt(10, 0), TimeAt(9, 0)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := NewRange(TimeAt(9, 0), TimeAt(9, 0)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for zero length, got %v", err)
	}
}

func TestSpanOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		r    Range
		want Span
	}{
		{"inside grid", Range{TimeAt(9, 0), TimeAt(10, 30)}, Span{OffsetMinutes: 120, LengthMinutes: 90}},
		{"clamped at start", Range{TimeAt(6, 0), TimeAt(8, 0)}, Span{OffsetMinutes: 0, LengthMinutes: 60}},
		{"clamped at end", Range{TimeAt(21, 30), TimeAt(23, 0)}, Span{OffsetMinutes: 870, LengthMinutes: 30}},
		{"before grid", Range{TimeAt(5, 0), TimeAt(6, 0)}, Span{OffsetMinutes: 0, LengthMinutes: 0}},
		{"after grid", Range{TimeAt(22, 0), TimeAt(23, 0)}, Span{OffsetMinutes: 900, LengthMinutes: 0}},
	}
	for _, tc := range cases {
		got, err := SpanOf(tc.r)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}

	if _, err := SpanOf(Range{TimeAt(10, 0), TimeAt(9, 0)}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestRowOfClamps(t *testing.T) {
	t.Parallel()

	if got := RowOf(TimeAt(7, 0)); got != 0 {
		t.Fatalf("expected first row, got %d", got)
	}
	if got := RowOf(TimeAt(5, 0)); got != 0 {
		t.Fatalf("expected clamp to first row, got %d", got)
	}
	if got := RowOf(TimeAt(23, 30)); got != RowCount()-1 {
		t.Fatalf("expected clamp to last row, got %d", got)
	}
}

func TestHourCell(t *testing.T) {
	t.Parallel()

	cases := []struct {
		hour int
		want Range
	}{
		{9, Range{TimeAt(9, 0), TimeAt(10, 0)}},
		{5, Range{TimeAt(7, 0), TimeAt(8, 0)}},   // clamped to grid start
		{23, Range{TimeAt(21, 0), TimeAt(22, 0)}}, // clamped to last cell
		{21, Range{TimeAt(21, 0), TimeAt(22, 0)}},
	}
	for _, tc := range cases {
		if got := HourCell(tc.hour); got != tc.want {
			t.Errorf("HourCell(%d): expected %s, got %s", tc.hour, tc.want, got)
		}
	}
}

func TestParseWeekdayRoundTrip(t *testing.T) {
	t.Parallel()

	for w := Monday; w <= Sunday; w++ {
		got, ok := ParseWeekday(w.String())
		if !ok || got != w {
			t.Errorf("round trip failed for %s", w)
		}
	}
	if _, ok := ParseWeekday("Funday"); ok {
		t.Fatal("expected unknown weekday to fail")
	}
}
