package schedule

import (
	"testing"
	"time"
)

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

// 2026-02-02 is a Monday.
func monday(t *testing.T, loc *time.Location) time.Time {
	date, err := ParseDate("2026-02-02", loc)
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	return date
}

func TestBookableSlotsFullWindow(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	w := &Window{DayOfWeek: 1, StartHour: 9, EndHour: 17}
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, loc)

	slots := BookableSlots(date, w, nil, now, MinLeadTime, loc)
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(slots))
	}
	if slots[0].Hour() != 9 || slots[len(slots)-1].Hour() != 16 {
		t.Fatalf("unexpected boundary slots: %v", slots)
	}
}

func TestBookableSlotsNoWindow(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, loc)

	slots := BookableSlots(date, nil, nil, now, MinLeadTime, loc)
	if slots == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(slots) != 0 {
		t.Fatalf("expected 0 slots, got %d", len(slots))
	}
}

func TestBookableSlotsWeekdayMismatch(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	w := &Window{DayOfWeek: 3, StartHour: 9, EndHour: 17}
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, loc)

	slots := BookableSlots(date, w, nil, now, MinLeadTime, loc)
	if len(slots) != 0 {
		t.Fatalf("expected 0 slots for mismatched weekday, got %d", len(slots))
	}
}

func TestBookableSlotsLeadTimeToday(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	w := &Window{DayOfWeek: 1, StartHour: 9, EndHour: 17}
	// 11:30 on the same Monday: 12:00 is only 30 minutes out, 13:00 is the
	// first slot strictly after now+1h.
	now := time.Date(2026, 2, 2, 11, 30, 0, 0, loc)

	slots := BookableSlots(date, w, nil, now, MinLeadTime, loc)
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d: %v", len(slots), slots)
	}
	if slots[0].Hour() != 13 {
		t.Fatalf("expected first slot at 13:00, got %v", slots[0])
	}
}

func TestBookableSlotsLeadTimeBoundary(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	w := &Window{DayOfWeek: 1, StartHour: 9, EndHour: 17}
	// Exactly now+1h is not strictly after the cutoff.
	now := time.Date(2026, 2, 2, 13, 0, 0, 0, loc)

	slots := BookableSlots(date, w, nil, now, MinLeadTime, loc)
	if slots[0].Hour() != 15 {
		t.Fatalf("expected first slot at 15:00, got %v", slots[0])
	}
}

func TestBookableSlotsConflictAdjacency(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	w := &Window{DayOfWeek: 1, StartHour: 9, EndHour: 17}
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, loc)
	booked := []Span{{Start: SlotAt(date, 14, loc), End: SlotAt(date, 15, loc)}}

	slots := BookableSlots(date, w, booked, now, MinLeadTime, loc)
	for _, s := range slots {
		if s.Hour() == 14 {
			t.Fatalf("14:00 should be filtered: %v", slots)
		}
	}
	// An appointment ending at 15:00 must not block the 15:00 slot.
	found := false
	for _, s := range slots {
		if s.Hour() == 15 {
			found = true
		}
	}
	if !found {
		t.Fatalf("15:00 should remain bookable: %v", slots)
	}
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(slots))
	}
}

func TestSpanOverlapsHalfOpen(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	a := Span{Start: SlotAt(date, 14, loc), End: SlotAt(date, 15, loc)}
	b := Span{Start: SlotAt(date, 15, loc), End: SlotAt(date, 16, loc)}
	if a.Overlaps(b) {
		t.Fatalf("adjacent spans must not overlap")
	}
	c := Span{Start: SlotAt(date, 14, loc).Add(30 * time.Minute), End: SlotAt(date, 15, loc).Add(30 * time.Minute)}
	if !a.Overlaps(c) {
		t.Fatalf("expected overlap for %v and %v", a, c)
	}
}

func TestWithinWindow(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	w := Window{DayOfWeek: 1, StartHour: 9, EndHour: 17}

	if !WithinWindow(SlotAt(date, 9, loc), w, loc) {
		t.Fatalf("09:00 should be within window")
	}
	if WithinWindow(SlotAt(date, 17, loc), w, loc) {
		t.Fatalf("17:00 is the exclusive end, should be outside")
	}
	if WithinWindow(SlotAt(date, 8, loc), w, loc) {
		t.Fatalf("08:00 should be outside window")
	}
	tuesday := date.AddDate(0, 0, 1)
	if WithinWindow(SlotAt(tuesday, 10, loc), w, loc) {
		t.Fatalf("wrong weekday should be outside window")
	}
}

func TestWithinWindowPinnedZone(t *testing.T) {
	loc := mustLoadLoc(t)
	w := Window{DayOfWeek: 1, StartHour: 9, EndHour: 17}
	// 04:30 UTC on Monday is 10:00 IST; the check must use the pinned zone.
	utcStart := time.Date(2026, 2, 2, 4, 30, 0, 0, time.UTC)
	if !WithinWindow(utcStart, w, loc) {
		t.Fatalf("04:30 UTC should be 10:00 IST, inside the window")
	}
}

func TestHourAligned(t *testing.T) {
	loc := mustLoadLoc(t)
	date := monday(t, loc)
	if !HourAligned(SlotAt(date, 10, loc), loc) {
		t.Fatalf("10:00 should be hour aligned")
	}
	if HourAligned(SlotAt(date, 10, loc).Add(30*time.Minute), loc) {
		t.Fatalf("10:30 should not be hour aligned")
	}
	// Hour alignment is zone sensitive: IST is UTC+05:30, so a UTC hour
	// boundary lands on a half hour locally.
	if HourAligned(time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC), loc) {
		t.Fatalf("09:00 UTC is 14:30 IST, not aligned")
	}
}

func TestParseLocalDateTime(t *testing.T) {
	loc := mustLoadLoc(t)
	parsed, err := ParseLocalDateTime("2026-02-02T15:30", loc)
	if err != nil {
		t.Fatalf("ParseLocalDateTime error: %v", err)
	}
	if parsed.Hour() != 15 || parsed.Minute() != 30 {
		t.Fatalf("unexpected parsed time: %v", parsed)
	}
	if parsed.Location() != loc {
		t.Fatalf("expected pinned location, got %v", parsed.Location())
	}
	if _, err := ParseLocalDateTime("2026-02-02 15:30", loc); err == nil {
		t.Fatalf("expected error for bad format")
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	loc := mustLoadLoc(t)
	if _, err := ParseDate("02/02/2026", loc); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestWindowValid(t *testing.T) {
	cases := []struct {
		w  Window
		ok bool
	}{
		{Window{DayOfWeek: 1, StartHour: 9, EndHour: 17}, true},
		{Window{DayOfWeek: 0, StartHour: 0, EndHour: 24}, true},
		{Window{DayOfWeek: 7, StartHour: 9, EndHour: 17}, false},
		{Window{DayOfWeek: 1, StartHour: 17, EndHour: 9}, false},
		{Window{DayOfWeek: 1, StartHour: 9, EndHour: 9}, false},
		{Window{DayOfWeek: 1, StartHour: -1, EndHour: 9}, false},
	}
	for _, c := range cases {
		if c.w.Valid() != c.ok {
			t.Fatalf("Valid() = %v for %+v", !c.ok, c.w)
		}
	}
}
