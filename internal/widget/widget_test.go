package widget

import (
	"testing"
	"time"

	"mynutrify-backend/internal/schedule"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

// 2026-09-07 is a Monday.
func mondayPayload(busy []WireSpan) DaySchedule {
	return DaySchedule{
		ProfessionalID: "pro-1",
		Date:           "2026-09-07",
		Timezone:       "Asia/Kolkata",
		SlotMinutes:    60,
		LeadMinutes:    60,
		Window:         &WireWindow{DayOfWeek: 1, StartHour: 9, EndHour: 17},
		Busy:           busy,
	}
}

func TestVisibleSlotsFullDay(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2026, time.September, 6, 20, 0, 0, 0, loc)

	labels, err := VisibleSlots(mondayPayload(nil), now)
	if err != nil {
		t.Fatalf("visible slots: %v", err)
	}
	want := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v", labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestVisibleSlotsRespectBusyAndAdjacency(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2026, time.September, 6, 20, 0, 0, 0, loc)
	busy := []WireSpan{{
		Start: time.Date(2026, time.September, 7, 14, 0, 0, 0, loc).Format(time.RFC3339),
		End:   time.Date(2026, time.September, 7, 15, 0, 0, 0, loc).Format(time.RFC3339),
	}}

	labels, err := VisibleSlots(mondayPayload(busy), now)
	if err != nil {
		t.Fatalf("visible slots: %v", err)
	}
	for _, l := range labels {
		if l == "14:00" {
			t.Error("busy 14:00 slot still visible")
		}
	}
	var adjacent bool
	for _, l := range labels {
		if l == "15:00" {
			adjacent = true
		}
	}
	if !adjacent {
		t.Error("15:00 should stay visible next to a 14:00-15:00 booking")
	}
}

func TestVisibleSlotsApplyLeadTime(t *testing.T) {
	loc := kolkata(t)
	// 11:30 on the same Monday: 12:00 is within the hour, first slot 13:00.
	now := time.Date(2026, time.September, 7, 11, 30, 0, 0, loc)

	labels, err := VisibleSlots(mondayPayload(nil), now)
	if err != nil {
		t.Fatalf("visible slots: %v", err)
	}
	if len(labels) == 0 || labels[0] != "13:00" {
		t.Fatalf("labels = %v, want first slot 13:00", labels)
	}
}

func TestVisibleSlotsEmptyCases(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2026, time.September, 6, 20, 0, 0, 0, loc)

	noWindow := mondayPayload(nil)
	noWindow.Window = nil
	labels, err := VisibleSlots(noWindow, now)
	if err != nil || len(labels) != 0 {
		t.Errorf("no window: labels = %v, err = %v", labels, err)
	}

	wrongDay := mondayPayload(nil)
	wrongDay.Date = "2026-09-06"
	labels, err = VisibleSlots(wrongDay, now)
	if err != nil || len(labels) != 0 {
		t.Errorf("weekday mismatch: labels = %v, err = %v", labels, err)
	}

	bad := mondayPayload(nil)
	bad.Timezone = "Mars/Olympus"
	if _, err := VisibleSlots(bad, now); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

// The widget must agree with the server-side computation slot for slot.
func TestVisibleSlotsMatchServerRules(t *testing.T) {
	loc := kolkata(t)
	now := time.Date(2026, time.September, 7, 10, 15, 0, 0, loc)
	date := time.Date(2026, time.September, 7, 0, 0, 0, 0, loc)
	window := schedule.Window{DayOfWeek: 1, StartHour: 9, EndHour: 17}
	busy := []schedule.Span{
		{Start: time.Date(2026, time.September, 7, 13, 0, 0, 0, loc), End: time.Date(2026, time.September, 7, 14, 0, 0, 0, loc)},
		{Start: time.Date(2026, time.September, 7, 15, 30, 0, 0, loc), End: time.Date(2026, time.September, 7, 16, 15, 0, 0, loc)},
	}

	server := schedule.BookableSlots(date, &window, busy, now, time.Hour, loc)

	wireBusy := make([]WireSpan, 0, len(busy))
	for _, b := range busy {
		wireBusy = append(wireBusy, WireSpan{Start: b.Start.Format(time.RFC3339), End: b.End.Format(time.RFC3339)})
	}
	labels, err := VisibleSlots(mondayPayload(wireBusy), now)
	if err != nil {
		t.Fatalf("visible slots: %v", err)
	}

	if len(labels) != len(server) {
		t.Fatalf("widget %v vs server %d slots", labels, len(server))
	}
	for i, s := range server {
		if labels[i] != s.In(loc).Format("15:04") {
			t.Errorf("slot %d: widget %q vs server %q", i, labels[i], s.In(loc).Format("15:04"))
		}
	}
}
