package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientDaySchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/professionals/pro-1/schedule" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("date") != "2026-09-07" {
			t.Errorf("date = %s", r.URL.Query().Get("date"))
		}
		json.NewEncoder(w).Encode(DaySchedule{
			ProfessionalID: "pro-1",
			Date:           "2026-09-07",
			Timezone:       "Asia/Kolkata",
			SlotMinutes:    60,
			LeadMinutes:    60,
			Window:         &WireWindow{DayOfWeek: 1, StartHour: 9, EndHour: 17},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	payload, err := c.DaySchedule(context.Background(), "pro-1", "2026-09-07")
	if err != nil {
		t.Fatalf("day schedule: %v", err)
	}
	if payload.Window == nil || payload.Window.EndHour != 17 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestClientDayScheduleError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"professional not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.DaySchedule(context.Background(), "missing", "2026-09-07"); err == nil {
		t.Fatal("expected error on 404")
	}
}
