// Package widget is the embeddable booking widget's view of the slot
// rules. It consumes the raw day-schedule payload (window, busy spans,
// lead time) and re-derives the visible slots locally, so the widget can
// grey out times without a round trip per click. The server re-checks
// everything at booking time; this is a mirror, not an authority.
package widget

import (
	"fmt"
	"time"

	"mynutrify-backend/internal/schedule"
)

// DaySchedule is the wire payload of the professional day-schedule
// endpoint.
type DaySchedule struct {
	ProfessionalID string      `json:"professionalId"`
	Date           string      `json:"date"`
	Timezone       string      `json:"timezone"`
	SlotMinutes    int         `json:"slotMinutes"`
	LeadMinutes    int         `json:"leadMinutes"`
	Window         *WireWindow `json:"window"`
	Busy           []WireSpan  `json:"busy"`
}

type WireWindow struct {
	DayOfWeek int `json:"dayOfWeek"`
	StartHour int `json:"startHour"`
	EndHour   int `json:"endHour"`
}

type WireSpan struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// VisibleSlots derives the bookable "HH:MM" labels for the payload's date,
// applying the same three rules the server does: posted hours, lead time,
// and no overlap with busy spans. now is the caller's clock.
func VisibleSlots(payload DaySchedule, now time.Time) ([]string, error) {
	if payload.Window == nil {
		return []string{}, nil
	}

	loc, err := time.LoadLocation(payload.Timezone)
	if err != nil {
		return nil, fmt.Errorf("widget: bad timezone %q: %w", payload.Timezone, err)
	}
	date, err := schedule.ParseDate(payload.Date, loc)
	if err != nil {
		return nil, fmt.Errorf("widget: bad date %q: %w", payload.Date, err)
	}
	if int(date.Weekday()) != payload.Window.DayOfWeek {
		return []string{}, nil
	}

	busy := make([]schedule.Span, 0, len(payload.Busy))
	for _, w := range payload.Busy {
		start, err := time.Parse(time.RFC3339, w.Start)
		if err != nil {
			return nil, fmt.Errorf("widget: bad busy start %q: %w", w.Start, err)
		}
		end, err := time.Parse(time.RFC3339, w.End)
		if err != nil {
			return nil, fmt.Errorf("widget: bad busy end %q: %w", w.End, err)
		}
		busy = append(busy, schedule.Span{Start: start, End: end})
	}

	slotLen := time.Duration(payload.SlotMinutes) * time.Minute
	lead := time.Duration(payload.LeadMinutes) * time.Minute
	cutoff := now.Add(lead)

	labels := make([]string, 0, payload.Window.EndHour-payload.Window.StartHour)
	for h := payload.Window.StartHour; h < payload.Window.EndHour; h++ {
		start := time.Date(date.Year(), date.Month(), date.Day(), h, 0, 0, 0, loc)
		if !start.After(cutoff) {
			continue
		}
		candidate := schedule.Span{Start: start, End: start.Add(slotLen)}
		blocked := false
		for _, b := range busy {
			if candidate.Overlaps(b) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		labels = append(labels, start.Format("15:04"))
	}
	return labels, nil
}
