// Package schedule holds the pure slot-computation rules shared by the
// booking service and the availability endpoints. All functions take the
// scheduling timezone explicitly; nothing here reads wall-clock time or
// touches storage.
package schedule

import (
	"errors"
	"time"
)

const (
	// SessionMinutes is the fixed duration of a client-booked session.
	SessionMinutes = 60

	// MinLeadTime is how far in advance a slot must be booked.
	MinLeadTime = time.Hour
)

var (
	ErrInvalidDate = errors.New("invalid date format")
	ErrInvalidTime = errors.New("invalid time format")
)

// Window is one weekly recurring availability window. Hours are integer
// civil hours in the scheduling timezone; the window covers
// [StartHour, EndHour) on its weekday.
type Window struct {
	DayOfWeek int
	StartHour int
	EndHour   int
}

func (w Window) Valid() bool {
	return w.DayOfWeek >= 0 && w.DayOfWeek <= 6 &&
		w.StartHour >= 0 && w.EndHour <= 24 && w.StartHour < w.EndHour
}

// Span is a half-open occupied interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses half-open semantics: a span ending exactly when another
// starts does not overlap it.
func (s Span) Overlaps(o Span) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

// ParseLocalDateTime parses a "YYYY-MM-DDTHH:mm" value as civil time in loc.
// This is the wire shape of the professional-initiated scheduling path.
func ParseLocalDateTime(value string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02T15:04", value, loc)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return parsed, nil
}

// SlotAt returns the instant of hour h on date's civil day in loc.
func SlotAt(date time.Time, hour int, loc *time.Location) time.Time {
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
}

// HourStarts enumerates the hour-aligned slot starts of w on date, or nil
// when date's weekday does not match the window.
func HourStarts(date time.Time, w Window, loc *time.Location) []time.Time {
	if int(date.In(loc).Weekday()) != w.DayOfWeek {
		return nil
	}
	starts := make([]time.Time, 0, w.EndHour-w.StartHour)
	for h := w.StartHour; h < w.EndHour; h++ {
		starts = append(starts, SlotAt(date, h, loc))
	}
	return starts
}

// FilterLeadTime keeps only slots strictly after now+lead.
func FilterLeadTime(slots []time.Time, now time.Time, lead time.Duration) []time.Time {
	cutoff := now.Add(lead)
	filtered := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		if s.After(cutoff) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// FilterBooked drops slots whose [start, start+duration) overlaps any
// booked span.
func FilterBooked(slots []time.Time, duration time.Duration, booked []Span) []time.Time {
	filtered := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		current := Span{Start: s, End: s.Add(duration)}
		overlap := false
		for _, b := range booked {
			if current.Overlaps(b) {
				overlap = true
				break
			}
		}
		if !overlap {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// BookableSlots derives the ordered bookable slot starts for date from the
// professional's window and confirmed appointment spans. A nil window means
// the professional has no hours that weekday and yields an empty slice, not
// an error. Recomputed fresh on every call; appointment state changes
// concurrently, so results must never be cached across requests without an
// invalidation path.
func BookableSlots(date time.Time, w *Window, booked []Span, now time.Time, lead time.Duration, loc *time.Location) []time.Time {
	if w == nil {
		return []time.Time{}
	}
	slots := HourStarts(date, *w, loc)
	slots = FilterLeadTime(slots, now, lead)
	return FilterBooked(slots, SessionMinutes*time.Minute, booked)
}

// WithinWindow reports whether start's civil hour falls inside w on the
// matching weekday. Minute alignment is the caller's concern.
func WithinWindow(start time.Time, w Window, loc *time.Location) bool {
	local := start.In(loc)
	if int(local.Weekday()) != w.DayOfWeek {
		return false
	}
	return local.Hour() >= w.StartHour && local.Hour() < w.EndHour
}

// HourAligned reports whether start is exactly on an hour boundary in loc.
func HourAligned(start time.Time, loc *time.Location) bool {
	local := start.In(loc)
	return local.Minute() == 0 && local.Second() == 0 && local.Nanosecond() == 0
}
