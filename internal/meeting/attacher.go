package meeting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mynutrify-backend/internal/models"
)

// PlaceholderLink is stored when a real meeting link could not be obtained.
// The booking is already confirmed at that point; the client is told the
// link arrives out of band.
const PlaceholderLink = "Meeting link will be sent separately"

// API is the slice of the provider client the attacher needs.
type API interface {
	CreateMeeting(ctx context.Context, req CreateMeetingRequest) (Meeting, error)
	GetMeeting(ctx context.Context, id string) (Meeting, error)
}

// LinkStore writes the resolved link back onto the appointment row.
type LinkStore interface {
	SetMeetingLink(ctx context.Context, id, link string, now time.Time) error
}

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
}

type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 5,
	Interval:    1500 * time.Millisecond,
}

// Attacher runs the advisory second phase of a booking: create a meeting
// room with the provider, poll until the join link is ready, and write it
// onto the appointment. Every failure path degrades to the placeholder;
// none of them can undo the booking.
type Attacher struct {
	api      API
	links    LinkStore
	profiles ProfileStore
	policy   RetryPolicy
	location *time.Location
	log      *slog.Logger
}

func NewAttacher(api API, links LinkStore, profiles ProfileStore, policy RetryPolicy, location *time.Location, log *slog.Logger) *Attacher {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy
	}
	return &Attacher{
		api:      api,
		links:    links,
		profiles: profiles,
		policy:   policy,
		location: location,
		log:      log,
	}
}

// Attach resolves and stores the meeting link for a confirmed appointment
// and returns whatever was stored. Professionals who have not delegated
// their calendar get no link and no write at all.
func (a *Attacher) Attach(ctx context.Context, appointment models.Appointment) string {
	log := a.log.With(slog.String("appointment_id", appointment.ID))

	professional, err := a.profiles.GetByID(ctx, appointment.ProfessionalID)
	if err != nil {
		log.Warn("meeting: professional lookup failed", slog.String("error", err.Error()))
		return a.store(ctx, log, appointment.ID, PlaceholderLink)
	}
	if !professional.CalendarDelegated {
		return ""
	}

	if a.api == nil {
		log.Info("meeting: provider not configured, using placeholder")
		return a.store(ctx, log, appointment.ID, PlaceholderLink)
	}

	// Best effort; a missing client email just means the provider cannot
	// send its own invite.
	clientEmail := ""
	if client, err := a.profiles.GetByID(ctx, appointment.ClientID); err == nil {
		clientEmail = client.Email
	}

	created, err := a.api.CreateMeeting(ctx, CreateMeetingRequest{
		AppointmentID:  appointment.ID,
		ProfessionalID: appointment.ProfessionalID,
		ClientEmail:    clientEmail,
		Topic:          "Session with " + professional.FullName,
		StartTime:      appointment.StartTime.In(a.location).Format(time.RFC3339),
		EndTime:        appointment.EndTime.In(a.location).Format(time.RFC3339),
	})
	if err != nil {
		log.Warn("meeting: create failed", slog.String("error", err.Error()))
		return a.store(ctx, log, appointment.ID, PlaceholderLink)
	}
	if created.JoinURL != "" {
		return a.store(ctx, log, appointment.ID, created.JoinURL)
	}

	link, err := a.poll(ctx, created.ID)
	if err != nil {
		log.Warn("meeting: link not ready", slog.String("meeting_id", created.ID), slog.String("error", err.Error()))
		return a.store(ctx, log, appointment.ID, PlaceholderLink)
	}
	return a.store(ctx, log, appointment.ID, link)
}

// poll asks the provider for the join link until it shows up or the retry
// budget runs out.
func (a *Attacher) poll(ctx context.Context, meetingID string) (string, error) {
	ticker := time.NewTicker(a.policy.Interval)
	defer ticker.Stop()

	for attempt := 0; attempt < a.policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		meeting, err := a.api.GetMeeting(ctx, meetingID)
		if err != nil {
			continue
		}
		if meeting.JoinURL != "" {
			return meeting.JoinURL, nil
		}
	}
	return "", errors.New("retry attempts exhausted")
}

func (a *Attacher) store(ctx context.Context, log *slog.Logger, appointmentID, link string) string {
	if err := a.links.SetMeetingLink(ctx, appointmentID, link, time.Now().In(a.location)); err != nil {
		log.Error("meeting: store link failed", slog.String("error", err.Error()))
		return ""
	}
	return link
}
