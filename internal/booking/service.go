package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mynutrify-backend/internal/models"
	"mynutrify-backend/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProfileStore is the slice of the profile collaborator the orchestrator
// needs: resolving the two parties of a booking.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
}

// WindowStore resolves a professional's posted hours for a weekday.
type WindowStore interface {
	WindowFor(ctx context.Context, professionalID string, day time.Weekday) (*schedule.Window, error)
}

type Service struct {
	repo     Repository
	profiles ProfileStore
	windows  WindowStore
	locks    *professionalLocks
	location *time.Location
	leadTime time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewService(repo Repository, profileStore ProfileStore, windowStore WindowStore, location *time.Location, leadTime time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profileStore,
		windows:  windowStore,
		locks:    newProfessionalLocks(),
		location: location,
		leadTime: leadTime,
		now:      time.Now,
		log:      log,
	}
}

// WithClock overrides the service clock; tests use this to pin "now".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type BookRequest struct {
	ProfessionalID string
	ClientID       string
	Start          time.Time
	SessionType    string
}

type ScheduleRequest struct {
	ProfessionalID  string
	ClientID        string
	Start           time.Time
	DurationMinutes int
	SessionType     string
	SessionNotes    string
}

type Quote struct {
	IsFirstConsult bool `json:"isFirstConsult"`
	Price          int  `json:"price"`
}

// Book runs the client-initiated booking pipeline: validate, lead time,
// posted-hours re-check, conflict scan, pricing, insert. Every step fails
// fast with its own error; nothing is written until all checks pass.
func (s *Service) Book(ctx context.Context, req BookRequest) (models.Appointment, error) {
	if req.ProfessionalID == "" || req.ClientID == "" || req.Start.IsZero() {
		return models.Appointment{}, ErrValidation
	}
	if !schedule.HourAligned(req.Start, s.location) {
		return models.Appointment{}, ErrValidation
	}
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = models.SessionTypeConsultation
	}

	professional, err := s.professional(ctx, req.ProfessionalID)
	if err != nil {
		return models.Appointment{}, err
	}
	if _, err := s.client(ctx, req.ClientID); err != nil {
		return models.Appointment{}, err
	}

	now := s.now()
	if !req.Start.After(now.Add(s.leadTime)) {
		return models.Appointment{}, ErrTooSoon
	}

	// Posted hours are re-derived here regardless of what the widget
	// already filtered; client-side slot state can be stale.
	window, err := s.windows.WindowFor(ctx, req.ProfessionalID, req.Start.In(s.location).Weekday())
	if err != nil {
		return models.Appointment{}, err
	}
	if window == nil || !schedule.WithinWindow(req.Start, *window, s.location) {
		return models.Appointment{}, ErrOutsideAvailability
	}

	end := req.Start.Add(schedule.SessionMinutes * time.Minute)
	return s.insertChecked(ctx, professional, req.ClientID, req.Start, end, schedule.SessionMinutes, sessionType, "", models.BookedByClient)
}

// ScheduleByProfessional is the professional/health-coach initiated path.
// It deliberately skips the posted-hours check: a professional scheduling a
// session outside their own published windows is allowed. Lead-time and
// conflict rules still apply.
func (s *Service) ScheduleByProfessional(ctx context.Context, req ScheduleRequest) (models.Appointment, error) {
	if req.ProfessionalID == "" || req.ClientID == "" || req.Start.IsZero() {
		return models.Appointment{}, ErrValidation
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes%15 != 0 || req.DurationMinutes > 240 {
		return models.Appointment{}, ErrValidation
	}
	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = models.SessionTypeFollowUp
	}

	professional, err := s.professional(ctx, req.ProfessionalID)
	if err != nil {
		return models.Appointment{}, err
	}
	if _, err := s.client(ctx, req.ClientID); err != nil {
		return models.Appointment{}, err
	}

	now := s.now()
	if !req.Start.After(now.Add(s.leadTime)) {
		return models.Appointment{}, ErrTooSoon
	}

	end := req.Start.Add(time.Duration(req.DurationMinutes) * time.Minute)
	return s.insertChecked(ctx, professional, req.ClientID, req.Start, end, req.DurationMinutes, sessionType, req.SessionNotes, models.BookedByProfessional)
}

// insertChecked holds the per-professional lock across the overlap read,
// the pair count, and the insert, so the pricing and conflict decisions are
// made against the same state that gets written.
func (s *Service) insertChecked(ctx context.Context, professional models.Profile, clientID string, start, end time.Time, durationMinutes int, sessionType, notes, bookedBy string) (models.Appointment, error) {
	unlock := s.locks.acquire(professional.ID)
	defer unlock()

	overlapping, err := s.repo.ConfirmedOverlapping(ctx, professional.ID, start, end)
	if err != nil {
		return models.Appointment{}, err
	}
	if len(overlapping) > 0 {
		return models.Appointment{}, ErrConflict
	}

	quote, err := s.quoteLocked(ctx, professional, clientID)
	if err != nil {
		return models.Appointment{}, err
	}

	now := s.now().In(s.location)
	appointment := models.Appointment{
		ID:              primitive.NewObjectID().Hex(),
		ProfessionalID:  professional.ID,
		ClientID:        clientID,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: durationMinutes,
		Status:          models.AppointmentStatusConfirmed,
		Price:           quote.Price,
		IsFirstConsult:  quote.IsFirstConsult,
		SessionType:     sessionType,
		SessionNotes:    notes,
		BookedBy:        bookedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, appointment); err != nil {
		return models.Appointment{}, err
	}

	s.log.Info("booking: confirmed",
		slog.String("appointment_id", appointment.ID),
		slog.String("professional_id", appointment.ProfessionalID),
		slog.String("client_id", appointment.ClientID),
		slog.Time("start", appointment.StartTime),
		slog.Bool("first_consult", appointment.IsFirstConsult),
	)
	return appointment, nil
}

// Quote prices a prospective booking without writing anything.
func (s *Service) Quote(ctx context.Context, professionalID, clientID string) (Quote, error) {
	professional, err := s.professional(ctx, professionalID)
	if err != nil {
		return Quote{}, err
	}
	return s.quoteLocked(ctx, professional, clientID)
}

func (s *Service) quoteLocked(ctx context.Context, professional models.Profile, clientID string) (Quote, error) {
	count, err := s.repo.CountForPair(ctx, clientID, professional.ID)
	if err != nil {
		return Quote{}, err
	}
	if count == 0 {
		return Quote{IsFirstConsult: true, Price: 0}, nil
	}
	return Quote{IsFirstConsult: false, Price: professional.HourlyRate}, nil
}

// Cancel applies the only legal transition, confirmed to cancelled. The
// appointment's client, its professional, or a health coach may cancel.
func (s *Service) Cancel(ctx context.Context, id, actorID, actorRole string) (models.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Appointment{}, err
	}

	allowed := actorRole == models.RoleHealthCoach ||
		actorID == appointment.ClientID ||
		actorID == appointment.ProfessionalID
	if !allowed {
		return models.Appointment{}, ErrNotAllowed
	}

	if appointment.Status != models.AppointmentStatusConfirmed {
		return models.Appointment{}, ErrAlreadyCancelled
	}

	updated, err := s.repo.UpdateStatus(ctx, id, models.AppointmentStatusCancelled, s.now().In(s.location))
	if err != nil {
		return models.Appointment{}, err
	}

	s.log.Info("booking: cancelled",
		slog.String("appointment_id", updated.ID),
		slog.String("actor_id", actorID),
	)
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// SlotsForDate computes the bookable slot starts for a professional on a
// civil date, always recomputed from live state.
func (s *Service) SlotsForDate(ctx context.Context, professionalID string, date time.Time) ([]time.Time, error) {
	window, busy, err := s.daySchedule(ctx, professionalID, date)
	if err != nil {
		return nil, err
	}
	return schedule.BookableSlots(date, window, busy, s.now(), s.leadTime, s.location), nil
}

// DaySchedule exposes the raw inputs of the slot computation (window plus
// confirmed busy spans) for clients that mirror the filtering locally.
func (s *Service) DaySchedule(ctx context.Context, professionalID string, date time.Time) (*schedule.Window, []schedule.Span, error) {
	return s.daySchedule(ctx, professionalID, date)
}

func (s *Service) daySchedule(ctx context.Context, professionalID string, date time.Time) (*schedule.Window, []schedule.Span, error) {
	if _, err := s.professional(ctx, professionalID); err != nil {
		return nil, nil, err
	}

	window, err := s.windows.WindowFor(ctx, professionalID, date.In(s.location).Weekday())
	if err != nil {
		return nil, nil, err
	}

	dayStart := schedule.SlotAt(date, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)
	appointments, err := s.repo.ConfirmedOverlapping(ctx, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, nil, err
	}

	busy := make([]schedule.Span, 0, len(appointments))
	for _, a := range appointments {
		busy = append(busy, schedule.Span{Start: a.StartTime, End: a.EndTime})
	}
	return window, busy, nil
}

func (s *Service) ListForActor(ctx context.Context, actorID, actorRole string, limit, offset int64) ([]AppointmentView, error) {
	field := "clientId"
	if actorRole == models.RoleProfessional {
		field = "professionalId"
	}
	return s.repo.ListForProfile(ctx, field, actorID, limit, offset)
}

func (s *Service) professional(ctx context.Context, id string) (models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	if profile.Role != models.RoleProfessional {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (s *Service) client(ctx context.Context, id string) (models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	if profile.Role != models.RoleClient {
		return models.Profile{}, ErrProfileNotFound
	}
	return profile, nil
}
