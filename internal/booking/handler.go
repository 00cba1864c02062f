package booking

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mynutrify-backend/internal/cache"
	"mynutrify-backend/internal/httpx"
	"mynutrify-backend/internal/middleware"
	"mynutrify-backend/internal/models"
	"mynutrify-backend/internal/schedule"
	"mynutrify-backend/internal/transport"
	"mynutrify-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

// LinkAttacher runs the best-effort meeting-link step after a booking is
// already durable. It returns whatever ended up in the link field; the
// handler never lets it affect the booking response.
type LinkAttacher interface {
	Attach(ctx context.Context, appointment models.Appointment) string
}

type Handler struct {
	service  *Service
	val      *validation.Validator
	cache    cache.Cache
	cacheTTL time.Duration
	attacher LinkAttacher
	location *time.Location
	leadTime time.Duration
	log      *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, cacheStore cache.Cache, cacheTTL time.Duration, attacher LinkAttacher, location *time.Location, leadTime time.Duration, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		val:      val,
		cache:    cacheStore,
		cacheTTL: cacheTTL,
		attacher: attacher,
		location: location,
		leadTime: leadTime,
		log:      log,
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

type createRequest struct {
	ProfessionalID string `json:"professionalId" validate:"required"`
	StartTime      string `json:"startTime" validate:"omitempty"`
	Date           string `json:"date" validate:"omitempty,date"`
	Time           string `json:"time" validate:"omitempty,clock"`
	SessionType    string `json:"sessionType" validate:"omitempty,oneof=consultation followup training"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("booking create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("booking create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	start, err := h.parseStart(req)
	if err != nil {
		log.Warn("booking create: invalid start time")
		transport.WriteError(w, http.StatusBadRequest, "invalid start time", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	appointment, err := h.service.Book(ctx, BookRequest{
		ProfessionalID: req.ProfessionalID,
		ClientID:       claims.ProfileID(),
		Start:          start,
		SessionType:    req.SessionType,
	})
	if err != nil {
		h.writeBookingError(log, w, "booking create", err)
		return
	}

	h.invalidateSlots(r.Context(), appointment.ProfessionalID)
	h.attachMeetingLink(log, appointment)

	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success":        true,
		"appointment":    appointment,
		"isFirstConsult": appointment.IsFirstConsult,
	})
}

type professionalScheduleRequest struct {
	ProfessionalID  string `json:"professionalId" validate:"omitempty"`
	ClientID        string `json:"clientId" validate:"required"`
	StartTime       string `json:"startTime" validate:"required,localdt"`
	DurationMinutes int    `json:"duration" validate:"required,minutes15,lte=240"`
	SessionType     string `json:"sessionType" validate:"omitempty,oneof=consultation followup training"`
	SessionNotes    string `json:"sessionNotes" validate:"omitempty,max=2000"`
}

func (h *Handler) CreateByProfessional(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req professionalScheduleRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("professional schedule: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("professional schedule: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	professionalID := req.ProfessionalID
	if claims.Role == models.RoleProfessional {
		// Professionals schedule on their own calendar only.
		professionalID = claims.ProfileID()
	}
	if professionalID == "" {
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"professionalId": "required"})
		return
	}

	// The payload carries a zone-less civil datetime; it is pinned to the
	// scheduling timezone, never to the caller's browser zone.
	start, err := schedule.ParseLocalDateTime(req.StartTime, h.location)
	if err != nil {
		log.Warn("professional schedule: invalid start time")
		transport.WriteError(w, http.StatusBadRequest, "invalid start time", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	appointment, err := h.service.ScheduleByProfessional(ctx, ScheduleRequest{
		ProfessionalID:  professionalID,
		ClientID:        req.ClientID,
		Start:           start,
		DurationMinutes: req.DurationMinutes,
		SessionType:     req.SessionType,
		SessionNotes:    req.SessionNotes,
	})
	if err != nil {
		h.writeBookingError(log, w, "professional schedule", err)
		return
	}

	h.invalidateSlots(r.Context(), appointment.ProfessionalID)
	h.attachMeetingLink(log, appointment)

	transport.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success":        true,
		"appointment":    appointment,
		"isFirstConsult": appointment.IsFirstConsult,
	})
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	professionalID := r.URL.Query().Get("professionalId")
	if professionalID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing professionalId", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	quote, err := h.service.Quote(ctx, professionalID, claims.ProfileID())
	if err != nil {
		h.writeBookingError(log, w, "booking quote", err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, quote)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	appointment, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeBookingError(log, w, "booking get", err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, appointment)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.ListForActor(ctx, claims.ProfileID(), claims.Role, limit, offset)
	if err != nil {
		log.Error("booking list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	appointment, err := h.service.Cancel(ctx, id, claims.ProfileID(), claims.Role)
	if err != nil {
		h.writeBookingError(log, w, "booking cancel", err)
		return
	}

	h.invalidateSlots(r.Context(), appointment.ProfessionalID)

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"appointment": appointment,
	})
}

type slotsQuery struct {
	Date string `validate:"required,date"`
}

func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	professionalID := chi.URLParam(r, "id")
	if professionalID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing professional id", nil)
		return
	}

	q := slotsQuery{Date: r.URL.Query().Get("date")}
	if err := h.val.Struct(q); err != nil {
		log.Warn("slots: invalid query")
		transport.WriteError(w, http.StatusBadRequest, "invalid query", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	date, err := schedule.ParseDate(q.Date, h.location)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		return
	}

	cacheKey := "slots:" + professionalID + ":" + q.Date
	if h.cache != nil {
		if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
			log.Info("slots: cache hit", slog.String("professional_id", professionalID), slog.String("date", q.Date))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slots, err := h.service.SlotsForDate(ctx, professionalID, date)
	if err != nil {
		h.writeBookingError(log, w, "slots", err)
		return
	}

	payload := map[string]interface{}{
		"professionalId": professionalID,
		"date":           q.Date,
		"timezone":       h.location.String(),
		"slotMinutes":    schedule.SessionMinutes,
		"slots":          slotViews(slots, h.location),
	}

	if h.cache != nil {
		if raw, err := json.Marshal(payload); err == nil {
			_ = h.cache.Set(r.Context(), cacheKey, raw, h.cacheTTL)
		}
	}

	log.Info("slots: ok",
		slog.String("professional_id", professionalID),
		slog.String("date", q.Date),
		slog.Int("slots", len(slots)),
	)
	transport.WriteJSON(w, http.StatusOK, payload)
}

// DaySchedule serves the raw slot-rule inputs so the booking widget can
// mirror the filtering client side; the numbers here must stay in lockstep
// with what SlotsForDate uses.
func (h *Handler) DaySchedule(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	professionalID := chi.URLParam(r, "id")
	if professionalID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing professional id", nil)
		return
	}

	q := slotsQuery{Date: r.URL.Query().Get("date")}
	if err := h.val.Struct(q); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid query", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	date, err := schedule.ParseDate(q.Date, h.location)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	window, busy, err := h.service.DaySchedule(ctx, professionalID, date)
	if err != nil {
		h.writeBookingError(log, w, "day schedule", err)
		return
	}

	busyViews := make([]map[string]string, 0, len(busy))
	for _, span := range busy {
		busyViews = append(busyViews, map[string]string{
			"start": span.Start.In(h.location).Format(time.RFC3339),
			"end":   span.End.In(h.location).Format(time.RFC3339),
		})
	}

	payload := map[string]interface{}{
		"professionalId": professionalID,
		"date":           q.Date,
		"timezone":       h.location.String(),
		"slotMinutes":    schedule.SessionMinutes,
		"leadMinutes":    int(h.leadTime.Minutes()),
		"busy":           busyViews,
	}
	if window != nil {
		payload["window"] = map[string]int{
			"dayOfWeek": window.DayOfWeek,
			"startHour": window.StartHour,
			"endHour":   window.EndHour,
		}
	} else {
		payload["window"] = nil
	}

	transport.WriteJSON(w, http.StatusOK, payload)
}

func (h *Handler) parseStart(req createRequest) (time.Time, error) {
	if req.StartTime != "" {
		return time.Parse(time.RFC3339, req.StartTime)
	}
	// Legacy widget shape: separate date and HH:MM slot strings, civil time
	// in the pinned zone.
	if req.Date == "" || req.Time == "" {
		return time.Time{}, ErrValidation
	}
	return schedule.ParseLocalDateTime(req.Date+"T"+req.Time, h.location)
}

func (h *Handler) invalidateSlots(ctx context.Context, professionalID string) {
	if h.cache == nil {
		return
	}
	_ = h.cache.DeletePrefix(ctx, "slots:"+professionalID+":")
}

// attachMeetingLink kicks off the advisory second phase. It runs detached
// from the request with its own deadline; the booking succeeded already and
// nothing that happens in here may change that.
func (h *Handler) attachMeetingLink(log *slog.Logger, appointment models.Appointment) {
	if h.attacher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		link := h.attacher.Attach(ctx, appointment)
		if link == "" {
			log.Info("booking: no meeting link attached", slog.String("appointment_id", appointment.ID))
			return
		}
		log.Info("booking: meeting link attached", slog.String("appointment_id", appointment.ID))
	}()
}

func (h *Handler) writeBookingError(log *slog.Logger, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		log.Warn(op + ": invalid request")
		transport.WriteError(w, http.StatusBadRequest, "invalid booking request", nil)
	case errors.Is(err, ErrTooSoon):
		log.Warn(op + ": lead time violated")
		transport.WriteError(w, http.StatusBadRequest, "appointments must be booked at least 1 hour in advance", nil)
	case errors.Is(err, ErrOutsideAvailability):
		log.Warn(op + ": outside availability")
		transport.WriteError(w, http.StatusBadRequest, "slot is outside the professional's availability", nil)
	case errors.Is(err, ErrConflict):
		log.Warn(op + ": slot conflict")
		transport.WriteError(w, http.StatusConflict, "this time slot has been booked by someone else", nil)
	case errors.Is(err, ErrProfileNotFound):
		log.Warn(op + ": profile not found")
		transport.WriteError(w, http.StatusNotFound, "profile not found", nil)
	case errors.Is(err, ErrNotFound):
		log.Warn(op + ": appointment not found")
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
	case errors.Is(err, ErrAlreadyCancelled):
		log.Warn(op + ": already cancelled")
		transport.WriteError(w, http.StatusConflict, "appointment already cancelled", nil)
	case errors.Is(err, ErrNotAllowed):
		log.Warn(op + ": not allowed")
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
	default:
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
	}
}

func slotViews(slots []time.Time, loc *time.Location) []map[string]string {
	views := make([]map[string]string, 0, len(slots))
	for _, s := range slots {
		views = append(views, map[string]string{
			"time":  s.In(loc).Format("15:04"),
			"start": s.In(loc).Format(time.RFC3339),
		})
	}
	return views
}
