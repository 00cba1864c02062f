package availability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mynutrify-backend/internal/cache"
	"mynutrify-backend/internal/httpx"
	"mynutrify-backend/internal/middleware"
	"mynutrify-backend/internal/models"
	"mynutrify-backend/internal/transport"
	"mynutrify-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	cache   cache.Cache
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, cacheStore cache.Cache, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		cache:   cacheStore,
		log:     log,
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

type replaceRequest struct {
	Windows []WindowInput `json:"windows" validate:"required,dive"`
}

func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	professionalID := chi.URLParam(r, "id")
	if professionalID == "" {
		log.Warn("availability replace: missing professional id")
		transport.WriteError(w, http.StatusBadRequest, "missing professional id", nil)
		return
	}

	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	// Professionals manage only their own hours; a health coach may edit
	// anyone's.
	if claims.Role == models.RoleProfessional && claims.ProfileID() != professionalID {
		log.Warn("availability replace: not owner", slog.String("professional_id", professionalID))
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		return
	}

	var req replaceRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("availability replace: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("availability replace: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	windows, err := h.service.Replace(ctx, professionalID, req.Windows)
	if err != nil {
		if errors.Is(err, ErrInvalidWindow) {
			transport.WriteError(w, http.StatusBadRequest, "invalid availability window", nil)
			return
		}
		if errors.Is(err, ErrDuplicateDay) {
			transport.WriteError(w, http.StatusBadRequest, "duplicate day of week", nil)
			return
		}
		log.Error("availability replace: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if h.cache != nil {
		_ = h.cache.DeletePrefix(r.Context(), "slots:"+professionalID+":")
	}

	log.Info("availability replace: ok",
		slog.String("professional_id", professionalID),
		slog.Int("windows", len(windows)),
	)
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"professionalId": professionalID,
		"windows":        windows,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	professionalID := chi.URLParam(r, "id")
	if professionalID == "" {
		log.Warn("availability list: missing professional id")
		transport.WriteError(w, http.StatusBadRequest, "missing professional id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	windows, err := h.service.Windows(ctx, professionalID)
	if err != nil {
		log.Error("availability list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("availability list: ok", slog.String("professional_id", professionalID), slog.Int("windows", len(windows)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"professionalId": professionalID,
		"windows":        windows,
	})
}
