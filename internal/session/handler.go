package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mynutrify-backend/internal/auth"
	"mynutrify-backend/internal/httpx"
	"mynutrify-backend/internal/middleware"
	"mynutrify-backend/internal/models"
	"mynutrify-backend/internal/profiles"
	"mynutrify-backend/internal/transport"
	"mynutrify-backend/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const refreshCookieName = "nutrify_refresh"

type Handler struct {
	manager      *auth.Manager
	repo         profiles.Repository
	val          *validation.Validator
	cookieSecure bool
	location     *time.Location
	log          *slog.Logger
}

func NewHandler(manager *auth.Manager, repo profiles.Repository, val *validation.Validator, cookieSecure bool, location *time.Location, log *slog.Logger) *Handler {
	return &Handler{
		manager:      manager,
		repo:         repo,
		val:          val,
		cookieSecure: cookieSecure,
		location:     location,
		log:          log,
	}
}

type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SessionResponse struct {
	Status  string         `json:"status"`
	Profile models.Profile `json:"profile,omitempty"`
}

// Register creates a client account. Professionals and health coaches are
// provisioned out of band, never through this endpoint.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req RegisterRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("register: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("register: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error("register: hash error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "internal error", nil)
		return
	}

	now := time.Now().In(h.location)
	profile := models.Profile{
		ID:           primitive.NewObjectID().Hex(),
		Role:         models.RoleClient,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.repo.Create(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn("register: email taken", slog.String("email", profile.Email))
			transport.WriteError(w, http.StatusConflict, "email already registered", nil)
			return
		}
		log.Error("register: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if err := h.issueSession(w, profile.ID, profile.Role); err != nil {
		log.Error("register: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}

	log.Info("register: ok", slog.String("profile_id", profile.ID))
	transport.WriteJSON(w, http.StatusCreated, SessionResponse{Status: "ok", Profile: profile})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	profile, err := h.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Warn("login: unknown email", slog.String("email", email))
			transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		log.Error("login: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	if err := auth.ComparePassword(profile.PasswordHash, req.Password); err != nil {
		log.Warn("login: invalid credentials", slog.String("email", email))
		transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	if err := h.issueSession(w, profile.ID, profile.Role); err != nil {
		log.Error("login: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}

	log.Info("login: ok", slog.String("profile_id", profile.ID), slog.String("role", profile.Role))
	transport.WriteJSON(w, http.StatusOK, SessionResponse{Status: "ok", Profile: profile})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	refreshCookie, err := r.Cookie(refreshCookieName)
	if err != nil || refreshCookie.Value == "" {
		log.Warn("refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	claims, err := h.manager.Parse(refreshCookie.Value)
	if err != nil {
		log.Warn("refresh: invalid refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	if err := h.issueSession(w, claims.ProfileID(), claims.Role); err != nil {
		log.Error("refresh: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}

	log.Info("refresh: ok", slog.String("profile_id", claims.ProfileID()))
	transport.WriteJSON(w, http.StatusOK, SessionResponse{Status: "ok"})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	clearAuthCookies(w, h.cookieSecure)
	log.Info("logout: ok")
	transport.WriteJSON(w, http.StatusOK, SessionResponse{Status: "ok"})
}

// Me returns the authenticated caller's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	claims := middleware.SessionFromContext(r.Context())
	if claims == nil {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.repo.GetByID(ctx, claims.ProfileID())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		log.Error("me: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) issueSession(w http.ResponseWriter, profileID, role string) error {
	accessToken, err := h.manager.NewAccessToken(profileID, role)
	if err != nil {
		return err
	}
	refreshToken, err := h.manager.NewRefreshToken(profileID, role)
	if err != nil {
		return err
	}
	setAuthCookies(w, accessToken, refreshToken, h.manager.AccessTTL, h.manager.RefreshTTL, h.cookieSecure)
	return nil
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

func setAuthCookies(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration, secure bool) {
	accessCookie := &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    access,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(accessTTL.Seconds()),
	}
	refreshCookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    refresh,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(refreshTTL.Seconds()),
	}
	http.SetCookie(w, accessCookie)
	http.SetCookie(w, refreshCookie)
}

func clearAuthCookies(w http.ResponseWriter, secure bool) {
	expire := time.Now().Add(-1 * time.Hour)
	accessCookie := &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expire,
		MaxAge:   -1,
	}
	refreshCookie := &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expire,
		MaxAge:   -1,
	}
	http.SetCookie(w, accessCookie)
	http.SetCookie(w, refreshCookie)
}
