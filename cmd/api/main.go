package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mynutrify-backend/internal/auth"
	"mynutrify-backend/internal/availability"
	"mynutrify-backend/internal/booking"
	"mynutrify-backend/internal/cache"
	"mynutrify-backend/internal/config"
	"mynutrify-backend/internal/db"
	"mynutrify-backend/internal/leads"
	"mynutrify-backend/internal/meeting"
	"mynutrify-backend/internal/middleware"
	"mynutrify-backend/internal/models"
	"mynutrify-backend/internal/profiles"
	"mynutrify-backend/internal/session"
	"mynutrify-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "mynutrify-backend",
		}
	} else {
		logger.Warn("JWT_SECRET not set, authenticated routes disabled")
	}

	val := validation.New()
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	profilesRepo := profiles.NewRepository(cols.Profiles)
	profilesService := profiles.NewService(profilesRepo)
	profilesHandler := profiles.NewHandler(profilesService, logger)

	availabilityRepo := availability.NewRepository(cols.Availability)
	availabilityService := availability.NewService(availabilityRepo, cfg.Timezone)
	availabilityHandler := availability.NewHandler(availabilityService, val, cacheStore, logger)

	meetClient := meeting.NewClient(cfg.MeetEndpoint, cfg.MeetAPIKey)
	if meetClient == nil {
		logger.Info("meeting provider disabled")
	} else {
		logger.Info("meeting provider enabled")
	}

	bookingRepo := booking.NewRepository(cols.Appointments)
	attacher := meeting.NewAttacher(meetClient, bookingRepo, profilesRepo, meeting.RetryPolicy{
		MaxAttempts: cfg.MeetPollAttempts,
		Interval:    cfg.MeetPollInterval(),
	}, cfg.Timezone, logger)

	bookingService := booking.NewService(bookingRepo, profilesRepo, availabilityService, cfg.Timezone, cfg.LeadTime(), logger)
	bookingHandler := booking.NewHandler(bookingService, val, cacheStore, cacheTTL, attacher, cfg.Timezone, cfg.LeadTime(), logger)

	leadsRepo := leads.NewRepository(cols.Leads)
	leadsService := leads.NewService(leadsRepo, profilesRepo, cfg.Timezone)
	leadsHandler := leads.NewHandler(leadsService, val, logger)

	sessionHandler := session.NewHandler(jwtManager, profilesRepo, val, cfg.CookieSecure, cfg.Timezone, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	bookingLimiter := middleware.NewRateLimiter(cfg.RateLimitBookings, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	leadsLimiter := middleware.NewRateLimiter(cfg.RateLimitLeads, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Post("/register", sessionHandler.Register)
			a.Post("/login", sessionHandler.Login)
			a.Post("/refresh", sessionHandler.Refresh)
			a.Post("/logout", sessionHandler.Logout)
			a.With(middleware.Session(jwtManager)).Get("/me", sessionHandler.Me)
		})

		// Public catalog and slot discovery; the widget consumes these.
		api.Get("/professionals", profilesHandler.List)
		api.Get("/professionals/{id}", profilesHandler.Get)
		api.Get("/professionals/{id}/slots", bookingHandler.Slots)
		api.Get("/professionals/{id}/schedule", bookingHandler.DaySchedule)
		api.Get("/professionals/{id}/availability", availabilityHandler.List)

		api.With(leadsLimiter.Middleware).Post("/leads", leadsHandler.Create)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Session(jwtManager))

			protected.With(
				middleware.RequireRole(models.RoleProfessional, models.RoleHealthCoach),
			).Put("/professionals/{id}/availability", availabilityHandler.Replace)

			protected.Route("/appointments", func(appts chi.Router) {
				appts.With(
					middleware.RequireRole(models.RoleClient),
					bookingLimiter.Middleware,
				).Post("/", bookingHandler.Create)
				appts.With(
					middleware.RequireRole(models.RoleProfessional, models.RoleHealthCoach),
				).Post("/professional", bookingHandler.CreateByProfessional)
				appts.Get("/quote", bookingHandler.Quote)
				appts.Get("/", bookingHandler.List)
				appts.Get("/{id}", bookingHandler.Get)
				appts.Patch("/{id}/cancel", bookingHandler.Cancel)
			})

			protected.Route("/leads", func(l chi.Router) {
				l.Use(middleware.RequireRole(models.RoleHealthCoach))
				l.Get("/", leadsHandler.List)
				l.Get("/{id}", leadsHandler.Get)
				l.Post("/{id}/assign", leadsHandler.Assign)
				l.Post("/{id}/close", leadsHandler.Close)
			})
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
