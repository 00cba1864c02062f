package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                string
	MongoURI           string
	MongoDB            string
	ServerAddr         string
	FrontendOrigin     string
	RateLimitBookings  int
	RateLimitLeads     int
	RateLimitWindowSec int
	RedisURL           string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	CacheTTLSeconds    int
	JWTSecret          string
	AccessTTLMinutes   int
	RefreshTTLMinutes  int
	CookieSecure       bool

	// Timezone is the single civil timezone of record for all scheduling
	// math. It is a deployment constant, never derived from a request
	// locale or a profile's display timezone.
	Timezone *time.Location

	LeadTimeMinutes    int
	SessionMinutes     int
	MeetEndpoint       string
	MeetAPIKey         string
	MeetPollAttempts   int
	MeetPollIntervalMS int
}

func (c *Config) LeadTime() time.Duration {
	return time.Duration(c.LeadTimeMinutes) * time.Minute
}

func (c *Config) MeetPollInterval() time.Duration {
	return time.Duration(c.MeetPollIntervalMS) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("SCHEDULE_TZ", "Asia/Kolkata"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/mynutrify")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "mynutrify"
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		MongoURI:           mongoURI,
		MongoDB:            mongoDB,
		ServerAddr:         getEnv("SERVER_ADDR", ":8080"),
		FrontendOrigin:     getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		RateLimitBookings:  getEnvInt("RATE_LIMIT_BOOKINGS", 10),
		RateLimitLeads:     getEnvInt("RATE_LIMIT_LEADS", 5),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 60),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:   getEnvInt("ACCESS_TTL_MINUTES", 15),
		RefreshTTLMinutes:  getEnvInt("REFRESH_TTL_MINUTES", 43200),
		CookieSecure:       getEnv("COOKIE_SECURE", "false") == "true",
		Timezone:           loc,
		LeadTimeMinutes:    getEnvInt("BOOKING_LEAD_MINUTES", 60),
		SessionMinutes:     getEnvInt("SESSION_MINUTES", 60),
		MeetEndpoint:       getEnv("MEET_ENDPOINT", ""),
		MeetAPIKey:         getEnv("MEET_API_KEY", ""),
		MeetPollAttempts:   getEnvInt("MEET_POLL_ATTEMPTS", 5),
		MeetPollIntervalMS: getEnvInt("MEET_POLL_INTERVAL_MS", 1500),
	}

	return cfg, nil
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
