package main

import (
	"context"
	"log"
	"os"
	"time"

	"mynutrify-backend/internal/auth"
	"mynutrify-backend/internal/config"
	"mynutrify-backend/internal/db"
	"mynutrify-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedProfessional struct {
	FullName          string
	Email             string
	Specialty         string
	Bio               string
	HourlyRate        int
	CalendarDelegated bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	professionals := []seedProfessional{
		{FullName: "Asha Nair", Email: "asha@mynutrify.example", Specialty: "Clinical nutrition", Bio: "Dietitian focused on metabolic health and sustainable weight management.", HourlyRate: 1500, CalendarDelegated: true},
		{FullName: "Vikram Rao", Email: "vikram@mynutrify.example", Specialty: "Strength and conditioning", Bio: "Coach for strength training, mobility and injury-safe progressions.", HourlyRate: 2000, CalendarDelegated: true},
		{FullName: "Divya Menon", Email: "divya@mynutrify.example", Specialty: "Sports nutrition", Bio: "Works with endurance athletes on fueling and recovery.", HourlyRate: 1800, CalendarDelegated: false},
		{FullName: "Arjun Kulkarni", Email: "arjun@mynutrify.example", Specialty: "Yoga and mindfulness", Bio: "Vinyasa and breathwork sessions for stress management.", HourlyRate: 1200, CalendarDelegated: false},
	}

	seededIDs := make([]string, 0, len(professionals))
	for _, p := range professionals {
		id, err := seedProfile(ctx, cols, models.Profile{
			Role:              models.RoleProfessional,
			FullName:          p.FullName,
			Email:             p.Email,
			Specialty:         p.Specialty,
			Bio:               p.Bio,
			HourlyRate:        p.HourlyRate,
			CalendarDelegated: p.CalendarDelegated,
		}, envOrDefault("SEED_PROFESSIONAL_PASSWORD", "changeme123"), cfg.Timezone)
		if err != nil {
			log.Fatalf("seed professional %s: %v", p.Email, err)
		}
		seededIDs = append(seededIDs, id)
	}

	// Every seeded professional gets Monday through Friday, 9 to 17.
	for _, id := range seededIDs {
		if err := seedWeekdayWindows(ctx, cols, id, 9, 17, cfg.Timezone); err != nil {
			log.Fatalf("seed availability for %s: %v", id, err)
		}
	}

	if password := os.Getenv("SEED_COACH_PASSWORD"); password != "" {
		if _, err := seedProfile(ctx, cols, models.Profile{
			Role:     models.RoleHealthCoach,
			FullName: "Care Team",
			Email:    envOrDefault("SEED_COACH_EMAIL", "care@mynutrify.example"),
		}, password, cfg.Timezone); err != nil {
			log.Fatalf("seed health coach: %v", err)
		}
	} else {
		log.Println("seed health coach: SEED_COACH_PASSWORD missing, skipping")
	}

	if password := os.Getenv("SEED_CLIENT_PASSWORD"); password != "" {
		if _, err := seedProfile(ctx, cols, models.Profile{
			Role:     models.RoleClient,
			FullName: "Rohan Mehta",
			Email:    envOrDefault("SEED_CLIENT_EMAIL", "rohan@example.com"),
		}, password, cfg.Timezone); err != nil {
			log.Fatalf("seed client: %v", err)
		}
	}

	log.Println("seed completed")
}

// seedProfile upserts by email so reruns refresh rates and bios without
// duplicating accounts, and returns the profile id.
func seedProfile(ctx context.Context, cols *db.Collections, profile models.Profile, password string, loc *time.Location) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	now := time.Now().In(loc)
	filter := bson.M{"email": profile.Email}
	update := bson.M{
		"$set": bson.M{
			"role":              profile.Role,
			"fullName":          profile.FullName,
			"specialty":         profile.Specialty,
			"bio":               profile.Bio,
			"hourlyRate":        profile.HourlyRate,
			"calendarDelegated": profile.CalendarDelegated,
			"passwordHash":      hash,
			"updatedAt":         now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"email":     profile.Email,
			"createdAt": now,
		},
	}

	if _, err := cols.Profiles.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return "", err
	}

	var saved models.Profile
	if err := cols.Profiles.FindOne(ctx, filter).Decode(&saved); err != nil {
		return "", err
	}
	return saved.ID, nil
}

func seedWeekdayWindows(ctx context.Context, cols *db.Collections, professionalID string, startHour, endHour int, loc *time.Location) error {
	if _, err := cols.Availability.DeleteMany(ctx, bson.M{"professionalId": professionalID}); err != nil {
		return err
	}

	now := time.Now().In(loc)
	docs := make([]interface{}, 0, 5)
	for day := int(time.Monday); day <= int(time.Friday); day++ {
		docs = append(docs, models.AvailabilityWindow{
			ID:             primitive.NewObjectID().Hex(),
			ProfessionalID: professionalID,
			DayOfWeek:      day,
			StartHour:      startHour,
			EndHour:        endHour,
			CreatedAt:      now,
		})
	}

	_, err := cols.Availability.InsertMany(ctx, docs)
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
