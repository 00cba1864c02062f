package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Profiles     *mongo.Collection
	Availability *mongo.Collection
	Appointments *mongo.Collection
	Leads        *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Profiles:     db.Collection("profiles"),
		Availability: db.Collection("availability"),
		Appointments: db.Collection("appointments"),
		Leads:        db.Collection("leads"),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := cols.Profiles.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.Availability.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "dayOfWeek", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	// The unique partial index is the final authority against double
	// booking: the orchestrator's overlap pre-check is advisory, and race
	// losers surface here as duplicate-key errors. Cancelled rows are
	// excluded so a freed slot can be rebooked.
	_, err = cols.Appointments.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "professionalId", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "confirmed"}),
		},
		{
			Keys: bson.D{{Key: "professionalId", Value: 1}, {Key: "startTime", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "professionalId", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.Leads.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return err
	}

	return nil
}
