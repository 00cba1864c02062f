package booking

import (
	"context"
	"time"

	"mynutrify-backend/internal/models"
	"mynutrify-backend/internal/profiles"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AppointmentView is an appointment joined with the other party's profile,
// the shape the "my appointments" listings return.
type AppointmentView struct {
	models.Appointment
	Counterpart *models.Profile `json:"counterpart,omitempty"`
}

type Repository interface {
	Insert(ctx context.Context, appointment models.Appointment) error
	GetByID(ctx context.Context, id string) (models.Appointment, error)
	ConfirmedOverlapping(ctx context.Context, professionalID string, start, end time.Time) ([]models.Appointment, error)
	CountForPair(ctx context.Context, clientID, professionalID string) (int64, error)
	UpdateStatus(ctx context.Context, id, status string, now time.Time) (models.Appointment, error)
	SetMeetingLink(ctx context.Context, id, link string, now time.Time) error
	ListForProfile(ctx context.Context, field, profileID string, limit, offset int64) ([]AppointmentView, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// Insert writes the appointment row. A duplicate-key error from the unique
// partial index on (professionalId, startTime) means another confirmed row
// won the slot first; it is translated to ErrConflict so race losers look
// exactly like pre-check conflicts.
func (r *MongoRepository) Insert(ctx context.Context, appointment models.Appointment) error {
	_, err := r.col.InsertOne(ctx, appointment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (models.Appointment, error) {
	var appointment models.Appointment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&appointment); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, err
	}
	return appointment, nil
}

// ConfirmedOverlapping finds confirmed appointments whose [startTime,
// endTime) intersects [start, end), half-open on both sides.
func (r *MongoRepository) ConfirmedOverlapping(ctx context.Context, professionalID string, start, end time.Time) ([]models.Appointment, error) {
	filter := bson.M{
		"professionalId": professionalID,
		"status":         models.AppointmentStatusConfirmed,
		"startTime":      bson.M{"$lt": end},
		"endTime":        bson.M{"$gt": start},
	}
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Appointment, 0)
	for cursor.Next(ctx) {
		var appointment models.Appointment
		if err := cursor.Decode(&appointment); err != nil {
			return nil, err
		}
		items = append(items, appointment)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// CountForPair counts every appointment ever created between the client and
// the professional, cancelled ones included: a cancelled first consult
// still consumed the free session.
func (r *MongoRepository) CountForPair(ctx context.Context, clientID, professionalID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"clientId":       clientID,
		"professionalId": professionalID,
	})
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id, status string, now time.Time) (models.Appointment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": now,
		},
	}
	var appointment models.Appointment
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&appointment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, err
	}
	return appointment, nil
}

// SetMeetingLink is the meeting attacher's only write path; nothing else on
// the row may change here.
func (r *MongoRepository) SetMeetingLink(ctx context.Context, id, link string, now time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"meetingLink": link,
			"updatedAt":   now,
		},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForProfile pages a profile's appointments newest first and joins the
// other party's profile so listings can show a name without a second query.
func (r *MongoRepository) ListForProfile(ctx context.Context, field, profileID string, limit, offset int64) ([]AppointmentView, error) {
	counterpartField := "professionalId"
	if field == "professionalId" {
		counterpartField = "clientId"
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: profileID}}},
		{{Key: "$sort", Value: bson.D{{Key: "startTime", Value: -1}}}},
		{{Key: "$skip", Value: offset}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "profiles",
			"localField":   counterpartField,
			"foreignField": "_id",
			"as":           "counterpart",
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]AppointmentView, 0)
	for cursor.Next(ctx) {
		var doc struct {
			models.Appointment `bson:",inline"`
			Counterpart        bson.RawValue `bson:"counterpart"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, AppointmentView{
			Appointment: doc.Appointment,
			Counterpart: profiles.FromJoinValue(doc.Counterpart),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
