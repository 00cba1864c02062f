package leads

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, lead Lead) error
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Lead, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	GetByID(ctx context.Context, id string) (Lead, error)
	Assign(ctx context.Context, id, professionalID string, now time.Time) (Lead, error)
	Close(ctx context.Context, id string, now time.Time) (Lead, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, lead Lead) error {
	_, err := r.col.InsertOne(ctx, lead)
	return err
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Lead, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Lead, 0)
	for cursor.Next(ctx) {
		var lead Lead
		if err := cursor.Decode(&lead); err != nil {
			return nil, err
		}
		items = append(items, lead)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, filter.toBSON())
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Lead, error) {
	var lead Lead
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&lead); err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// Assign marks the lead assigned and records the professional in one write.
func (r *MongoRepository) Assign(ctx context.Context, id, professionalID string, now time.Time) (Lead, error) {
	return r.findAndSet(ctx, id, bson.M{
		"status":                 StatusAssigned,
		"assignedProfessionalId": professionalID,
		"updatedAt":              now,
	})
}

func (r *MongoRepository) Close(ctx context.Context, id string, now time.Time) (Lead, error) {
	return r.findAndSet(ctx, id, bson.M{
		"status":    StatusClosed,
		"updatedAt": now,
	})
}

func (r *MongoRepository) findAndSet(ctx context.Context, id string, set bson.M) (Lead, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Lead
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Lead{}, err
	}
	return updated, nil
}

func (f ListFilter) toBSON() bson.M {
	query := bson.M{}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.Source != "" {
		query["source"] = f.Source
	}
	if f.AssignedProfessionalID != "" {
		query["assignedProfessionalId"] = f.AssignedProfessionalID
	}
	return query
}
