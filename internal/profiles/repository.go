package profiles

import (
	"context"

	"mynutrify-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, profile models.Profile) error
	GetByID(ctx context.Context, id string) (models.Profile, error)
	GetByEmail(ctx context.Context, email string) (models.Profile, error)
	ListByRole(ctx context.Context, role string, limit, offset int64) ([]models.Profile, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, profile models.Profile) error {
	_, err := r.col.InsertOne(ctx, profile)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (models.Profile, error) {
	var profile models.Profile
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (models.Profile, error) {
	var profile models.Profile
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (r *MongoRepository) ListByRole(ctx context.Context, role string, limit, offset int64) ([]models.Profile, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "fullName", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, bson.M{"role": role}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.Profile, 0)
	for cursor.Next(ctx) {
		var profile models.Profile
		if err := cursor.Decode(&profile); err != nil {
			return nil, err
		}
		items = append(items, profile)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *MongoRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"role": role})
}
