package availability

import (
	"context"

	"mynutrify-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Replace(ctx context.Context, professionalID string, windows []models.AvailabilityWindow) error
	ListForProfessional(ctx context.Context, professionalID string) ([]models.AvailabilityWindow, error)
	WindowFor(ctx context.Context, professionalID string, dayOfWeek int) (*models.AvailabilityWindow, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// Replace swaps the professional's whole weekly schedule: delete everything,
// reinsert the new windows. There is no partial update path, which keeps
// saves idempotent.
func (r *MongoRepository) Replace(ctx context.Context, professionalID string, windows []models.AvailabilityWindow) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"professionalId": professionalID}); err != nil {
		return err
	}
	if len(windows) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(windows))
	for _, w := range windows {
		docs = append(docs, w)
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

func (r *MongoRepository) ListForProfessional(ctx context.Context, professionalID string) ([]models.AvailabilityWindow, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dayOfWeek", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"professionalId": professionalID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]models.AvailabilityWindow, 0)
	for cursor.Next(ctx) {
		var w models.AvailabilityWindow
		if err := cursor.Decode(&w); err != nil {
			return nil, err
		}
		items = append(items, w)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *MongoRepository) WindowFor(ctx context.Context, professionalID string, dayOfWeek int) (*models.AvailabilityWindow, error) {
	var w models.AvailabilityWindow
	err := r.col.FindOne(ctx, bson.M{"professionalId": professionalID, "dayOfWeek": dayOfWeek}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}
