package profiles

import (
	"mynutrify-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// FromJoinValue normalizes a related-profile value from a lookup/join
// result. Depending on how the query layer shaped the join, the value may
// be a single document, an array of documents, or null; callers always get
// either one decoded profile or nil, never a raw union of shapes.
func FromJoinValue(raw bson.RawValue) *models.Profile {
	switch raw.Type {
	case bsontype.EmbeddedDocument:
		var profile models.Profile
		if err := raw.Unmarshal(&profile); err != nil {
			return nil
		}
		return &profile
	case bsontype.Array:
		var docs []models.Profile
		if err := raw.Unmarshal(&docs); err != nil || len(docs) == 0 {
			return nil
		}
		return &docs[0]
	default:
		return nil
	}
}
