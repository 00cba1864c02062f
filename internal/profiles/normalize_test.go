package profiles

import (
	"testing"

	"mynutrify-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
)

func rawValue(t *testing.T, doc interface{}) bson.RawValue {
	t.Helper()
	wrapped, err := bson.Marshal(bson.M{"v": doc})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bson.Raw(wrapped).Lookup("v")
}

func TestFromJoinValueShapes(t *testing.T) {
	profile := models.Profile{ID: "pro-1", Role: models.RoleProfessional, FullName: "Asha Nair"}

	if got := FromJoinValue(rawValue(t, profile)); got == nil || got.ID != "pro-1" {
		t.Errorf("document shape: got %+v", got)
	}

	if got := FromJoinValue(rawValue(t, []models.Profile{profile, {ID: "pro-2"}})); got == nil || got.ID != "pro-1" {
		t.Errorf("array shape: got %+v", got)
	}

	if got := FromJoinValue(rawValue(t, []models.Profile{})); got != nil {
		t.Errorf("empty array: got %+v", got)
	}

	if got := FromJoinValue(rawValue(t, nil)); got != nil {
		t.Errorf("null: got %+v", got)
	}
}
