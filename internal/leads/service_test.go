package leads

import (
	"context"
	"errors"
	"testing"
	"time"

	"mynutrify-backend/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepo struct {
	items map[string]Lead
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]Lead)}
}

func (f *fakeRepo) Create(ctx context.Context, lead Lead) error {
	f.items[lead.ID] = lead
	return nil
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Lead, error) {
	var out []Lead
	for _, l := range f.items {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.Source != "" && l.Source != filter.Source {
			continue
		}
		if filter.AssignedProfessionalID != "" && l.AssignedProfessionalID != filter.AssignedProfessionalID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	items, _ := f.List(ctx, filter, 0, 0)
	return int64(len(items)), nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (Lead, error) {
	l, ok := f.items[id]
	if !ok {
		return Lead{}, mongo.ErrNoDocuments
	}
	return l, nil
}

func (f *fakeRepo) Assign(ctx context.Context, id, professionalID string, now time.Time) (Lead, error) {
	l, ok := f.items[id]
	if !ok {
		return Lead{}, mongo.ErrNoDocuments
	}
	l.Status = StatusAssigned
	l.AssignedProfessionalID = professionalID
	l.UpdatedAt = now
	f.items[id] = l
	return l, nil
}

func (f *fakeRepo) Close(ctx context.Context, id string, now time.Time) (Lead, error) {
	l, ok := f.items[id]
	if !ok {
		return Lead{}, mongo.ErrNoDocuments
	}
	l.Status = StatusClosed
	l.UpdatedAt = now
	f.items[id] = l
	return l, nil
}

type fakeProfiles struct {
	profiles map[string]models.Profile
}

func (f *fakeProfiles) GetByID(ctx context.Context, id string) (models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return models.Profile{}, mongo.ErrNoDocuments
	}
	return p, nil
}

func testService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	repo := newFakeRepo()
	profiles := &fakeProfiles{profiles: map[string]models.Profile{
		"pro-1": {ID: "pro-1", Role: models.RoleProfessional},
		"cli-1": {ID: "cli-1", Role: models.RoleClient},
	}}
	return NewService(repo, profiles, loc), repo
}

func TestCreateDefaultsToWebsiteSource(t *testing.T) {
	svc, _ := testService(t)

	lead, err := svc.Create(context.Background(), CreateRequest{
		FullName: "  Meera Iyer ",
		Phone:    "+919876543210",
		Goal:     "weight management",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.Source != SourceWebsite {
		t.Errorf("source = %q", lead.Source)
	}
	if lead.Status != StatusNew {
		t.Errorf("status = %q", lead.Status)
	}
	if lead.FullName != "Meera Iyer" {
		t.Errorf("fullName = %q, want trimmed", lead.FullName)
	}
}

func TestCreateRejectsUnknownSource(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Create(context.Background(), CreateRequest{
		FullName: "Meera Iyer",
		Phone:    "+919876543210",
		Goal:     "weight management",
		Source:   "billboard",
	})
	if !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("err = %v, want ErrInvalidSource", err)
	}
}

func TestAssignRequiresProfessionalRole(t *testing.T) {
	svc, repo := testService(t)
	lead, err := svc.Create(context.Background(), CreateRequest{
		FullName: "Meera Iyer", Phone: "+919876543210", Goal: "strength training",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Assign(context.Background(), lead.ID, "cli-1"); !errors.Is(err, ErrInvalidProfessional) {
		t.Errorf("assign to client: err = %v, want ErrInvalidProfessional", err)
	}
	if _, err := svc.Assign(context.Background(), lead.ID, "nobody"); !errors.Is(err, ErrInvalidProfessional) {
		t.Errorf("assign to unknown: err = %v, want ErrInvalidProfessional", err)
	}

	assigned, err := svc.Assign(context.Background(), lead.ID, "pro-1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != StatusAssigned || assigned.AssignedProfessionalID != "pro-1" {
		t.Errorf("assigned = %+v", assigned)
	}
	if repo.items[lead.ID].Status != StatusAssigned {
		t.Error("assignment not persisted")
	}
}

func TestCloseLead(t *testing.T) {
	svc, _ := testService(t)
	lead, err := svc.Create(context.Background(), CreateRequest{
		FullName: "Meera Iyer", Phone: "+919876543210", Goal: "nutrition plan",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	closed, err := svc.Close(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusClosed {
		t.Errorf("status = %q", closed.Status)
	}

	if _, err := svc.Close(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("close missing: err = %v, want ErrNotFound", err)
	}
}

func TestListFiltersByAssignee(t *testing.T) {
	svc, _ := testService(t)

	first, err := svc.Create(context.Background(), CreateRequest{
		FullName: "Meera Iyer", Phone: "+919876543210", Goal: "nutrition plan",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateRequest{
		FullName: "Kiran Shah", Phone: "+919812345678", Goal: "marathon prep",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Assign(context.Background(), first.ID, "pro-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	items, total, err := svc.List(context.Background(), ListFilter{AssignedProfessionalID: "pro-1"}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != first.ID {
		t.Errorf("items = %+v, total = %d", items, total)
	}
}

func TestListRejectsInvalidFilter(t *testing.T) {
	svc, _ := testService(t)

	if _, _, err := svc.List(context.Background(), ListFilter{Status: "archived"}, 20, 0); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
	if _, _, err := svc.List(context.Background(), ListFilter{Source: "radio"}, 20, 0); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("err = %v, want ErrInvalidSource", err)
	}
}
