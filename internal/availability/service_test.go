package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"mynutrify-backend/internal/models"
)

type fakeRepo struct {
	windows map[string][]models.AvailabilityWindow
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{windows: make(map[string][]models.AvailabilityWindow)}
}

func (f *fakeRepo) Replace(ctx context.Context, professionalID string, windows []models.AvailabilityWindow) error {
	f.windows[professionalID] = windows
	return nil
}

func (f *fakeRepo) ListForProfessional(ctx context.Context, professionalID string) ([]models.AvailabilityWindow, error) {
	return f.windows[professionalID], nil
}

func (f *fakeRepo) WindowFor(ctx context.Context, professionalID string, dayOfWeek int) (*models.AvailabilityWindow, error) {
	for _, w := range f.windows[professionalID] {
		if w.DayOfWeek == dayOfWeek {
			return &w, nil
		}
	}
	return nil, nil
}

func testService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	repo := newFakeRepo()
	return NewService(repo, loc), repo
}

func TestReplaceStoresWeekdayWindows(t *testing.T) {
	svc, repo := testService(t)

	inputs := []WindowInput{
		{DayOfWeek: 1, StartHour: 9, EndHour: 17},
		{DayOfWeek: 3, StartHour: 10, EndHour: 14},
	}
	saved, err := svc.Replace(context.Background(), "pro-1", inputs)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("saved %d windows, want 2", len(saved))
	}
	if len(repo.windows["pro-1"]) != 2 {
		t.Errorf("stored %d windows, want 2", len(repo.windows["pro-1"]))
	}
	for _, w := range saved {
		if w.ProfessionalID != "pro-1" || w.ID == "" {
			t.Errorf("window = %+v", w)
		}
	}
}

func TestReplaceRejectsInvalidWindows(t *testing.T) {
	svc, _ := testService(t)

	cases := []WindowInput{
		{DayOfWeek: 1, StartHour: 17, EndHour: 9},
		{DayOfWeek: 1, StartHour: 12, EndHour: 12},
		{DayOfWeek: 7, StartHour: 9, EndHour: 17},
	}
	for _, in := range cases {
		if _, err := svc.Replace(context.Background(), "pro-1", []WindowInput{in}); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("Replace(%+v) err = %v, want ErrInvalidWindow", in, err)
		}
	}
}

func TestReplaceRejectsDuplicateDays(t *testing.T) {
	svc, repo := testService(t)

	inputs := []WindowInput{
		{DayOfWeek: 2, StartHour: 9, EndHour: 13},
		{DayOfWeek: 2, StartHour: 14, EndHour: 18},
	}
	if _, err := svc.Replace(context.Background(), "pro-1", inputs); !errors.Is(err, ErrDuplicateDay) {
		t.Fatalf("err = %v, want ErrDuplicateDay", err)
	}
	if len(repo.windows["pro-1"]) != 0 {
		t.Error("nothing should be stored on validation failure")
	}
}

func TestReplaceWithEmptyInputClearsSchedule(t *testing.T) {
	svc, repo := testService(t)

	if _, err := svc.Replace(context.Background(), "pro-1", []WindowInput{{DayOfWeek: 1, StartHour: 9, EndHour: 17}}); err != nil {
		t.Fatalf("seed replace: %v", err)
	}
	saved, err := svc.Replace(context.Background(), "pro-1", nil)
	if err != nil {
		t.Fatalf("clear replace: %v", err)
	}
	if len(saved) != 0 || len(repo.windows["pro-1"]) != 0 {
		t.Error("schedule should be empty after replacing with no windows")
	}
}

func TestWindowForMapsToScheduleWindow(t *testing.T) {
	svc, _ := testService(t)

	if _, err := svc.Replace(context.Background(), "pro-1", []WindowInput{{DayOfWeek: 1, StartHour: 9, EndHour: 17}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	w, err := svc.WindowFor(context.Background(), "pro-1", time.Monday)
	if err != nil {
		t.Fatalf("window for monday: %v", err)
	}
	if w == nil || w.StartHour != 9 || w.EndHour != 17 {
		t.Errorf("window = %+v", w)
	}

	none, err := svc.WindowFor(context.Background(), "pro-1", time.Sunday)
	if err != nil {
		t.Fatalf("window for sunday: %v", err)
	}
	if none != nil {
		t.Errorf("sunday window = %+v, want nil", none)
	}
}
