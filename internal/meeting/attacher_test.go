package meeting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"mynutrify-backend/internal/models"
)

type fakeAPI struct {
	createErr   error
	created     Meeting
	readyAfter  int
	getCalls    int
	createCalls int
}

func (f *fakeAPI) CreateMeeting(ctx context.Context, req CreateMeetingRequest) (Meeting, error) {
	f.createCalls++
	if f.createErr != nil {
		return Meeting{}, f.createErr
	}
	return f.created, nil
}

func (f *fakeAPI) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	f.getCalls++
	if f.getCalls >= f.readyAfter {
		return Meeting{ID: id, JoinURL: "https://meet.example.com/room-7", Status: "ready"}, nil
	}
	return Meeting{ID: id, Status: "provisioning"}, nil
}

type fakeLinks struct {
	appointmentID string
	link          string
	writes        int
	err           error
}

func (f *fakeLinks) SetMeetingLink(ctx context.Context, id, link string, now time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.appointmentID = id
	f.link = link
	f.writes++
	return nil
}

type staticProfiles struct {
	profile models.Profile
	err     error
}

func (s *staticProfiles) GetByID(ctx context.Context, id string) (models.Profile, error) {
	return s.profile, s.err
}

func testAttacher(t *testing.T, api API, links LinkStore, profiles ProfileStore) *Attacher {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	policy := RetryPolicy{MaxAttempts: 3, Interval: time.Millisecond}
	return NewAttacher(api, links, profiles, policy, loc, log)
}

func delegated() *staticProfiles {
	return &staticProfiles{profile: models.Profile{
		ID: "pro-1", Role: models.RoleProfessional, FullName: "Asha Nair", CalendarDelegated: true,
	}}
}

func appointment() models.Appointment {
	return models.Appointment{
		ID:              "apt-1",
		ProfessionalID:  "pro-1",
		ClientID:        "cli-1",
		StartTime:       time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}
}

func TestAttachSkipsWithoutDelegation(t *testing.T) {
	links := &fakeLinks{}
	profiles := &staticProfiles{profile: models.Profile{ID: "pro-1", CalendarDelegated: false}}
	a := testAttacher(t, &fakeAPI{}, links, profiles)

	link := a.Attach(context.Background(), appointment())
	if link != "" {
		t.Errorf("link = %q, want empty", link)
	}
	if links.writes != 0 {
		t.Errorf("writes = %d, want 0", links.writes)
	}
}

func TestAttachStoresImmediateLink(t *testing.T) {
	api := &fakeAPI{created: Meeting{ID: "m-1", JoinURL: "https://meet.example.com/room-1"}}
	links := &fakeLinks{}
	a := testAttacher(t, api, links, delegated())

	link := a.Attach(context.Background(), appointment())
	if link != "https://meet.example.com/room-1" {
		t.Errorf("link = %q", link)
	}
	if links.appointmentID != "apt-1" || links.link != link {
		t.Errorf("stored %q on %q", links.link, links.appointmentID)
	}
	if api.getCalls != 0 {
		t.Errorf("getCalls = %d, want 0 when link is immediate", api.getCalls)
	}
}

func TestAttachPollsUntilLinkReady(t *testing.T) {
	api := &fakeAPI{created: Meeting{ID: "m-2"}, readyAfter: 2}
	links := &fakeLinks{}
	a := testAttacher(t, api, links, delegated())

	link := a.Attach(context.Background(), appointment())
	if link != "https://meet.example.com/room-7" {
		t.Errorf("link = %q", link)
	}
	if api.getCalls != 2 {
		t.Errorf("getCalls = %d, want 2", api.getCalls)
	}
}

func TestAttachCreateFailureDegradesToPlaceholder(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("connection refused")}
	links := &fakeLinks{}
	a := testAttacher(t, api, links, delegated())

	link := a.Attach(context.Background(), appointment())
	if link != PlaceholderLink {
		t.Errorf("link = %q, want placeholder", link)
	}
	if links.link != PlaceholderLink {
		t.Errorf("stored %q, want placeholder", links.link)
	}
}

func TestAttachExhaustedRetriesDegradeToPlaceholder(t *testing.T) {
	api := &fakeAPI{created: Meeting{ID: "m-3"}, readyAfter: 100}
	links := &fakeLinks{}
	a := testAttacher(t, api, links, delegated())

	link := a.Attach(context.Background(), appointment())
	if link != PlaceholderLink {
		t.Errorf("link = %q, want placeholder", link)
	}
	if api.getCalls != 3 {
		t.Errorf("getCalls = %d, want 3", api.getCalls)
	}
}

func TestAttachWithoutProviderStoresPlaceholder(t *testing.T) {
	links := &fakeLinks{}
	a := testAttacher(t, nil, links, delegated())

	link := a.Attach(context.Background(), appointment())
	if link != PlaceholderLink {
		t.Errorf("link = %q, want placeholder", link)
	}
}

func TestAttachCancelledContextStopsPolling(t *testing.T) {
	api := &fakeAPI{created: Meeting{ID: "m-4"}, readyAfter: 100}
	links := &fakeLinks{}
	a := testAttacher(t, api, links, delegated())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	link := a.Attach(ctx, appointment())
	if link != PlaceholderLink {
		t.Errorf("link = %q, want placeholder", link)
	}
	if api.getCalls != 0 {
		t.Errorf("getCalls = %d, want 0 after cancellation", api.getCalls)
	}
}
