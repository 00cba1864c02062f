package availability

import (
	"context"
	"errors"
	"time"

	"mynutrify-backend/internal/models"
	"mynutrify-backend/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidWindow = errors.New("invalid availability window")
	ErrDuplicateDay  = errors.New("duplicate day of week")
)

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

type WindowInput struct {
	DayOfWeek int `json:"dayOfWeek" validate:"gte=0,lte=6"`
	StartHour int `json:"startHour" validate:"gte=0,lte=23"`
	EndHour   int `json:"endHour" validate:"gte=1,lte=24"`
}

// Replace validates and saves a professional's weekly schedule wholesale.
// At most one window per day of week; no split shifts.
func (s *Service) Replace(ctx context.Context, professionalID string, inputs []WindowInput) ([]models.AvailabilityWindow, error) {
	seen := make(map[int]bool, len(inputs))
	now := time.Now().In(s.location)
	windows := make([]models.AvailabilityWindow, 0, len(inputs))
	for _, in := range inputs {
		w := schedule.Window{DayOfWeek: in.DayOfWeek, StartHour: in.StartHour, EndHour: in.EndHour}
		if !w.Valid() {
			return nil, ErrInvalidWindow
		}
		if seen[in.DayOfWeek] {
			return nil, ErrDuplicateDay
		}
		seen[in.DayOfWeek] = true
		windows = append(windows, models.AvailabilityWindow{
			ID:             primitive.NewObjectID().Hex(),
			ProfessionalID: professionalID,
			DayOfWeek:      in.DayOfWeek,
			StartHour:      in.StartHour,
			EndHour:        in.EndHour,
			CreatedAt:      now,
		})
	}

	if err := s.repo.Replace(ctx, professionalID, windows); err != nil {
		return nil, err
	}
	return windows, nil
}

func (s *Service) Windows(ctx context.Context, professionalID string) ([]models.AvailabilityWindow, error) {
	return s.repo.ListForProfessional(ctx, professionalID)
}

// WindowFor resolves a professional's window for a weekday as a schedule
// window, or nil when the professional has no hours that day.
func (s *Service) WindowFor(ctx context.Context, professionalID string, day time.Weekday) (*schedule.Window, error) {
	doc, err := s.repo.WindowFor(ctx, professionalID, int(day))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return &schedule.Window{DayOfWeek: doc.DayOfWeek, StartHour: doc.StartHour, EndHour: doc.EndHour}, nil
}
