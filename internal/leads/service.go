package leads

import (
	"context"
	"errors"
	"strings"
	"time"

	"mynutrify-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrInvalidSource       = errors.New("invalid source")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrNotFound            = errors.New("lead not found")
	ErrInvalidProfessional = errors.New("invalid professional")
)

// ProfileStore verifies that an assignment target exists and is a
// professional.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (models.Profile, error)
}

type Service struct {
	repo     Repository
	profiles ProfileStore
	location *time.Location
}

func NewService(repo Repository, profiles ProfileStore, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		location: location,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Lead, error) {
	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = SourceWebsite
	}
	if !IsValidSource(source) {
		return Lead{}, ErrInvalidSource
	}

	now := time.Now().In(s.location)
	lead := Lead{
		ID:        primitive.NewObjectID().Hex(),
		FullName:  strings.TrimSpace(req.FullName),
		Phone:     strings.TrimSpace(req.Phone),
		Email:     strings.TrimSpace(req.Email),
		Goal:      strings.TrimSpace(req.Goal),
		Notes:     strings.TrimSpace(req.Notes),
		Status:    StatusNew,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return Lead{}, err
	}

	return lead, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Lead, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	filter.Source = strings.ToLower(strings.TrimSpace(filter.Source))
	filter.AssignedProfessionalID = strings.TrimSpace(filter.AssignedProfessionalID)

	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if filter.Source != "" && !IsValidSource(filter.Source) {
		return nil, 0, ErrInvalidSource
	}

	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Lead, error) {
	lead, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return lead, nil
}

// Assign hands the lead to a professional. The target must exist and hold
// the professional role; anything else is rejected before the write.
func (s *Service) Assign(ctx context.Context, id, professionalID string) (Lead, error) {
	professionalID = strings.TrimSpace(professionalID)

	profile, err := s.profiles.GetByID(ctx, professionalID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Lead{}, ErrInvalidProfessional
		}
		return Lead{}, err
	}
	if profile.Role != models.RoleProfessional {
		return Lead{}, ErrInvalidProfessional
	}

	updated, err := s.repo.Assign(ctx, strings.TrimSpace(id), professionalID, time.Now().In(s.location))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return updated, nil
}

func (s *Service) Close(ctx context.Context, id string) (Lead, error) {
	updated, err := s.repo.Close(ctx, strings.TrimSpace(id), time.Now().In(s.location))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return updated, nil
}
