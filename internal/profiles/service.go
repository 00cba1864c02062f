package profiles

import (
	"context"
	"errors"
	"strings"

	"mynutrify-backend/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("profile not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProfessional(ctx context.Context, id string) (models.Profile, error) {
	profile, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, err
	}
	if profile.Role != models.RoleProfessional {
		return models.Profile{}, ErrNotFound
	}
	return profile, nil
}

func (s *Service) ListProfessionals(ctx context.Context, limit, offset int64) ([]models.Profile, int64, error) {
	items, err := s.repo.ListByRole(ctx, models.RoleProfessional, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByRole(ctx, models.RoleProfessional)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
