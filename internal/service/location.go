package service

import (
	"context"

	"github.com/atinyakov/MapKeeper/internal/models"
	"go.uber.org/zap"
)

// LocationRepository defines the persistence operations needed by the LocationService.
type LocationRepository interface {
	// List returns every location owned by the user.
	List(ctx context.Context, userID string) ([]models.Location, error)
	// Insert stores a location and returns it with its assigned id.
	Insert(ctx context.Context, userID string, loc models.Location) (models.Location, error)
	// Get fetches one location; repository.ErrNotFound if absent.
	Get(ctx context.Context, userID string, id int64) (models.Location, error)
	// Update overwrites a location by id.
	Update(ctx context.Context, userID string, loc models.Location) error
	// Delete removes a location by id.
	Delete(ctx context.Context, userID string, id int64) error
}

// LocationService implements the locations table operations for one user at a time.
type LocationService struct {
	repo LocationRepository
	log  *zap.Logger
}

// NewLocationService constructs a LocationService with the provided repository.
func NewLocationService(repo LocationRepository, log *zap.Logger) *LocationService {
	return &LocationService{repo: repo, log: log}
}

// List returns all the user's locations.
func (s *LocationService) List(ctx context.Context, userID string) ([]models.Location, error) {
	return s.repo.List(ctx, userID)
}

// Create validates the position and inserts the location.
func (s *LocationService) Create(ctx context.Context, userID string, loc models.Location) (models.Location, error) {
	if err := loc.Validate(); err != nil {
		return models.Location{}, err
	}
	loc.ID = 0
	out, err := s.repo.Insert(ctx, userID, loc)
	if err != nil {
		return models.Location{}, err
	}
	s.log.Debug("location created", zap.String("user_id", userID), zap.Int64("id", out.ID))
	return out, nil
}

// Update applies the patch to the stored row and returns the result.
func (s *LocationService) Update(ctx context.Context, userID string, id int64, patch models.LocationPatch) (models.Location, error) {
	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return models.Location{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return models.Location{}, err
	}
	if err := s.repo.Update(ctx, userID, next); err != nil {
		return models.Location{}, err
	}
	return next, nil
}

// Delete removes the location.
func (s *LocationService) Delete(ctx context.Context, userID string, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}
