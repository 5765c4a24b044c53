package gardenservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// CreateLocation validates and stores a new location
func (s *GardenService) CreateLocation(ctx context.Context, location *models.Location) error {
	if err := location.Validate(); err != nil {
		return errors.NewValidationError(err.Error(), err)
	}

	if location.ID == "" {
		location.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	location.CreatedAt = now
	location.UpdatedAt = now

	nuts.L.Infof("[GardenService] Creating location: %s (%s)", location.Name, location.ID)
	return s.Locations.Create(ctx, location)
}

func (s *GardenService) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	return s.Locations.Get(ctx, id)
}

func (s *GardenService) ListLocations(ctx context.Context, offset, limit int) ([]*models.Location, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.Locations.List(ctx, offset, limit)
}

// UpdateLocation changes name and description; CreatedAt is kept from storage
func (s *GardenService) UpdateLocation(ctx context.Context, location *models.Location) error {
	existing, err := s.Locations.Get(ctx, location.ID)
	if err != nil {
		return err
	}
	if err := location.Validate(); err != nil {
		return errors.NewValidationError(err.Error(), err)
	}
	location.CreatedAt = existing.CreatedAt
	location.UpdatedAt = time.Now().UTC()
	return s.Locations.Update(ctx, location)
}

// DeleteLocation removes the location and everything recorded for it
func (s *GardenService) DeleteLocation(ctx context.Context, id string) error {
	nuts.L.Infof("[GardenService] Deleting location %s", id)
	return s.Cleanup.DeleteLocation(ctx, id)
}
