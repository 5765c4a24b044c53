package cleanup

import (
	"context"
	"fmt"

	"github.com/plalog/plalog/server/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	EventLocationDeleted       = "location.deleted"
	EventEnvironmentLogDeleted = "environment_log.deleted"
)

// CleanupService coordinates deletion of a location and the data it owns
type CleanupService struct {
	locations   repository.LocationRepository
	environment repository.EnvironmentRepository
	events      *nuts.EventEmitter
}

// New creates a new CleanupService
func New(locations repository.LocationRepository, environment repository.EnvironmentRepository) *CleanupService {
	return &CleanupService{
		locations:   locations,
		environment: environment,
		events:      nuts.NewEventEmitter(),
	}
}

// DeleteLocation deletes a location with its hourly logs and daily summaries
func (s *CleanupService) DeleteLocation(ctx context.Context, locationID string) error {
	// Start transaction
	tx, err := s.locations.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := s.environment.DeleteByLocation(ctx, locationID, tx); err != nil {
		return fmt.Errorf("failed to delete environment data: %w", err)
	}

	// Finally, delete the location
	if err := s.locations.Delete(ctx, locationID, tx); err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Emit event after successful deletion
	s.emit(EventLocationDeleted, locationID)
	return nil
}

// DeleteEnvironmentLog deletes a single hourly log
func (s *CleanupService) DeleteEnvironmentLog(ctx context.Context, logID string) error {
	if err := s.environment.DeleteLog(ctx, logID); err != nil {
		return fmt.Errorf("failed to delete environment log: %w", err)
	}
	s.emit(EventEnvironmentLogDeleted, logID)
	return nil
}

// OnCleanup registers a callback for cleanup events. Every call adds a listener.
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, "", handler)
}

func (s *CleanupService) emit(event, id string) {
	if err := s.events.Emit(event, id); err != nil {
		nuts.L.Warnf("[Cleanup] Failed to emit %s for %s: %v", event, id, err)
	}
}
