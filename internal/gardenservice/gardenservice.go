package gardenservice

import (
	"github.com/plalog/plalog/server/hub/internal/cleanup"
	"github.com/plalog/plalog/server/hub/internal/envimport"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/export"
	"github.com/plalog/plalog/server/hub/internal/repository"
)

// GardenService contains all repositories and service-wide dependencies
type GardenService struct {
	Locations   repository.LocationRepository
	Environment repository.EnvironmentRepository
	Cleanup     *cleanup.CleanupService
	Imports     *envimport.Workflow
	Exporter    *export.Exporter
}

// New creates a new GardenService instance
func New(
	locations repository.LocationRepository,
	environment repository.EnvironmentRepository,
	imports *envimport.Workflow,
	exporter *export.Exporter,
) *GardenService {
	return &GardenService{
		Locations:   locations,
		Environment: environment,
		Cleanup:     cleanup.New(locations, environment),
		Imports:     imports,
		Exporter:    exporter,
	}
}

// Validate checks if all required dependencies are initialized
func (s *GardenService) Validate() error {
	if s.Locations == nil {
		return ErrMissingDependency("locations")
	}
	if s.Environment == nil {
		return ErrMissingDependency("environment")
	}
	if s.Imports == nil {
		return ErrMissingDependency("imports")
	}
	if s.Exporter == nil {
		return ErrMissingDependency("exporter")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}
