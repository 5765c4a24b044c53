// FilePath: server/hub/internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/plalog/plalog/server/hub/internal/database"
	"github.com/plalog/plalog/server/hub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
)

// LocationRepository defines the interface for location data operations
type LocationRepository interface {
	database.Repository
	Create(ctx context.Context, location *models.Location) error
	Get(ctx context.Context, id string) (*models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	List(ctx context.Context, offset, limit int) ([]*models.Location, error)
	Delete(ctx context.Context, id string, tx database.Transaction) error
}

// EnvironmentRepository defines the interface for hourly logs and daily summaries
type EnvironmentRepository interface {
	database.Repository
	CreateLog(ctx context.Context, log *models.EnvironmentLog) error
	GetLog(ctx context.Context, id string) (*models.EnvironmentLog, error)
	ListLogs(ctx context.Context, locationID string, filters models.EnvironmentFilters) ([]*models.EnvironmentLog, error)
	LatestLog(ctx context.Context, locationID string) (*models.EnvironmentLog, error)
	DeleteLog(ctx context.Context, id string) error
	ListDailySummaries(ctx context.Context, locationID string, from, to string) ([]*models.DailyEnvironmentSummary, error)
	DeleteByLocation(ctx context.Context, locationID string, tx database.Transaction) error

	// RunInTx runs fn inside one transaction. It commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx EnvironmentTx) error) error
}

// EnvironmentTx is the view of both environment tables used while merging an import
type EnvironmentTx interface {
	HasLogAt(ctx context.Context, locationID string, timestamp time.Time) (bool, error)
	InsertLog(ctx context.Context, log *models.EnvironmentLog) error
	// FindDailySummary returns nil without error when no summary exists for the date
	FindDailySummary(ctx context.Context, locationID, date string) (*models.DailyEnvironmentSummary, error)
	InsertDailySummary(ctx context.Context, summary *models.DailyEnvironmentSummary) error
	ReplaceDailySummary(ctx context.Context, summary *models.DailyEnvironmentSummary) error
}
