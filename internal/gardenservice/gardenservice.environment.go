package gardenservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plalog/plalog/server/hub/internal/envimport"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/models"
)

// AddManualLog stores a hand-entered reading. The timestamp is kept to the
// second; a second reading at the same instant is a conflict.
func (s *GardenService) AddManualLog(ctx context.Context, log *models.EnvironmentLog) error {
	if _, err := s.Locations.Get(ctx, log.LocationID); err != nil {
		return err
	}
	if err := log.Validate(); err != nil {
		return errors.NewValidationError(err.Error(), err)
	}

	now := time.Now().UTC()
	log.ID = uuid.NewString()
	log.Timestamp = log.Timestamp.Truncate(time.Second)
	log.Source = models.SourceManual
	log.CreatedAt = now
	log.UpdatedAt = now
	return s.Environment.CreateLog(ctx, log)
}

func (s *GardenService) ListLogs(ctx context.Context, locationID string, filters models.EnvironmentFilters) ([]*models.EnvironmentLog, error) {
	if _, err := s.Locations.Get(ctx, locationID); err != nil {
		return nil, err
	}
	if !filters.From.IsZero() && !filters.To.IsZero() && filters.To.Before(filters.From) {
		return nil, errors.NewValidationError("to must not be before from", nil)
	}
	return s.Environment.ListLogs(ctx, locationID, filters)
}

func (s *GardenService) LatestLog(ctx context.Context, locationID string) (*models.EnvironmentLog, error) {
	return s.Environment.LatestLog(ctx, locationID)
}

func (s *GardenService) DeleteLog(ctx context.Context, id string) error {
	return s.Cleanup.DeleteEnvironmentLog(ctx, id)
}

// ListDailySummaries accepts YYYY-MM-DD bounds; empty bounds are open
func (s *GardenService) ListDailySummaries(ctx context.Context, locationID, from, to string) ([]*models.DailyEnvironmentSummary, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(models.DailyDateLayout, d); err != nil {
			return nil, errors.NewValidationError("dates must be YYYY-MM-DD", err)
		}
	}
	if _, err := s.Locations.Get(ctx, locationID); err != nil {
		return nil, err
	}
	return s.Environment.ListDailySummaries(ctx, locationID, from, to)
}

// CommitImport merges a previewed upload into an existing location
func (s *GardenService) CommitImport(ctx context.Context, sessionID, locationID string) (*models.ImportSession, error) {
	if _, err := s.Locations.Get(ctx, locationID); err != nil {
		return nil, err
	}
	return s.Imports.Commit(ctx, sessionID, locationID)
}

// EnvironmentStats rolls up the daily summaries of a location between from and to
// (YYYY-MM-DD, open when empty). A range without summaries is not found.
func (s *GardenService) EnvironmentStats(ctx context.Context, locationID, from, to string) (*models.EnvironmentStats, error) {
	summaries, err := s.ListDailySummaries(ctx, locationID, from, to)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, errors.NewNotFoundError("no daily summaries for location", nil)
	}

	first := summaries[0]
	stats := &models.EnvironmentStats{
		LocationID: locationID,
		From:       first.Date,
		To:         first.Date,
		Days:       len(summaries),
		TempMin:    first.TempMin,
		TempMax:    first.TempMax,
	}

	var tempSum, humSum float64
	humDays := 0
	for _, d := range summaries {
		if d.Date < stats.From {
			stats.From = d.Date
		}
		if d.Date > stats.To {
			stats.To = d.Date
		}
		stats.TempMin = min(stats.TempMin, d.TempMin)
		stats.TempMax = max(stats.TempMax, d.TempMax)
		tempSum += d.TempAvg
		stats.DataPoints += d.DataPoints

		if d.HumidityAvg == nil {
			continue
		}
		humSum += *d.HumidityAvg
		humDays++
		if d.HumidityMin != nil && (stats.HumidityMin == nil || *d.HumidityMin < *stats.HumidityMin) {
			v := *d.HumidityMin
			stats.HumidityMin = &v
		}
		if d.HumidityMax != nil && (stats.HumidityMax == nil || *d.HumidityMax > *stats.HumidityMax) {
			v := *d.HumidityMax
			stats.HumidityMax = &v
		}
	}

	stats.TempAvg = envimport.Round1(tempSum / float64(len(summaries)))
	if humDays > 0 {
		avg := envimport.Round1(humSum / float64(humDays))
		stats.HumidityAvg = &avg
	}
	return stats, nil
}
