// Package export writes a location's environment data as a JSON backup document.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/plalog/plalog/server/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	FormatVersion = 1
	AppName       = "plalog"
	pageSize      = 5000
)

// Storage receives finished documents
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader) (string, error)
}

// Receipt describes a stored export
type Receipt struct {
	Key             string `json:"key"`
	Location        string `json:"location"`
	ExportedAt      string `json:"exportedAt"`
	EnvironmentLogs int    `json:"environmentLogs"`
	DailySummaries  int    `json:"dailySummaries"`
}

type Exporter struct {
	locations   repository.LocationRepository
	environment repository.EnvironmentRepository
	storage     Storage
	now         func() time.Time
}

func NewExporter(locations repository.LocationRepository, environment repository.EnvironmentRepository, storage Storage) *Exporter {
	return &Exporter{locations: locations, environment: environment, storage: storage, now: time.Now}
}

// Build assembles the document for one location
func (e *Exporter) Build(ctx context.Context, locationID string) (*models.ExportData, error) {
	location, err := e.locations.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}
	logs, err := e.allLogs(ctx, locationID)
	if err != nil {
		return nil, err
	}
	summaries, err := e.environment.ListDailySummaries(ctx, locationID, "", "")
	if err != nil {
		return nil, err
	}

	return &models.ExportData{
		Version:    FormatVersion,
		ExportedAt: e.now().UTC().Format(time.RFC3339),
		App:        AppName,
		Data: models.ExportBody{
			Locations:                 []*models.Location{location},
			EnvironmentLogs:           logs,
			DailyEnvironmentSummaries: summaries,
		},
	}, nil
}

// allLogs pages backwards through the log list, newest first
func (e *Exporter) allLogs(ctx context.Context, locationID string) ([]*models.EnvironmentLog, error) {
	var all []*models.EnvironmentLog
	filters := models.EnvironmentFilters{Limit: pageSize}
	for {
		page, err := e.environment.ListLogs(ctx, locationID, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
		filters.To = page[len(page)-1].Timestamp.Add(-time.Second)
	}
	if all == nil {
		all = []*models.EnvironmentLog{}
	}
	return all, nil
}

// Export builds the document for locationID and hands it to storage
func (e *Exporter) Export(ctx context.Context, locationID string) (*Receipt, error) {
	doc, err := e.Build(ctx, locationID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	stamp := e.now().UTC().Format("20060102_150405")
	key := fmt.Sprintf("%s/plalog-environment-%s.json", locationID, stamp)
	location, err := e.storage.Put(ctx, key, &buf)
	if err != nil {
		return nil, err
	}

	nuts.L.Infof("[Exporter] Exported location %s to %s (%d logs, %d daily)",
		locationID, location, len(doc.Data.EnvironmentLogs), len(doc.Data.DailyEnvironmentSummaries))
	return &Receipt{
		Key:             key,
		Location:        location,
		ExportedAt:      doc.ExportedAt,
		EnvironmentLogs: len(doc.Data.EnvironmentLogs),
		DailySummaries:  len(doc.Data.DailyEnvironmentSummaries),
	}, nil
}
