package export

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/plalog/plalog/server/hub/internal/envimport"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/plalog/plalog/server/hub/internal/repository/sqlrepo"
	"github.com/plalog/plalog/server/hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	docs map[string][]byte
}

func (m *memoryStorage) Put(_ context.Context, key string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.docs[key] = data
	return "mem://" + key, nil
}

func TestExporter_Export(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	locations := sqlrepo.NewLocationRepository(db)
	environment := sqlrepo.NewEnvironmentRepository(db)
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, locations.Create(ctx, &models.Location{ID: "loc-1", Name: "Balcony", CreatedAt: now, UpdatedAt: now}))
	imp := envimport.NewImporter(envimport.DefaultRegistry(time.UTC), environment)
	_, err := imp.Import(ctx, "Time,Temperature\n2024-06-01 10:00,20\n2024-06-01 11:00,22\n2024-06-02 10:00,19\n", "loc-1")
	require.NoError(t, err)

	storage := &memoryStorage{docs: map[string][]byte{}}
	exporter := NewExporter(locations, environment, storage)
	exporter.now = func() time.Time { return now }

	receipt, err := exporter.Export(ctx, "loc-1")
	require.NoError(t, err)
	assert.Equal(t, "loc-1/plalog-environment-20240701_120000.json", receipt.Key)
	assert.Equal(t, "mem://"+receipt.Key, receipt.Location)
	assert.Equal(t, 3, receipt.EnvironmentLogs)
	assert.Equal(t, 2, receipt.DailySummaries)

	var doc models.ExportData
	require.NoError(t, json.Unmarshal(storage.docs[receipt.Key], &doc))
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "plalog", doc.App)
	assert.Equal(t, "2024-07-01T12:00:00Z", doc.ExportedAt)
	require.Len(t, doc.Data.Locations, 1)
	assert.Equal(t, "Balcony", doc.Data.Locations[0].Name)
	assert.Equal(t, "2024-06-01", doc.Data.DailyEnvironmentSummaries[0].Date)
	assert.Equal(t, models.DataSourceType("switchbot-csv"), doc.Data.EnvironmentLogs[0].Source)
}

func TestExporter_UnknownLocation(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	exporter := NewExporter(sqlrepo.NewLocationRepository(db), sqlrepo.NewEnvironmentRepository(db), &memoryStorage{docs: map[string][]byte{}})

	_, err := exporter.Export(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))
}
