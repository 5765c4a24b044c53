package gardenservice

import (
	"context"
	"testing"
	"time"

	"github.com/plalog/plalog/server/hub/internal/envimport"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/export"
	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/plalog/plalog/server/hub/internal/repository/files"
	"github.com/plalog/plalog/server/hub/internal/repository/sqlrepo"
	"github.com/plalog/plalog/server/hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *GardenService {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	locations := sqlrepo.NewLocationRepository(db)
	environment := sqlrepo.NewEnvironmentRepository(db)

	importer := envimport.NewImporter(envimport.DefaultRegistry(time.UTC), environment)
	storage, err := files.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	svc := New(
		locations,
		environment,
		envimport.NewWorkflow(importer, envimport.NewMemorySessionStore(time.Hour)),
		export.NewExporter(locations, environment, storage),
	)
	require.NoError(t, svc.Validate())
	return svc
}

func fptr(v float64) *float64 { return &v }

func TestValidate_MissingDependency(t *testing.T) {
	svc := &GardenService{}
	assert.Error(t, svc.Validate())
}

func TestLocationLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	loc := &models.Location{Name: "  Balcony  "}
	require.NoError(t, svc.CreateLocation(ctx, loc))
	assert.NotEmpty(t, loc.ID)
	assert.Equal(t, "Balcony", loc.Name)

	err := svc.CreateLocation(ctx, &models.Location{})
	assert.True(t, errors.IsValidation(err))

	created := loc.CreatedAt
	update := &models.Location{ID: loc.ID, Name: "Greenhouse"}
	require.NoError(t, svc.UpdateLocation(ctx, update))
	assert.WithinDuration(t, created, update.CreatedAt, time.Millisecond)

	got, err := svc.GetLocation(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Greenhouse", got.Name)

	list, err := svc.ListLocations(ctx, -1, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteLocation(ctx, loc.ID))
	_, err = svc.GetLocation(ctx, loc.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestAddManualLog(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	loc := &models.Location{Name: "Shed"}
	require.NoError(t, svc.CreateLocation(ctx, loc))

	at := time.Date(2024, 6, 1, 10, 0, 0, 500, time.UTC)
	log := &models.EnvironmentLog{LocationID: loc.ID, Timestamp: at, Temperature: fptr(21.5)}
	require.NoError(t, svc.AddManualLog(ctx, log))
	assert.Equal(t, models.SourceManual, log.Source)
	assert.Equal(t, at.Truncate(time.Second), log.Timestamp)

	dup := &models.EnvironmentLog{LocationID: loc.ID, Timestamp: at, Temperature: fptr(22)}
	assert.True(t, errors.IsConflict(svc.AddManualLog(ctx, dup)))

	orphan := &models.EnvironmentLog{LocationID: "nowhere", Timestamp: at, Temperature: fptr(1)}
	assert.True(t, errors.IsNotFound(svc.AddManualLog(ctx, orphan)))

	latest, err := svc.LatestLog(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, log.ID, latest.ID)

	require.NoError(t, svc.DeleteLog(ctx, log.ID))
	_, err = svc.LatestLog(ctx, loc.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestListLogs_RejectsInvertedRange(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	loc := &models.Location{Name: "Shed"}
	require.NoError(t, svc.CreateLocation(ctx, loc))

	filters := models.EnvironmentFilters{
		From: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.ListLogs(ctx, loc.ID, filters)
	assert.True(t, errors.IsValidation(err))
}

func TestListDailySummaries_ValidatesDates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.ListDailySummaries(ctx, "any", "2024/06/01", "")
	assert.True(t, errors.IsValidation(err))

	_, err = svc.ListDailySummaries(ctx, "missing", "2024-06-01", "")
	assert.True(t, errors.IsNotFound(err))
}

func TestCommitImport(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	loc := &models.Location{Name: "Balcony"}
	require.NoError(t, svc.CreateLocation(ctx, loc))

	session, err := svc.Imports.Select(ctx, "meter.csv", "Time,Temperature,Humidity\n2024-06-01 10:00,20,50\n2024-06-01 10:30,21,55\n")
	require.NoError(t, err)

	_, err = svc.CommitImport(ctx, session.ID, "missing")
	assert.True(t, errors.IsNotFound(err))

	done, err := svc.CommitImport(ctx, session.ID, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStepComplete, done.Step)
	assert.Equal(t, 1, done.Result.HourlyRecords)
	assert.Equal(t, 1, done.Result.DailyRecords)

	summaries, err := svc.ListDailySummaries(ctx, loc.ID, "2024-06-01", "2024-06-01")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 20.5, summaries[0].TempAvg)
	require.NotNil(t, summaries[0].HumidityAvg)
	assert.Equal(t, 52.5, *summaries[0].HumidityAvg)
}

func importInto(t *testing.T, svc *GardenService, locationID, content string) {
	t.Helper()
	ctx := context.Background()
	session, err := svc.Imports.Select(ctx, "meter.csv", content)
	require.NoError(t, err)
	done, err := svc.CommitImport(ctx, session.ID, locationID)
	require.NoError(t, err)
	require.True(t, done.Result.Success)
}

func TestEnvironmentStats(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	loc := &models.Location{Name: "Balcony"}
	require.NoError(t, svc.CreateLocation(ctx, loc))
	importInto(t, svc, loc.ID, "Time,Temperature,Humidity\n"+
		"2024-06-01 10:00,20,50\n"+
		"2024-06-01 11:00,24,70\n"+
		"2024-06-02 10:00,16,40\n"+
		"2024-06-03 10:00,30,\n")

	stats, err := svc.EnvironmentStats(ctx, loc.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", stats.From)
	assert.Equal(t, "2024-06-03", stats.To)
	assert.Equal(t, 3, stats.Days)
	assert.Equal(t, 4, stats.DataPoints)
	assert.Equal(t, 16.0, stats.TempMin)
	assert.Equal(t, 30.0, stats.TempMax)
	assert.Equal(t, 22.7, stats.TempAvg)
	require.NotNil(t, stats.HumidityAvg)
	assert.Equal(t, 50.0, *stats.HumidityAvg)
	assert.Equal(t, 40.0, *stats.HumidityMin)
	assert.Equal(t, 70.0, *stats.HumidityMax)

	ranged, err := svc.EnvironmentStats(ctx, loc.ID, "2024-06-02", "2024-06-02")
	require.NoError(t, err)
	assert.Equal(t, 1, ranged.Days)
	assert.Equal(t, 16.0, ranged.TempAvg)
}

func TestEnvironmentStats_WithoutHumidity(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	loc := &models.Location{Name: "Shed"}
	require.NoError(t, svc.CreateLocation(ctx, loc))
	importInto(t, svc, loc.ID, "Time,Temperature\n2024-06-01 10:00,20\n2024-06-01 11:00,22\n2024-06-02 10:00,15\n")

	stats, err := svc.EnvironmentStats(ctx, loc.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Days)
	assert.Equal(t, 3, stats.DataPoints)
	assert.Equal(t, 15.0, stats.TempMin)
	assert.Equal(t, 22.0, stats.TempMax)
	assert.Equal(t, 18.0, stats.TempAvg)
	assert.Nil(t, stats.HumidityAvg)
	assert.Nil(t, stats.HumidityMin)
	assert.Nil(t, stats.HumidityMax)
}

func TestEnvironmentStats_EmptyAndInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	loc := &models.Location{Name: "Empty"}
	require.NoError(t, svc.CreateLocation(ctx, loc))

	_, err := svc.EnvironmentStats(ctx, loc.ID, "", "")
	assert.True(t, errors.IsNotFound(err))

	_, err = svc.EnvironmentStats(ctx, loc.ID, "June", "")
	assert.True(t, errors.IsValidation(err))

	_, err = svc.EnvironmentStats(ctx, "missing", "", "")
	assert.True(t, errors.IsNotFound(err))
}
