package envimport

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/plalog/plalog/server/hub/internal/repository"
	"github.com/plalog/plalog/server/hub/internal/repository/sqlrepo"
	"github.com/plalog/plalog/server/hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory MergeStore. Changes made inside RunInTx are
// applied only when fn succeeds.
type fakeStore struct {
	logs      map[string]models.EnvironmentLog
	summaries map[string]models.DailyEnvironmentSummary
	failAfter int // fail the nth write when > 0
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		logs:      map[string]models.EnvironmentLog{},
		summaries: map[string]models.DailyEnvironmentSummary{},
	}
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.EnvironmentTx) error) error {
	tx := &fakeTx{store: s, logs: map[string]models.EnvironmentLog{}, summaries: map[string]models.DailyEnvironmentSummary{}}
	for k, v := range s.logs {
		tx.logs[k] = v
	}
	for k, v := range s.summaries {
		tx.summaries[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.logs, s.summaries = tx.logs, tx.summaries
	return nil
}

type fakeTx struct {
	store     *fakeStore
	logs      map[string]models.EnvironmentLog
	summaries map[string]models.DailyEnvironmentSummary
	writes    int
}

var errDiskFull = stderrors.New("disk full")

func (tx *fakeTx) write() error {
	tx.writes++
	if tx.store.failAfter > 0 && tx.writes >= tx.store.failAfter {
		return errDiskFull
	}
	return nil
}

func logKey(locationID string, ts time.Time) string {
	return locationID + "|" + ts.UTC().Format(time.RFC3339)
}

func (tx *fakeTx) HasLogAt(_ context.Context, locationID string, ts time.Time) (bool, error) {
	_, ok := tx.logs[logKey(locationID, ts)]
	return ok, nil
}

func (tx *fakeTx) InsertLog(_ context.Context, log *models.EnvironmentLog) error {
	if err := tx.write(); err != nil {
		return err
	}
	tx.logs[logKey(log.LocationID, log.Timestamp)] = *log
	return nil
}

func (tx *fakeTx) FindDailySummary(_ context.Context, locationID, date string) (*models.DailyEnvironmentSummary, error) {
	s, ok := tx.summaries[locationID+"|"+date]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (tx *fakeTx) InsertDailySummary(_ context.Context, s *models.DailyEnvironmentSummary) error {
	if err := tx.write(); err != nil {
		return err
	}
	tx.summaries[s.LocationID+"|"+s.Date] = *s
	return nil
}

func (tx *fakeTx) ReplaceDailySummary(ctx context.Context, s *models.DailyEnvironmentSummary) error {
	return tx.InsertDailySummary(ctx, s)
}

type recordedRun struct {
	format, outcome string
}

type fakeMetrics struct {
	runs []recordedRun
}

func (m *fakeMetrics) ObserveImport(format, outcome string, _ *models.ImportResult, _ time.Duration) {
	m.runs = append(m.runs, recordedRun{format, outcome})
}

func newTestImporter(store MergeStore, opts ...Option) *Importer {
	seq := 0
	base := []Option{
		WithClock(func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%03d", seq) }),
	}
	return NewImporter(DefaultRegistry(tokyo), store, append(base, opts...)...)
}

func csvOf(rows ...string) string {
	return strings.Join(append([]string{currentHeader}, rows...), "\n")
}

var sampleCSV = csvOf(
	"2024-06-01 10:05,20.0,50,0,0",
	"2024-06-01 10:40,21.0,52,0,0",
	"2024-06-01 10:55,22.0,54,0,0",
	"2024-06-01 11:10,19.0,,0,0",
	"2024-06-02 09:00,18.0,60,0,0",
)

func TestImporter_Preview(t *testing.T) {
	imp := newTestImporter(newFakeStore())

	preview, err := imp.Preview(sampleCSV)
	require.NoError(t, err)
	assert.Equal(t, &models.ImportPreview{
		Format:        "SwitchBot",
		RawRecords:    5,
		HourlyRecords: 3,
		DailyRecords:  2,
		DateRange:     models.DateRange{From: "2024/06/01", To: "2024/06/02"},
	}, preview)
}

func TestImporter_PreviewNone(t *testing.T) {
	imp := newTestImporter(newFakeStore())

	preview, err := imp.Preview("foo,bar,baz\n1,2,3")
	assert.Nil(t, preview)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	preview, err = imp.Preview("")
	assert.Nil(t, preview)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	preview, err = imp.Preview(csvOf("garbage,x,y,0,0"))
	assert.Nil(t, preview)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestImporter_ImportFailures(t *testing.T) {
	metrics := &fakeMetrics{}
	store := newFakeStore()
	imp := newTestImporter(store, WithMetrics(metrics))

	result, err := imp.Import(context.Background(), "foo,bar,baz", "loc-1")
	require.NoError(t, err)
	assert.Equal(t, &models.ImportResult{Success: false, Errors: []string{MsgUnsupportedFormat}}, result)

	result, err = imp.Import(context.Background(), csvOf(), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, &models.ImportResult{Success: false, Errors: []string{MsgNoData}}, result)

	assert.Empty(t, store.logs)
	assert.Equal(t, []recordedRun{{"unknown", "unsupported_format"}, {"SwitchBot", "no_data"}}, metrics.runs)
}

func TestImporter_Import(t *testing.T) {
	store := newFakeStore()
	imp := newTestImporter(store)

	result, err := imp.Import(context.Background(), sampleCSV, "loc-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.HourlyRecords)
	assert.Equal(t, 2, result.DailyRecords)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, []string{}, result.Errors)
	assert.Equal(t, models.DateRange{From: "2024-06-01", To: "2024-06-02"}, result.DateRange)

	ten := store.logs[logKey("loc-1", at(1, 10, 0))]
	assert.Equal(t, 21.0, *ten.Temperature)
	assert.Equal(t, 52.0, *ten.Humidity)
	assert.Equal(t, models.SourceSwitchBotCSV, ten.Source)
	assert.NotEmpty(t, ten.ID)
	assert.Nil(t, store.logs[logKey("loc-1", at(1, 11, 0))].Humidity)
}

func TestImporter_AtomicOnStorageFailure(t *testing.T) {
	store := newFakeStore()
	store.failAfter = 4 // three hourly inserts succeed, the first daily write fails
	metrics := &fakeMetrics{}
	imp := newTestImporter(store, WithMetrics(metrics))

	result, err := imp.Import(context.Background(), sampleCSV, "loc-1")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, err.Error(), MsgImportFailed)
	assert.Empty(t, store.logs)
	assert.Empty(t, store.summaries)
	assert.Equal(t, []recordedRun{{"SwitchBot", "error"}}, metrics.runs)
}

func TestImporter_RoundTripIdempotence(t *testing.T) {
	store := newFakeStore()
	imp := newTestImporter(store)
	ctx := context.Background()

	first, err := imp.Import(ctx, sampleCSV, "loc-1")
	require.NoError(t, err)
	daysBefore := store.summaries

	second, err := imp.Import(ctx, sampleCSV, "loc-1")
	require.NoError(t, err)

	assert.Equal(t, 0, second.HourlyRecords)
	assert.Equal(t, first.HourlyRecords, second.Skipped)
	assert.Equal(t, first.DailyRecords, second.DailyRecords)
	assert.Len(t, store.logs, 3)
	require.Len(t, store.summaries, 2)
	for k, before := range daysBefore {
		after := store.summaries[k]
		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, before.TempAvg, after.TempAvg)
		assert.Equal(t, before.DataPoints, after.DataPoints)
	}
}

func TestImporter_DailyOverwrite(t *testing.T) {
	store := newFakeStore()
	imp := newTestImporter(store)
	ctx := context.Background()

	_, err := imp.Import(ctx, csvOf("2024-06-01 10:00,20.0,50,0,0"), "loc-1")
	require.NoError(t, err)
	original := store.summaries["loc-1|2024-06-01"]
	assert.Equal(t, 20.0, original.TempAvg)

	result, err := imp.Import(ctx, csvOf("2024-06-01 12:00,22.0,,0,0"), "loc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.DailyRecords)

	require.Len(t, store.summaries, 1)
	replaced := store.summaries["loc-1|2024-06-01"]
	assert.Equal(t, 22.0, replaced.TempAvg)
	assert.Equal(t, original.ID, replaced.ID)
	assert.Equal(t, original.CreatedAt, replaced.CreatedAt)
	assert.Nil(t, replaced.HumidityAvg, "overwrite replaces every value")
}

func TestImporter_SQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, sqlrepo.NewLocationRepository(db).Create(ctx, &models.Location{
		ID: "loc-1", Name: "Greenhouse", CreatedAt: now, UpdatedAt: now,
	}))
	repo := sqlrepo.NewEnvironmentRepository(db)
	imp := NewImporter(DefaultRegistry(tokyo), repo)

	first, err := imp.Import(ctx, sampleCSV, "loc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, first.HourlyRecords)

	second, err := imp.Import(ctx, sampleCSV, "loc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.HourlyRecords)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 2, second.DailyRecords)

	logs, err := repo.ListLogs(ctx, "loc-1", models.EnvironmentFilters{})
	require.NoError(t, err)
	assert.Len(t, logs, 3)

	_, err = imp.Import(ctx, csvOf("2024-06-01 23:00,40.0,,0,0"), "loc-1")
	require.NoError(t, err)
	days, err := repo.ListDailySummaries(ctx, "loc-1", "", "")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-06-01", days[0].Date)
	assert.Equal(t, 40.0, days[0].TempAvg)
	assert.Equal(t, 1, days[0].DataPoints)
}

func TestImporter_SQLiteUnknownLocationRollsBack(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := sqlrepo.NewEnvironmentRepository(db)
	imp := NewImporter(DefaultRegistry(tokyo), repo)

	_, err := imp.Import(ctx, sampleCSV, "missing")
	assert.Error(t, err)

	logs, err := repo.ListLogs(ctx, "missing", models.EnvironmentFilters{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
