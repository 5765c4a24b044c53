package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/plalog/plalog/server/hub/internal/repository/sqlrepo"
	"github.com/plalog/plalog/server/hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("event not emitted")
		return ""
	}
}

func TestDeleteLocation_Cascades(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	locations := sqlrepo.NewLocationRepository(db)
	environment := sqlrepo.NewEnvironmentRepository(db)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	temp := 21.0

	require.NoError(t, locations.Create(ctx, &models.Location{ID: "loc-1", Name: "Balcony", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, locations.Create(ctx, &models.Location{ID: "loc-2", Name: "Kitchen", CreatedAt: now, UpdatedAt: now}))
	for _, loc := range []string{"loc-1", "loc-2"} {
		require.NoError(t, environment.CreateLog(ctx, &models.EnvironmentLog{
			ID: "log-" + loc, LocationID: loc, Timestamp: now, Temperature: &temp,
			Source: models.SourceManual, CreatedAt: now, UpdatedAt: now,
		}))
	}

	svc := New(locations, environment)
	deleted := make(chan string, 1)
	svc.OnCleanup(EventLocationDeleted, func(id string) { deleted <- id })

	require.NoError(t, svc.DeleteLocation(ctx, "loc-1"))
	assert.Equal(t, "loc-1", waitForEvent(t, deleted))

	_, err := locations.Get(ctx, "loc-1")
	assert.True(t, errors.IsNotFound(err))
	logs, err := environment.ListLogs(ctx, "loc-1", models.EnvironmentFilters{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	logs, err = environment.ListLogs(ctx, "loc-2", models.EnvironmentFilters{})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestDeleteLocation_UnknownRollsBack(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	svc := New(sqlrepo.NewLocationRepository(db), sqlrepo.NewEnvironmentRepository(db))

	err := svc.DeleteLocation(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteEnvironmentLog(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	locations := sqlrepo.NewLocationRepository(db)
	environment := sqlrepo.NewEnvironmentRepository(db)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	temp := 21.0

	require.NoError(t, locations.Create(ctx, &models.Location{ID: "loc-1", Name: "Balcony", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, environment.CreateLog(ctx, &models.EnvironmentLog{
		ID: "log-1", LocationID: "loc-1", Timestamp: now, Temperature: &temp, CreatedAt: now, UpdatedAt: now,
	}))

	svc := New(locations, environment)
	deleted := make(chan string, 1)
	svc.OnCleanup(EventEnvironmentLogDeleted, func(id string) { deleted <- id })

	require.NoError(t, svc.DeleteEnvironmentLog(ctx, "log-1"))
	assert.Equal(t, "log-1", waitForEvent(t, deleted))
	assert.True(t, errors.IsNotFound(svc.DeleteEnvironmentLog(ctx, "log-1")))
}

func TestOnCleanup_KeepsEveryListener(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	locations := sqlrepo.NewLocationRepository(db)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, locations.Create(ctx, &models.Location{ID: "loc-1", Name: "Balcony", CreatedAt: now, UpdatedAt: now}))

	svc := New(locations, sqlrepo.NewEnvironmentRepository(db))
	first := make(chan string, 1)
	second := make(chan string, 1)
	svc.OnCleanup(EventLocationDeleted, func(id string) { first <- id })
	svc.OnCleanup(EventLocationDeleted, func(id string) { second <- id })

	require.NoError(t, svc.DeleteLocation(ctx, "loc-1"))
	assert.Equal(t, "loc-1", waitForEvent(t, first))
	assert.Equal(t, "loc-1", waitForEvent(t, second))
}
