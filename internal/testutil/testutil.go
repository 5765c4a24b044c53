// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/plalog/plalog/server/hub/internal/config"
	"github.com/plalog/plalog/server/hub/internal/database"
	"github.com/plalog/plalog/server/hub/internal/repository/sqlrepo"
	"github.com/stretchr/testify/require"
)

// NewSQLiteDB returns a migrated database in t's temp dir, closed on cleanup
func NewSQLiteDB(t testing.TB) database.DB {
	t.Helper()

	db, err := database.NewSQLiteDB(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "plalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlrepo.EnsureSchema(context.Background(), db))
	return db
}
