package sqlrepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/plalog/plalog/server/hub/internal/database"
	nuts "github.com/vaudience/go-nuts"
)

// Timestamps are stored in UTC. SQLite needs a declared TIMESTAMP type
// for the driver to scan them back into time.Time.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS locations (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	created_at  {{ts}} NOT NULL,
	updated_at  {{ts}} NOT NULL
);

CREATE TABLE IF NOT EXISTS environment_logs (
	id          TEXT PRIMARY KEY,
	location_id TEXT NOT NULL REFERENCES locations(id),
	recorded_at {{ts}} NOT NULL,
	temperature DOUBLE PRECISION,
	humidity    DOUBLE PRECISION,
	source      TEXT NOT NULL DEFAULT '',
	notes       TEXT,
	created_at  {{ts}} NOT NULL,
	updated_at  {{ts}} NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS environment_logs_location_recorded_at
	ON environment_logs (location_id, recorded_at);

CREATE TABLE IF NOT EXISTS daily_environment_summaries (
	id           TEXT PRIMARY KEY,
	location_id  TEXT NOT NULL REFERENCES locations(id),
	summary_date TEXT NOT NULL,
	temp_max     DOUBLE PRECISION NOT NULL,
	temp_min     DOUBLE PRECISION NOT NULL,
	temp_avg     DOUBLE PRECISION NOT NULL,
	humidity_max DOUBLE PRECISION,
	humidity_min DOUBLE PRECISION,
	humidity_avg DOUBLE PRECISION,
	data_points  INTEGER NOT NULL,
	source       TEXT NOT NULL,
	created_at   {{ts}} NOT NULL,
	updated_at   {{ts}} NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS daily_environment_summaries_location_date
	ON daily_environment_summaries (location_id, summary_date);
`

func schemaFor(driver string) string {
	ts := "TIMESTAMPTZ"
	if driver == database.DriverSQLite {
		ts = "TIMESTAMP"
	}
	return strings.ReplaceAll(schemaTemplate, "{{ts}}", ts)
}

// EnsureSchema creates the tables and indexes if they do not exist yet
func EnsureSchema(ctx context.Context, db database.DB) error {
	for _, stmt := range strings.Split(schemaFor(db.DriverName()), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.GetDB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	nuts.L.Infof("[Schema] Tables ready on %s", db.DriverName())
	return nil
}
