package sqlrepo

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/plalog/plalog/server/hub/internal/database"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/plalog/plalog/server/hub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// EnvironmentRepo stores hourly environment logs and daily summaries
type EnvironmentRepo struct {
	BaseRepo
}

func NewEnvironmentRepository(db database.DB) *EnvironmentRepo {
	return &EnvironmentRepo{BaseRepo: BaseRepo{db: db}}
}

// CreateLog inserts a manually entered log. A second log for the same location and timestamp is a conflict.
func (r *EnvironmentRepo) CreateLog(ctx context.Context, log *models.EnvironmentLog) error {
	return r.RunInTx(ctx, func(ctx context.Context, tx repository.EnvironmentTx) error {
		exists, err := tx.HasLogAt(ctx, log.LocationID, log.Timestamp)
		if err != nil {
			return err
		}
		if exists {
			return errors.NewConflictError("a log already exists for this time", repository.ErrDuplicate)
		}
		return tx.InsertLog(ctx, log)
	})
}

func (r *EnvironmentRepo) GetLog(ctx context.Context, id string) (*models.EnvironmentLog, error) {
	log := &models.EnvironmentLog{}
	db := r.db.GetDB()

	err := db.GetContext(ctx, log, db.Rebind(`SELECT * FROM environment_logs WHERE id = ?`), id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("environment log not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get environment log", err)
	}
	normalizeLog(log)
	return log, nil
}

// ListLogs returns logs newest first
func (r *EnvironmentRepo) ListLogs(ctx context.Context, locationID string, filters models.EnvironmentFilters) ([]*models.EnvironmentLog, error) {
	filters.Normalize()
	query := `SELECT * FROM environment_logs WHERE location_id = ?`
	args := []interface{}{locationID}
	if !filters.From.IsZero() {
		query += ` AND recorded_at >= ?`
		args = append(args, filters.From.UTC())
	}
	if !filters.To.IsZero() {
		query += ` AND recorded_at <= ?`
		args = append(args, filters.To.UTC())
	}
	query += ` ORDER BY recorded_at DESC LIMIT ?`
	args = append(args, filters.Limit)

	logs := []*models.EnvironmentLog{}
	db := r.db.GetDB()
	if err := db.SelectContext(ctx, &logs, db.Rebind(query), args...); err != nil {
		return nil, errors.NewDatabaseError("failed to list environment logs", err)
	}
	for _, l := range logs {
		normalizeLog(l)
	}
	return logs, nil
}

func (r *EnvironmentRepo) LatestLog(ctx context.Context, locationID string) (*models.EnvironmentLog, error) {
	logs, err := r.ListLogs(ctx, locationID, models.EnvironmentFilters{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, errors.NewNotFoundError("no environment logs for location", repository.ErrNotFound)
	}
	return logs[0], nil
}

func (r *EnvironmentRepo) DeleteLog(ctx context.Context, id string) error {
	db := r.db.GetDB()
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM environment_logs WHERE id = ?`), id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete environment log", err)
	}
	return expectOneRow(result, "environment log not found")
}

// ListDailySummaries returns summaries in ascending date order. Empty bounds are open.
func (r *EnvironmentRepo) ListDailySummaries(ctx context.Context, locationID string, from, to string) ([]*models.DailyEnvironmentSummary, error) {
	query := `SELECT * FROM daily_environment_summaries WHERE location_id = ?`
	args := []interface{}{locationID}
	if from != "" {
		query += ` AND summary_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND summary_date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY summary_date ASC`

	summaries := []*models.DailyEnvironmentSummary{}
	db := r.db.GetDB()
	if err := db.SelectContext(ctx, &summaries, db.Rebind(query), args...); err != nil {
		return nil, errors.NewDatabaseError("failed to list daily summaries", err)
	}
	for _, s := range summaries {
		normalizeSummary(s)
	}
	return summaries, nil
}

// DeleteByLocation removes both series for a location
func (r *EnvironmentRepo) DeleteByLocation(ctx context.Context, locationID string, tx database.Transaction) error {
	q := r.q(tx)
	if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM environment_logs WHERE location_id = ?`), locationID); err != nil {
		return errors.NewDatabaseError("failed to delete environment logs", err)
	}
	if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM daily_environment_summaries WHERE location_id = ?`), locationID); err != nil {
		return errors.NewDatabaseError("failed to delete daily summaries", err)
	}
	return nil
}

func (r *EnvironmentRepo) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.EnvironmentTx) error) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &environmentTx{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			nuts.L.Warnf("[EnvironmentRepo] Rollback failed: %v", rbErr)
		}
		return err
	}
	return r.Commit(tx)
}

// environmentTx runs every statement on the enclosing transaction
type environmentTx struct {
	q database.Queryer
}

func (t *environmentTx) HasLogAt(ctx context.Context, locationID string, timestamp time.Time) (bool, error) {
	var count int
	query := t.q.Rebind(`SELECT COUNT(*) FROM environment_logs WHERE location_id = ? AND recorded_at = ?`)
	if err := t.q.GetContext(ctx, &count, query, locationID, timestamp.UTC()); err != nil {
		return false, errors.NewDatabaseError("failed to look up environment log", err)
	}
	return count > 0, nil
}

func (t *environmentTx) InsertLog(ctx context.Context, log *models.EnvironmentLog) error {
	query := `
		INSERT INTO environment_logs (
			id, location_id, recorded_at, temperature, humidity,
			source, notes, created_at, updated_at
		) VALUES (
			:id, :location_id, :recorded_at, :temperature, :humidity,
			:source, :notes, :created_at, :updated_at
		)`

	row := *log
	row.Timestamp = row.Timestamp.UTC()
	row.CreatedAt = row.CreatedAt.UTC()
	row.UpdatedAt = row.UpdatedAt.UTC()
	if _, err := t.q.NamedExecContext(ctx, query, &row); err != nil {
		return errors.NewDatabaseError("failed to insert environment log", err)
	}
	return nil
}

func (t *environmentTx) FindDailySummary(ctx context.Context, locationID, date string) (*models.DailyEnvironmentSummary, error) {
	summary := &models.DailyEnvironmentSummary{}
	query := t.q.Rebind(`SELECT * FROM daily_environment_summaries WHERE location_id = ? AND summary_date = ?`)

	err := t.q.GetContext(ctx, summary, query, locationID, date)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.NewDatabaseError("failed to look up daily summary", err)
	}
	normalizeSummary(summary)
	return summary, nil
}

func (t *environmentTx) InsertDailySummary(ctx context.Context, summary *models.DailyEnvironmentSummary) error {
	query := `
		INSERT INTO daily_environment_summaries (
			id, location_id, summary_date, temp_max, temp_min, temp_avg,
			humidity_max, humidity_min, humidity_avg, data_points,
			source, created_at, updated_at
		) VALUES (
			:id, :location_id, :summary_date, :temp_max, :temp_min, :temp_avg,
			:humidity_max, :humidity_min, :humidity_avg, :data_points,
			:source, :created_at, :updated_at
		)`

	row := *summary
	row.CreatedAt = row.CreatedAt.UTC()
	row.UpdatedAt = row.UpdatedAt.UTC()
	if _, err := t.q.NamedExecContext(ctx, query, &row); err != nil {
		return errors.NewDatabaseError("failed to insert daily summary", err)
	}
	return nil
}

// ReplaceDailySummary overwrites every value column of the row with summary.ID
func (t *environmentTx) ReplaceDailySummary(ctx context.Context, summary *models.DailyEnvironmentSummary) error {
	query := `
		UPDATE daily_environment_summaries SET
			location_id = :location_id,
			summary_date = :summary_date,
			temp_max = :temp_max,
			temp_min = :temp_min,
			temp_avg = :temp_avg,
			humidity_max = :humidity_max,
			humidity_min = :humidity_min,
			humidity_avg = :humidity_avg,
			data_points = :data_points,
			source = :source,
			created_at = :created_at,
			updated_at = :updated_at
		WHERE id = :id`

	row := *summary
	row.CreatedAt = row.CreatedAt.UTC()
	row.UpdatedAt = row.UpdatedAt.UTC()
	result, err := t.q.NamedExecContext(ctx, query, &row)
	if err != nil {
		return errors.NewDatabaseError("failed to replace daily summary", err)
	}
	return expectOneRow(result, "daily summary not found")
}

func normalizeLog(l *models.EnvironmentLog) {
	l.Timestamp = l.Timestamp.UTC()
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
}

func normalizeSummary(s *models.DailyEnvironmentSummary) {
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
}
