package sqlrepo

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/plalog/plalog/server/hub/internal/database"
	"github.com/plalog/plalog/server/hub/internal/errors"
	"github.com/plalog/plalog/server/hub/internal/models"
)

type LocationRepo struct {
	BaseRepo
}

func NewLocationRepository(db database.DB) *LocationRepo {
	return &LocationRepo{BaseRepo: BaseRepo{db: db}}
}

func (r *LocationRepo) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, name, description, created_at, updated_at)
		VALUES (:id, :name, :description, :created_at, :updated_at)`

	row := *location
	row.CreatedAt = row.CreatedAt.UTC()
	row.UpdatedAt = row.UpdatedAt.UTC()
	if _, err := r.db.GetDB().NamedExecContext(ctx, query, &row); err != nil {
		return errors.NewDatabaseError("failed to create location", err)
	}
	return nil
}

func (r *LocationRepo) Get(ctx context.Context, id string) (*models.Location, error) {
	location := &models.Location{}
	query := r.db.GetDB().Rebind(`SELECT * FROM locations WHERE id = ?`)

	err := r.db.GetDB().GetContext(ctx, location, query, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("location not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get location", err)
	}
	normalizeLocation(location)
	return location, nil
}

func (r *LocationRepo) Update(ctx context.Context, location *models.Location) error {
	query := `
		UPDATE locations SET
			name = :name,
			description = :description,
			updated_at = :updated_at
		WHERE id = :id`

	row := *location
	row.UpdatedAt = row.UpdatedAt.UTC()
	result, err := r.db.GetDB().NamedExecContext(ctx, query, &row)
	if err != nil {
		return errors.NewDatabaseError("failed to update location", err)
	}
	return expectOneRow(result, "location not found")
}

func (r *LocationRepo) List(ctx context.Context, offset, limit int) ([]*models.Location, error) {
	locations := []*models.Location{}
	query := r.db.GetDB().Rebind(`SELECT * FROM locations ORDER BY name, created_at LIMIT ? OFFSET ?`)

	if err := r.db.GetDB().SelectContext(ctx, &locations, query, limit, offset); err != nil {
		return nil, errors.NewDatabaseError("failed to list locations", err)
	}
	for _, l := range locations {
		normalizeLocation(l)
	}
	return locations, nil
}

func (r *LocationRepo) Delete(ctx context.Context, id string, tx database.Transaction) error {
	q := r.q(tx)
	result, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM locations WHERE id = ?`), id)
	if err != nil {
		return errors.NewDatabaseError("failed to delete location", err)
	}
	return expectOneRow(result, "location not found")
}

func expectOneRow(result sql.Result, notFoundMsg string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError(notFoundMsg, nil)
	}
	return nil
}

func normalizeLocation(l *models.Location) {
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
}
