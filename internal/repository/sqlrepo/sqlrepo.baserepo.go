package sqlrepo

import (
	"context"

	"github.com/plalog/plalog/server/hub/internal/database"
	"github.com/plalog/plalog/server/hub/internal/errors"
)

// BaseRepo carries the connection shared by all sqlx repositories
type BaseRepo struct {
	db database.DB
}

func (r *BaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to begin transaction", err)
	}
	return tx, nil
}

func (r *BaseRepo) Commit(tx database.Transaction) error {
	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit transaction", err)
	}
	return nil
}

func (r *BaseRepo) Rollback(tx database.Transaction) error {
	if err := tx.Rollback(); err != nil {
		return errors.NewDatabaseError("failed to rollback transaction", err)
	}
	return nil
}

// q returns tx when given, otherwise the pool
func (r *BaseRepo) q(tx database.Transaction) database.Queryer {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

func (r *BaseRepo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping database", err)
	}
	return nil
}
