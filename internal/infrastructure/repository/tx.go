package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	domainRepo "github.com/kevmuri/bookstore-api/internal/domain/repository"
	"github.com/kevmuri/bookstore-api/pkg/apperror"
	"gorm.io/gorm"
)

type txKey struct{}

// conn returns the transaction bound to ctx if there is one, falling back to
// the base connection. Repositories route every query through this so a call
// made inside TxManager.Do joins the surrounding transaction automatically.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager backed by the given connection
func NewTxManager(db *gorm.DB) domainRepo.TxManager {
	return &txManager{db: db}
}

// Do runs fn inside a single database transaction. Application errors pass
// through untouched; driver-level failures are translated into their
// apperror kinds so callers can tell contention from corruption.
func (m *txManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return translatePgError(err)
}

// translatePgError maps PostgreSQL error codes onto the application error
// taxonomy. Serialization failures (40001), deadlocks (40P01) and lock
// timeouts (55P03) are transient: the transaction rolled back cleanly and a
// retry of the whole operation may succeed. Unique (23505), foreign key
// (23503) and check (23514) violations are conflicts the caller must resolve.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return apperror.NewTransientError("Transaction aborted due to contention, please retry")
	case "23505":
		return apperror.NewConflictError("Duplicate record: " + pgErr.ConstraintName)
	case "23503":
		return apperror.NewConflictError("Referenced record does not exist: " + pgErr.ConstraintName)
	case "23514":
		return apperror.NewConflictError("Constraint violated: " + pgErr.ConstraintName)
	}

	return err
}
