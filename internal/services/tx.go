// Package services implements the transactional lifecycle operations over
// documents, copies and operations.
package services

import (
	"context"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/database"
	sqldb "github.com/docman-dev/docman/internal/database/sqlc"
)

var (
	// ErrCopyNotFound is returned when a referenced copy no longer exists.
	ErrCopyNotFound = errors.New("document copy not found")
	// ErrOperationNotFound is returned when a referenced operation does not exist.
	ErrOperationNotFound = errors.New("operation not found")
	// ErrNotPending is returned when a decision is attempted on a non-pending operation.
	ErrNotPending = errors.New("operation is not pending")
	// ErrDetachedOperation is returned when an operation no longer points at a copy.
	ErrDetachedOperation = errors.New("operation has no document copy")
)

// withTx runs fn inside a single transaction. The transaction is rolled back
// when fn or the commit fails.
func withTx(ctx context.Context, dbCtx *database.Context, fn func(context.Context, *sqldb.Queries) error) error {
	if dbCtx == nil || dbCtx.DB == nil {
		return errors.New("services: missing database context")
	}

	tx, err := dbCtx.DB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if err := fn(ctx, sqldb.New(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func queries(dbCtx *database.Context) (*sqldb.Queries, error) {
	if dbCtx == nil {
		return nil, errors.New("services: missing database context")
	}
	if dbCtx.Queries == nil {
		if dbCtx.DB == nil {
			return nil, errors.New("services: database handle not initialised")
		}
		dbCtx.Queries = sqldb.New(dbCtx.DB)
	}
	return dbCtx.Queries, nil
}

// deleteCopy removes a copy and keeps the history of its decided operations.
// The pending operation is deleted, accepted and rejected operations are
// detached, and only then is the copy row removed.
func deleteCopy(ctx context.Context, q *sqldb.Queries, copyID int64) (bool, error) {
	if _, err := q.DeletePendingOperationByCopy(ctx, copyID); err != nil {
		return false, errors.Wrapf(err, "delete pending operation of copy %d", copyID)
	}
	if _, err := q.DetachHistoricalOperations(ctx, copyID); err != nil {
		return false, errors.Wrapf(err, "detach operations of copy %d", copyID)
	}
	affected, err := q.DeleteCopyByID(ctx, copyID)
	if err != nil {
		return false, errors.Wrapf(err, "delete copy %d", copyID)
	}
	return affected > 0, nil
}
