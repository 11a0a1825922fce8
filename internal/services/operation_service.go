package services

import (
	"context"
	"database/sql"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/database"
	sqldb "github.com/docman-dev/docman/internal/database/sqlc"
	"github.com/docman-dev/docman/internal/docman"
)

// OperationService owns the suggestion lifecycle of copies.
type OperationService struct {
	ctx *database.Context
}

// NewOperationService creates a new OperationService.
func NewOperationService(ctx *database.Context) *OperationService {
	return &OperationService{ctx: ctx}
}

// EnsureOutcome is the decision Ensure took for one copy.
type EnsureOutcome struct {
	Result docman.EnsureResult
	// Reason names the fingerprint component that invalidated the stored
	// operation. It is empty unless Result is EnsureStale.
	Reason string
	// StatusReset is set when an organized or ignored copy went back to unorganized.
	StatusReset bool
	// Pending is the still-valid operation when Result is EnsureFresh.
	Pending *database.OperationRecord
}

// Ensure checks whether copyID has a pending operation that still matches
// current and tells the caller whether a new suggestion is required.
//
// Organized and ignored copies are skipped unless reprocess is set. When
// reprocessing such a copy without a pending operation, its most recent
// decided operation is the reference: if that reference is outdated, or
// there is none, the copy is reset to unorganized.
func (s *OperationService) Ensure(ctx context.Context, copyID int64, current docman.Fingerprint, reprocess bool) (EnsureOutcome, error) {
	var out EnsureOutcome
	err := withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		out = EnsureOutcome{}

		c, err := findCopy(txCtx, q, copyID)
		if err != nil {
			return err
		}
		if c.Status.Excluded() && !reprocess {
			out.Result = docman.EnsureSkipped
			return nil
		}

		row, err := q.FindPendingOperationByCopy(txCtx, copyID)
		switch {
		case err == nil:
			pending := database.OperationRecordFromRow(row)
			if pending.Fingerprint.Equal(current) {
				out.Result = docman.EnsureFresh
				out.Pending = &pending
				return nil
			}
			if _, err := q.DeletePendingOperationByCopy(txCtx, copyID); err != nil {
				return errors.Wrapf(err, "delete stale operation of copy %d", copyID)
			}
			out.Result = docman.EnsureStale
			out.Reason = pending.Fingerprint.Diff(current)
		case errors.Is(err, sql.ErrNoRows):
			out.Result = docman.EnsureMissing
			if c.Status.Excluded() {
				reason, err := historicalDiff(txCtx, q, copyID, current)
				if err != nil {
					return err
				}
				if reason != "" {
					out.Result = docman.EnsureStale
					out.Reason = reason
				}
			}
		default:
			return errors.Wrapf(err, "find pending operation of copy %d", copyID)
		}

		if c.Status.Excluded() && out.Result == docman.EnsureStale {
			if _, err := q.UpdateCopyStatus(txCtx, copyID, string(docman.StatusUnorganized)); err != nil {
				return errors.Wrapf(err, "reset status of copy %d", copyID)
			}
			out.StatusReset = true
		}
		return nil
	})
	if err != nil {
		return EnsureOutcome{}, err
	}
	return out, nil
}

// historicalDiff compares current against the latest decided operation of
// the copy. A copy without history cannot be proven fresh.
func historicalDiff(ctx context.Context, q *sqldb.Queries, copyID int64, current docman.Fingerprint) (string, error) {
	row, err := q.FindLatestHistoricalOperationByCopy(ctx, copyID)
	switch {
	case err == nil:
		return database.OperationRecordFromRow(row).Fingerprint.Diff(current), nil
	case errors.Is(err, sql.ErrNoRows):
		return "no previous suggestion", nil
	default:
		return "", errors.Wrapf(err, "find history of copy %d", copyID)
	}
}

// Record stores a new pending operation for copyID. Any pending row left for
// the copy is deleted first, in the same transaction.
func (s *OperationService) Record(ctx context.Context, copyID int64, suggestion docman.Suggestion, fp docman.Fingerprint) (database.OperationRecord, error) {
	var record database.OperationRecord
	err := withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		c, err := findCopy(txCtx, q, copyID)
		if err != nil {
			return err
		}

		if _, err := q.DeletePendingOperationByCopy(txCtx, copyID); err != nil {
			return errors.Wrapf(err, "delete pending operation of copy %d", copyID)
		}

		res, err := q.InsertOperation(txCtx, database.InsertOperationParams(c, suggestion, fp))
		if err != nil {
			return errors.Wrapf(err, "insert operation for copy %d", copyID)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "read operation id")
		}

		row, err := q.FindOperationByID(txCtx, id)
		if err != nil {
			return errors.Wrapf(err, "reload operation %d", id)
		}
		record = database.OperationRecordFromRow(row)
		return nil
	})
	if err != nil {
		return database.OperationRecord{}, err
	}
	return record, nil
}

// DeletePending removes the pending operation of copyID, if any.
func (s *OperationService) DeletePending(ctx context.Context, copyID int64) (bool, error) {
	q, err := queries(s.ctx)
	if err != nil {
		return false, err
	}
	affected, err := q.DeletePendingOperationByCopy(ctx, copyID)
	if err != nil {
		return false, errors.Wrapf(err, "delete pending operation of copy %d", copyID)
	}
	return affected > 0, nil
}

// Accept marks the pending operation accepted and the copy organized at
// finalPath. The caller has already moved the file; finalPath may differ from
// the suggestion when the mover renamed it.
func (s *OperationService) Accept(ctx context.Context, operationID int64, finalPath string) (database.CopyRecord, error) {
	var moved database.CopyRecord
	err := withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		op, err := findPendingOperation(txCtx, q, operationID)
		if err != nil {
			return err
		}

		if _, err := q.UpdateOperationStatus(txCtx, op.ID, string(docman.OperationAccepted)); err != nil {
			return errors.Wrapf(err, "accept operation %d", op.ID)
		}
		if err := q.MarkCopyOrganized(txCtx, sqldb.MarkCopyOrganizedParams{
			ID:                  *op.CopyID,
			AcceptedOperationID: op.ID,
			FilePath:            finalPath,
		}); err != nil {
			return errors.Wrapf(err, "mark copy %d organized", *op.CopyID)
		}

		moved, err = findCopy(txCtx, q, *op.CopyID)
		return err
	})
	if err != nil {
		return database.CopyRecord{}, err
	}
	return moved, nil
}

// Reject marks the pending operation rejected. The copy's status is kept so
// the next plan proposes again.
func (s *OperationService) Reject(ctx context.Context, operationID int64) error {
	return withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		op, err := findPendingOperation(txCtx, q, operationID)
		if err != nil {
			return err
		}
		if _, err := q.UpdateOperationStatus(txCtx, op.ID, string(docman.OperationRejected)); err != nil {
			return errors.Wrapf(err, "reject operation %d", op.ID)
		}
		return nil
	})
}

// Unmark sets the copy unorganized and deletes its pending operation.
func (s *OperationService) Unmark(ctx context.Context, copyID int64) error {
	return s.setStatus(ctx, copyID, docman.StatusUnorganized)
}

// Ignore sets the copy ignored and deletes its pending operation.
func (s *OperationService) Ignore(ctx context.Context, copyID int64) error {
	return s.setStatus(ctx, copyID, docman.StatusIgnored)
}

func (s *OperationService) setStatus(ctx context.Context, copyID int64, status docman.OrganizationStatus) error {
	return withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		affected, err := q.UpdateCopyStatus(txCtx, copyID, string(status))
		if err != nil {
			return errors.Wrapf(err, "set copy %d %s", copyID, status)
		}
		if affected == 0 {
			return errors.Wrapf(ErrCopyNotFound, "copy %d", copyID)
		}
		if _, err := q.DeletePendingOperationByCopy(txCtx, copyID); err != nil {
			return errors.Wrapf(err, "delete pending operation of copy %d", copyID)
		}
		return nil
	})
}

func findCopy(ctx context.Context, q *sqldb.Queries, copyID int64) (database.CopyRecord, error) {
	row, err := q.FindCopyByID(ctx, copyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.CopyRecord{}, errors.Wrapf(ErrCopyNotFound, "copy %d", copyID)
		}
		return database.CopyRecord{}, errors.Wrapf(err, "find copy %d", copyID)
	}
	return database.CopyRecordFromRow(row), nil
}

func findPendingOperation(ctx context.Context, q *sqldb.Queries, operationID int64) (database.OperationRecord, error) {
	row, err := q.FindOperationByID(ctx, operationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.OperationRecord{}, errors.Wrapf(ErrOperationNotFound, "operation %d", operationID)
		}
		return database.OperationRecord{}, errors.Wrapf(err, "find operation %d", operationID)
	}

	op := database.OperationRecordFromRow(row)
	if op.Status != docman.OperationPending {
		return database.OperationRecord{}, errors.Wrapf(ErrNotPending, "operation %d is %s", op.ID, op.Status)
	}
	if op.CopyID == nil {
		return database.OperationRecord{}, errors.Wrapf(ErrDetachedOperation, "operation %d", op.ID)
	}
	return op, nil
}
