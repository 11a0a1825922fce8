package usecase

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/docman-dev/docman/internal/analyzer"
	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/docman"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/services"
)

// ApplyOutcome is what happened when a pending operation was applied.
type ApplyOutcome string

const (
	OutcomeApplied  ApplyOutcome = "applied"
	OutcomeInPlace  ApplyOutcome = "already in place"
	OutcomePlanned  ApplyOutcome = "would move"
	OutcomeConflict ApplyOutcome = "conflict"
	OutcomeInvalid  ApplyOutcome = "invalid path"
	OutcomeMissing  ApplyOutcome = "missing"
	OutcomeFailed   ApplyOutcome = "failed"
)

// ApplyResult reports one applied operation.
type ApplyResult struct {
	OperationID int64
	Source      string
	Target      string
	Outcome     ApplyOutcome
	// Rejected is set when an invalid suggestion was rejected automatically.
	Rejected bool
	Err      error
}

// ApplyOptions controls how pending operations are applied.
type ApplyOptions struct {
	Policy filesystem.ConflictPolicy
	DryRun bool
}

// PendingItem is a pending operation with review annotations.
type PendingItem struct {
	database.PendingOperation
	// Conflict is set when another pending operation targets the same path.
	Conflict bool
	// Warning is set when the target does not follow the folder definitions.
	Warning string
}

// PendingReport lists the pending operations of a target.
type PendingReport struct {
	Items     []PendingItem
	Conflicts []analyzer.ConflictGroup
}

// Reviewer applies and rejects pending operations.
type Reviewer struct {
	ops      *services.OperationService
	copies   *services.CopyService
	opRepo   *database.OperationRepository
	copyRepo *database.CopyRepository
	opts     options
}

// NewReviewer creates a Reviewer.
func NewReviewer(dbCtx *database.Context, opts ...Option) *Reviewer {
	return &Reviewer{
		ops:      services.NewOperationService(dbCtx),
		copies:   services.NewCopyService(dbCtx),
		opRepo:   database.NewOperationRepository(dbCtx),
		copyRepo: database.NewCopyRepository(dbCtx),
		opts:     buildOptions("reviewer", opts),
	}
}

// Pending lists the pending operations of target in path order and flags
// conflicting and misaligned targets.
func (r *Reviewer) Pending(ctx context.Context, target Target) (PendingReport, error) {
	all, err := r.opRepo.ListPendingByRepository(ctx, target.Root)
	if err != nil {
		return PendingReport{}, errors.Wrap(err, "list pending operations")
	}
	ops := target.filterPending(all)

	cfg, err := r.opts.loadConfig(target.Root)
	if err != nil {
		return PendingReport{}, err
	}

	report := PendingReport{Conflicts: analyzer.DetectTargetConflicts(ops)}
	conflicting := analyzer.ConflictingOperationIDs(report.Conflicts)
	report.Items = make([]PendingItem, 0, len(ops))
	for _, op := range ops {
		item := PendingItem{PendingOperation: op}
		_, item.Conflict = conflicting[op.Operation.ID]
		if ok, warning := cfg.CheckAlignment(op.Operation.Suggestion.DirectoryPath); !ok {
			item.Warning = warning
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// ApplyAll applies every pending operation of target in path order.
// Operations with an unsafe target are rejected. Conflicts and missing
// files are reported per operation and do not stop the run.
func (r *Reviewer) ApplyAll(ctx context.Context, target Target, opts ApplyOptions) ([]ApplyResult, error) {
	all, err := r.opRepo.ListPendingByRepository(ctx, target.Root)
	if err != nil {
		return nil, errors.Wrap(err, "list pending operations")
	}

	var results []ApplyResult
	for _, op := range target.filterPending(all) {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.apply(ctx, target.Root, op, opts, true)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Accept applies a single pending operation of the repository at root.
func (r *Reviewer) Accept(ctx context.Context, root string, operationID int64, opts ApplyOptions) (ApplyResult, error) {
	res := ApplyResult{OperationID: operationID}

	item, err := r.lookup(ctx, root, operationID)
	if err != nil {
		if isMissing(err) {
			res.Outcome, res.Err = OutcomeMissing, err
			r.opts.logger.Warn("accept", zap.Int64("operation_id", operationID), zap.Error(err))
			return res, nil
		}
		return res, err
	}
	return r.apply(ctx, root, item, opts, false)
}

// Reject rejects a single pending operation of the repository at root.
func (r *Reviewer) Reject(ctx context.Context, root string, operationID int64) error {
	if _, err := r.lookup(ctx, root, operationID); err != nil {
		return err
	}
	return r.ops.Reject(ctx, operationID)
}

// RejectAll rejects every pending operation of target and returns them.
func (r *Reviewer) RejectAll(ctx context.Context, target Target, dryRun bool) ([]database.PendingOperation, error) {
	all, err := r.opRepo.ListPendingByRepository(ctx, target.Root)
	if err != nil {
		return nil, errors.Wrap(err, "list pending operations")
	}
	ops := target.filterPending(all)
	if dryRun {
		return ops, nil
	}

	rejected := make([]database.PendingOperation, 0, len(ops))
	for _, op := range ops {
		if err := r.ops.Reject(ctx, op.Operation.ID); err != nil {
			if isMissing(err) {
				r.opts.logger.Warn("reject", zap.Int64("operation_id", op.Operation.ID), zap.Error(err))
				continue
			}
			return rejected, err
		}
		rejected = append(rejected, op)
	}
	return rejected, nil
}

func (r *Reviewer) lookup(ctx context.Context, root string, operationID int64) (database.PendingOperation, error) {
	op, err := r.opRepo.FindByID(ctx, operationID)
	if err != nil {
		return database.PendingOperation{}, errors.Wrapf(err, "find operation %d", operationID)
	}
	if op == nil {
		return database.PendingOperation{}, errors.Wrapf(services.ErrOperationNotFound, "operation %d", operationID)
	}
	if op.Status != docman.OperationPending {
		return database.PendingOperation{}, errors.Wrapf(services.ErrNotPending, "operation %d is %s", operationID, op.Status)
	}
	if op.CopyID == nil {
		return database.PendingOperation{}, errors.Wrapf(services.ErrDetachedOperation, "operation %d", operationID)
	}

	c, err := r.copyRepo.FindByID(ctx, *op.CopyID)
	if err != nil {
		return database.PendingOperation{}, errors.Wrapf(err, "find copy %d", *op.CopyID)
	}
	if c == nil {
		return database.PendingOperation{}, errors.Wrapf(services.ErrCopyNotFound, "copy %d", *op.CopyID)
	}
	if c.RepositoryPath != root {
		return database.PendingOperation{}, errors.Errorf("operation %d belongs to repository %s", operationID, c.RepositoryPath)
	}
	return database.PendingOperation{Operation: *op, RepositoryPath: c.RepositoryPath, FilePath: c.FilePath}, nil
}

func (r *Reviewer) apply(ctx context.Context, root string, item database.PendingOperation, opts ApplyOptions, autoReject bool) (ApplyResult, error) {
	op := item.Operation
	res := ApplyResult{OperationID: op.ID, Source: item.FilePath}
	logger := r.opts.logger.With(zap.Int64("operation_id", op.ID), zap.String("path", item.FilePath))

	rel, err := filesystem.ValidateTarget(root, op.Suggestion.DirectoryPath, op.Suggestion.Filename)
	if err != nil {
		res.Outcome, res.Err = OutcomeInvalid, err
		res.Target = op.Suggestion.TargetPath()
		logger.Warn("invalid target", zap.Error(err))
		if autoReject && !opts.DryRun {
			if err := r.ops.Reject(ctx, op.ID); err != nil && !isMissing(err) {
				return res, err
			}
			res.Rejected = true
		}
		return res, nil
	}
	res.Target = rel

	if opts.DryRun {
		res.Outcome = OutcomePlanned
		if rel == item.FilePath {
			res.Outcome = OutcomeInPlace
		}
		return res, nil
	}

	final, err := filesystem.MoveFile(
		filesystem.FromRelative(root, item.FilePath),
		filesystem.FromRelative(root, rel),
		opts.Policy,
	)
	if err != nil {
		var conflict *filesystem.FileConflictError
		switch {
		case errors.As(err, &conflict):
			res.Outcome = OutcomeConflict
		case errors.Is(err, filesystem.ErrSourceNotFound):
			res.Outcome = OutcomeMissing
		default:
			res.Outcome = OutcomeFailed
		}
		res.Err = err
		logger.Warn("move file", zap.String("target", rel), zap.Error(err))
		return res, nil
	}

	finalRel, err := filesystem.ToRelative(root, final)
	if err != nil {
		return res, err
	}
	res.Target = finalRel

	if finalRel != item.FilePath {
		if err := r.dropReplaced(ctx, root, finalRel, *op.CopyID); err != nil {
			return res, err
		}
	}

	if _, err := r.ops.Accept(ctx, op.ID, finalRel); err != nil {
		if isMissing(err) {
			res.Outcome, res.Err = OutcomeMissing, err
			logger.Warn("accept", zap.Error(err))
			return res, nil
		}
		return res, err
	}

	res.Outcome = OutcomeApplied
	if finalRel == item.FilePath {
		res.Outcome = OutcomeInPlace
	}
	logger.Info("applied operation", zap.String("target", finalRel))
	return res, nil
}

// dropReplaced deletes the copy that tracked a file overwritten at rel.
func (r *Reviewer) dropReplaced(ctx context.Context, root, rel string, movedCopyID int64) error {
	other, err := r.copyRepo.FindByLocation(ctx, root, rel)
	if err != nil {
		return errors.Wrapf(err, "find copy at %s", rel)
	}
	if other == nil || other.ID == movedCopyID {
		return nil
	}
	if _, err := r.copies.Delete(ctx, other.ID); err != nil {
		return err
	}
	r.opts.logger.Info("removed overwritten copy", zap.String("path", rel), zap.Int64("copy_id", other.ID))
	return nil
}

func isMissing(err error) bool {
	return errors.Is(err, services.ErrOperationNotFound) ||
		errors.Is(err, services.ErrCopyNotFound) ||
		errors.Is(err, services.ErrDetachedOperation) ||
		errors.Is(err, services.ErrNotPending)
}
