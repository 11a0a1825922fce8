package usecase

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/docman-dev/docman/internal/analyzer"
	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/filesystem"
	"github.com/docman-dev/docman/internal/services"
)

// DedupeOptions controls duplicate removal.
type DedupeOptions struct {
	DryRun  bool
	KeepAll bool
}

// DedupeResult reports one duplicate group.
type DedupeResult struct {
	Group   analyzer.DuplicateGroup
	Deleted []database.CopyRecord
	// Err is set when a file could not be removed; the rest of its group is kept.
	Err error
}

// Deduper removes redundant copies of the same document.
type Deduper struct {
	duplicates *services.DuplicateService
	copyRepo   *database.CopyRepository
	opts       options
}

// NewDeduper creates a Deduper.
func NewDeduper(dbCtx *database.Context, opts ...Option) *Deduper {
	return &Deduper{
		duplicates: services.NewDuplicateService(dbCtx),
		copyRepo:   database.NewCopyRepository(dbCtx),
		opts:       buildOptions("deduper", opts),
	}
}

// Groups returns the duplicate groups formed by the copies of target.
func (d *Deduper) Groups(ctx context.Context, target Target) ([]analyzer.DuplicateGroup, error) {
	all, err := d.copyRepo.ListByRepository(ctx, target.Root)
	if err != nil {
		return nil, errors.Wrap(err, "list copies")
	}
	return analyzer.FindDuplicateGroups(target.filterCopies(all)), nil
}

// Dedupe keeps the oldest copy of each group and removes the other files
// and their copies. A file that cannot be removed stops only its group.
func (d *Deduper) Dedupe(ctx context.Context, target Target, opts DedupeOptions) ([]DedupeResult, error) {
	groups, err := d.Groups(ctx, target)
	if err != nil {
		return nil, err
	}

	results := make([]DedupeResult, 0, len(groups))
	for _, group := range groups {
		keep := analyzer.KeepCopy(group.MinCopyID())
		if opts.KeepAll {
			keep = analyzer.KeepAll()
		}

		var fileErr error
		deleted, err := d.duplicates.Resolve(ctx, group, keep, opts.DryRun, func(c database.CopyRecord) error {
			if err := filesystem.DeleteFile(filesystem.FromRelative(target.Root, c.FilePath)); err != nil {
				fileErr = err
				return err
			}
			return nil
		})

		res := DedupeResult{Group: group, Deleted: deleted}
		if err != nil {
			if fileErr == nil {
				return results, err
			}
			res.Err = err
			d.opts.logger.Warn("remove duplicate", zap.Int64("document_id", group.DocumentID), zap.Error(err))
		}
		for _, c := range deleted {
			if !opts.DryRun {
				d.opts.logger.Info("removed duplicate", zap.String("path", c.FilePath), zap.Int64("copy_id", c.ID))
			}
		}
		results = append(results, res)
	}
	return results, nil
}
