package services

import (
	"context"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/analyzer"
	"github.com/docman-dev/docman/internal/database"
	sqldb "github.com/docman-dev/docman/internal/database/sqlc"
)

// DuplicateService removes redundant copies of a document.
type DuplicateService struct {
	ctx *database.Context
}

// NewDuplicateService creates a new DuplicateService.
func NewDuplicateService(ctx *database.Context) *DuplicateService {
	return &DuplicateService{ctx: ctx}
}

// Resolve deletes every copy of group except the ones kept by keep and
// returns the deleted copies. With dryRun it only returns the selection.
//
// beforeDelete, when set, runs for each copy ahead of its removal; an error
// from it stops the resolution and leaves that copy in place.
func (s *DuplicateService) Resolve(
	ctx context.Context,
	group analyzer.DuplicateGroup,
	keep analyzer.Keep,
	dryRun bool,
	beforeDelete func(database.CopyRecord) error,
) ([]database.CopyRecord, error) {
	selected, err := analyzer.SelectDeletions(group, keep)
	if err != nil {
		return nil, err
	}
	if dryRun || len(selected) == 0 {
		return selected, nil
	}

	deleted := make([]database.CopyRecord, 0, len(selected))
	for _, c := range selected {
		if beforeDelete != nil {
			if err := beforeDelete(c); err != nil {
				return deleted, errors.Wrapf(err, "prepare deletion of %s", c.FilePath)
			}
		}

		var removed bool
		if err := withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
			removed, err = deleteCopy(txCtx, q, c.ID)
			return err
		}); err != nil {
			return deleted, err
		}
		if removed {
			deleted = append(deleted, c)
		}
	}
	return deleted, nil
}

// ErrKeepNotInGroup is returned when the kept copy is not a group member.
var ErrKeepNotInGroup = analyzer.ErrKeepNotInGroup
