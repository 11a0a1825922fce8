package usecase

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/docman-dev/docman/internal/database"
	"github.com/docman-dev/docman/internal/docman"
	"github.com/docman-dev/docman/internal/services"
)

// Marker changes the organization status of copies directly.
type Marker struct {
	ops      *services.OperationService
	copyRepo *database.CopyRepository
	opts     options
}

// NewMarker creates a Marker.
func NewMarker(dbCtx *database.Context, opts ...Option) *Marker {
	return &Marker{
		ops:      services.NewOperationService(dbCtx),
		copyRepo: database.NewCopyRepository(dbCtx),
		opts:     buildOptions("marker", opts),
	}
}

// Matching returns the copies of target, optionally restricted to those in
// one of statuses.
func (m *Marker) Matching(ctx context.Context, target Target, statuses ...docman.OrganizationStatus) ([]database.CopyRecord, error) {
	all, err := m.copyRepo.ListByRepository(ctx, target.Root)
	if err != nil {
		return nil, errors.Wrap(err, "list copies")
	}
	copies := target.filterCopies(all)
	if len(statuses) == 0 {
		return copies, nil
	}

	out := copies[:0]
	for _, c := range copies {
		for _, s := range statuses {
			if c.Status == s {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// Unmark sets the organized and ignored copies of target unorganized and
// drops their pending operations.
func (m *Marker) Unmark(ctx context.Context, target Target) ([]database.CopyRecord, error) {
	copies, err := m.Matching(ctx, target, docman.StatusOrganized, docman.StatusIgnored)
	if err != nil {
		return nil, err
	}
	return m.apply(ctx, copies, docman.StatusUnorganized, m.ops.Unmark)
}

// Ignore sets every copy of target ignored and drops its pending operation.
func (m *Marker) Ignore(ctx context.Context, target Target) ([]database.CopyRecord, error) {
	copies, err := m.Matching(ctx, target)
	if err != nil {
		return nil, err
	}
	return m.apply(ctx, copies, docman.StatusIgnored, m.ops.Ignore)
}

func (m *Marker) apply(
	ctx context.Context,
	copies []database.CopyRecord,
	status docman.OrganizationStatus,
	set func(context.Context, int64) error,
) ([]database.CopyRecord, error) {
	changed := make([]database.CopyRecord, 0, len(copies))
	for _, c := range copies {
		if err := set(ctx, c.ID); err != nil {
			if errors.Is(err, services.ErrCopyNotFound) {
				m.opts.logger.Warn("copy vanished", zap.String("path", c.FilePath))
				continue
			}
			return changed, err
		}
		c.Status = status
		changed = append(changed, c)
	}
	return changed, nil
}
