package database

import (
	"context"
	"database/sql"
	"fmt"

	sqldb "github.com/docman-dev/docman/internal/database/sqlc"
	"github.com/docman-dev/docman/internal/docman"
)

type OperationRepository struct {
	ctx *Context
}

func NewOperationRepository(dbCtx *Context) *OperationRepository {
	return &OperationRepository{ctx: dbCtx}
}

func (r *OperationRepository) FindByID(ctx context.Context, id int64) (*OperationRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("operation repository: missing database context")
	}

	row, err := queries.FindOperationByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := OperationRecordFromRow(row)
	return &record, nil
}

func (r *OperationRepository) FindPendingByCopy(ctx context.Context, copyID int64) (*OperationRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("operation repository: missing database context")
	}

	row, err := queries.FindPendingOperationByCopy(ctx, copyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := OperationRecordFromRow(row)
	return &record, nil
}

// ListPendingByRepository returns pending operations ordered by the current
// file path of their copy.
func (r *OperationRepository) ListPendingByRepository(ctx context.Context, repositoryPath string) ([]PendingOperation, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("operation repository: missing database context")
	}

	rows, err := queries.ListPendingOperationsByRepository(ctx, repositoryPath)
	if err != nil {
		return nil, err
	}

	result := make([]PendingOperation, 0, len(rows))
	for _, row := range rows {
		result = append(result, PendingOperationFromRow(row))
	}
	return result, nil
}

// ListAccepted returns up to limit accepted operations from the repository,
// preferring those generated under promptHash.
func (r *OperationRepository) ListAccepted(ctx context.Context, repositoryPath, promptHash string, limit int) ([]OperationRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("operation repository: missing database context")
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := queries.ListOperationsByStatusAndPromptHash(ctx, sqldb.ListOperationsByStatusAndPromptHashParams{
		Status:         string(docman.OperationAccepted),
		PromptHash:     promptHash,
		RepositoryPath: repositoryPath,
		Limit:          int64(limit),
	})
	if err != nil {
		return nil, err
	}

	if len(rows) < limit {
		recent, err := queries.ListRecentOperationsByStatus(ctx, sqldb.ListRecentOperationsByStatusParams{
			Status:         string(docman.OperationAccepted),
			RepositoryPath: repositoryPath,
			Limit:          int64(limit),
		})
		if err != nil {
			return nil, err
		}
		seen := make(map[int64]struct{}, len(rows))
		for _, row := range rows {
			seen[row.ID] = struct{}{}
		}
		for _, row := range recent {
			if len(rows) >= limit {
				break
			}
			if _, ok := seen[row.ID]; ok {
				continue
			}
			rows = append(rows, row)
		}
	}

	result := make([]OperationRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, OperationRecordFromRow(row))
	}
	return result, nil
}

func (r *OperationRepository) CountByStatus(ctx context.Context, repositoryPath string) ([]StatusCount, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("operation repository: missing database context")
	}

	rows, err := queries.CountOperationsByStatus(ctx, repositoryPath)
	if err != nil {
		return nil, err
	}

	result := make([]StatusCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, StatusCount{Status: row.Status, Count: row.Count})
	}
	return result, nil
}
