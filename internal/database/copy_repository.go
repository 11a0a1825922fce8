package database

import (
	"context"
	"database/sql"
	"fmt"

	sqldb "github.com/docman-dev/docman/internal/database/sqlc"
)

type CopyRepository struct {
	ctx *Context
}

func NewCopyRepository(dbCtx *Context) *CopyRepository {
	return &CopyRepository{ctx: dbCtx}
}

func (r *CopyRepository) FindByID(ctx context.Context, id int64) (*CopyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("copy repository: missing database context")
	}

	row, err := queries.FindCopyByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := CopyRecordFromRow(row)
	return &record, nil
}

func (r *CopyRepository) FindByLocation(ctx context.Context, repositoryPath, filePath string) (*CopyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("copy repository: missing database context")
	}

	row, err := queries.FindCopyByLocation(ctx, sqldb.FindCopyByLocationParams{
		RepositoryPath: repositoryPath,
		FilePath:       filePath,
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := CopyRecordFromRow(row)
	return &record, nil
}

// ListByRepository returns every copy under repositoryPath ordered by file path.
func (r *CopyRepository) ListByRepository(ctx context.Context, repositoryPath string) ([]CopyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("copy repository: missing database context")
	}

	rows, err := queries.ListCopiesByRepository(ctx, repositoryPath)
	if err != nil {
		return nil, err
	}

	result := make([]CopyRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, CopyRecordFromRow(row))
	}
	return result, nil
}

func (r *CopyRepository) ListByDocument(ctx context.Context, documentID int64) ([]CopyRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("copy repository: missing database context")
	}

	rows, err := queries.ListCopiesByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	result := make([]CopyRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, CopyRecordFromRow(row))
	}
	return result, nil
}

func (r *CopyRepository) CountByStatus(ctx context.Context, repositoryPath string) ([]StatusCount, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("copy repository: missing database context")
	}

	rows, err := queries.CountCopiesByStatus(ctx, repositoryPath)
	if err != nil {
		return nil, err
	}

	result := make([]StatusCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, StatusCount{Status: row.Status, Count: row.Count})
	}
	return result, nil
}
