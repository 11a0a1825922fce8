package database

import (
	"context"
	"database/sql"
	"fmt"
)

type DocumentRepository struct {
	ctx *Context
}

func NewDocumentRepository(dbCtx *Context) *DocumentRepository {
	return &DocumentRepository{ctx: dbCtx}
}

func (r *DocumentRepository) FindByID(ctx context.Context, id int64) (*DocumentRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("document repository: missing database context")
	}

	row, err := queries.FindDocumentByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := DocumentRecordFromRow(row)
	return &record, nil
}

func (r *DocumentRepository) FindByContentHash(ctx context.Context, contentHash string) (*DocumentRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("document repository: missing database context")
	}

	row, err := queries.FindDocumentByContentHash(ctx, contentHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	record := DocumentRecordFromRow(row)
	return &record, nil
}

func (r *DocumentRepository) Count(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("document repository: missing database context")
	}

	return queries.CountDocuments(ctx)
}
