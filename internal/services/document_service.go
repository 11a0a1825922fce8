package services

import (
	"context"
	"database/sql"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/database"
	sqldb "github.com/docman-dev/docman/internal/database/sqlc"
)

// DocumentService maintains canonical documents keyed by content hash.
type DocumentService struct {
	ctx *database.Context
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(ctx *database.Context) *DocumentService {
	return &DocumentService{ctx: ctx}
}

// GetOrCreate returns the document stored under contentHash, inserting it
// with content when absent. The stored content of an existing document is
// left untouched.
func (s *DocumentService) GetOrCreate(ctx context.Context, contentHash string, content *string) (doc database.DocumentRecord, created bool, err error) {
	err = withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		doc, created, err = getOrCreateDocument(txCtx, q, contentHash, content)
		return err
	})
	return doc, created, err
}

func getOrCreateDocument(ctx context.Context, q *sqldb.Queries, contentHash string, content *string) (database.DocumentRecord, bool, error) {
	row, err := q.FindDocumentByContentHash(ctx, contentHash)
	switch {
	case err == nil:
		return database.DocumentRecordFromRow(row), false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return database.DocumentRecord{}, false, errors.Wrap(err, "find document by content hash")
	}

	res, err := q.InsertDocument(ctx, database.InsertDocumentParams(contentHash, content))
	if err != nil {
		return database.DocumentRecord{}, false, errors.Wrap(err, "insert document")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return database.DocumentRecord{}, false, errors.Wrap(err, "read document id")
	}

	row, err = q.FindDocumentByID(ctx, id)
	if err != nil {
		return database.DocumentRecord{}, false, errors.Wrapf(err, "reload document %d", id)
	}
	return database.DocumentRecordFromRow(row), true, nil
}
