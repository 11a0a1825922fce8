package sqldb

import (
	"context"
	"database/sql"
)

const documentColumns = `id, content_hash, content, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.ContentHash, &d.Content, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

const findDocumentByContentHash = `SELECT ` + documentColumns + ` FROM documents WHERE content_hash = ?`

func (q *Queries) FindDocumentByContentHash(ctx context.Context, contentHash string) (Document, error) {
	return scanDocument(q.db.QueryRowContext(ctx, findDocumentByContentHash, contentHash))
}

const findDocumentByID = `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`

func (q *Queries) FindDocumentByID(ctx context.Context, id int64) (Document, error) {
	return scanDocument(q.db.QueryRowContext(ctx, findDocumentByID, id))
}

const insertDocument = `INSERT INTO documents (content_hash, content) VALUES (?, ?)`

type InsertDocumentParams struct {
	ContentHash string
	Content     sql.NullString
}

func (q *Queries) InsertDocument(ctx context.Context, arg InsertDocumentParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertDocument, arg.ContentHash, arg.Content)
}

const countDocuments = `SELECT COUNT(*) FROM documents`

func (q *Queries) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countDocuments).Scan(&n)
	return n, err
}
