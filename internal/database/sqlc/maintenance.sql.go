package sqldb

import "context"

const deleteAllOperations = `DELETE FROM operations`

func (q *Queries) DeleteAllOperations(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllOperations)
	return err
}

const deleteAllDocumentCopies = `DELETE FROM document_copies`

func (q *Queries) DeleteAllDocumentCopies(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllDocumentCopies)
	return err
}

const deleteAllDocuments = `DELETE FROM documents`

func (q *Queries) DeleteAllDocuments(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllDocuments)
	return err
}
