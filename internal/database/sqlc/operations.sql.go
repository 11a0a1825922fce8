package sqldb

import (
	"context"
	"database/sql"
)

const operationColumns = `o.id, o.document_copy_id, o.status, o.suggested_directory_path, o.suggested_filename, o.reason,
	o.prompt_hash, o.document_content_hash, o.model_name, o.original_repository_path, o.original_file_path,
	o.created_at, o.updated_at`

func operationDest(o *Operation) []any {
	return []any{
		&o.ID,
		&o.DocumentCopyID,
		&o.Status,
		&o.SuggestedDirectoryPath,
		&o.SuggestedFilename,
		&o.Reason,
		&o.PromptHash,
		&o.DocumentContentHash,
		&o.ModelName,
		&o.OriginalRepositoryPath,
		&o.OriginalFilePath,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

func scanOperation(row interface{ Scan(...any) error }) (Operation, error) {
	var o Operation
	err := row.Scan(operationDest(&o)...)
	return o, err
}

func (q *Queries) queryOperations(ctx context.Context, query string, args ...any) ([]Operation, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Operation
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findOperationByID = `SELECT ` + operationColumns + ` FROM operations o WHERE o.id = ?`

func (q *Queries) FindOperationByID(ctx context.Context, id int64) (Operation, error) {
	return scanOperation(q.db.QueryRowContext(ctx, findOperationByID, id))
}

const findPendingOperationByCopy = `SELECT ` + operationColumns + ` FROM operations o
WHERE o.document_copy_id = ? AND o.status = 'pending'`

func (q *Queries) FindPendingOperationByCopy(ctx context.Context, copyID int64) (Operation, error) {
	return scanOperation(q.db.QueryRowContext(ctx, findPendingOperationByCopy, copyID))
}

const findLatestHistoricalOperationByCopy = `SELECT ` + operationColumns + ` FROM operations o
WHERE o.document_copy_id = ? AND o.status != 'pending'
ORDER BY o.id DESC
LIMIT 1`

func (q *Queries) FindLatestHistoricalOperationByCopy(ctx context.Context, copyID int64) (Operation, error) {
	return scanOperation(q.db.QueryRowContext(ctx, findLatestHistoricalOperationByCopy, copyID))
}

const insertOperation = `INSERT INTO operations (
	document_copy_id, status, suggested_directory_path, suggested_filename, reason,
	prompt_hash, document_content_hash, model_name, original_repository_path, original_file_path
) VALUES (?, 'pending', ?, ?, ?, ?, ?, ?, ?, ?)`

type InsertOperationParams struct {
	DocumentCopyID         int64
	SuggestedDirectoryPath string
	SuggestedFilename      string
	Reason                 string
	PromptHash             string
	DocumentContentHash    sql.NullString
	ModelName              sql.NullString
	OriginalRepositoryPath sql.NullString
	OriginalFilePath       sql.NullString
}

func (q *Queries) InsertOperation(ctx context.Context, arg InsertOperationParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertOperation,
		arg.DocumentCopyID,
		arg.SuggestedDirectoryPath,
		arg.SuggestedFilename,
		arg.Reason,
		arg.PromptHash,
		arg.DocumentContentHash,
		arg.ModelName,
		arg.OriginalRepositoryPath,
		arg.OriginalFilePath,
	)
}

const deletePendingOperationByCopy = `DELETE FROM operations WHERE document_copy_id = ? AND status = 'pending'`

func (q *Queries) DeletePendingOperationByCopy(ctx context.Context, copyID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePendingOperationByCopy, copyID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const detachHistoricalOperations = `UPDATE operations
SET document_copy_id = NULL, updated_at = CURRENT_TIMESTAMP
WHERE document_copy_id = ? AND status != 'pending'`

func (q *Queries) DetachHistoricalOperations(ctx context.Context, copyID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, detachHistoricalOperations, copyID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateOperationStatus = `UPDATE operations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) UpdateOperationStatus(ctx context.Context, id int64, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateOperationStatus, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listPendingOperationsByRepository = `SELECT ` + operationColumns + `, c.file_path, c.repository_path
FROM operations o
JOIN document_copies c ON c.id = o.document_copy_id
WHERE o.status = 'pending' AND c.repository_path = ?
ORDER BY c.file_path, o.id`

// PendingOperationRow is an operation joined with the copy it would move.
type PendingOperationRow struct {
	Operation
	CopyFilePath       string
	CopyRepositoryPath string
}

func (q *Queries) ListPendingOperationsByRepository(ctx context.Context, repositoryPath string) ([]PendingOperationRow, error) {
	rows, err := q.db.QueryContext(ctx, listPendingOperationsByRepository, repositoryPath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PendingOperationRow
	for rows.Next() {
		var r PendingOperationRow
		dest := append(operationDest(&r.Operation), &r.CopyFilePath, &r.CopyRepositoryPath)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOperationsByStatusAndPromptHash = `SELECT ` + operationColumns + ` FROM operations o
WHERE o.status = ? AND o.prompt_hash = ? AND o.original_repository_path = ?
ORDER BY o.updated_at DESC, o.id DESC
LIMIT ?`

type ListOperationsByStatusAndPromptHashParams struct {
	Status         string
	PromptHash     string
	RepositoryPath string
	Limit          int64
}

func (q *Queries) ListOperationsByStatusAndPromptHash(ctx context.Context, arg ListOperationsByStatusAndPromptHashParams) ([]Operation, error) {
	return q.queryOperations(ctx, listOperationsByStatusAndPromptHash, arg.Status, arg.PromptHash, arg.RepositoryPath, arg.Limit)
}

const listRecentOperationsByStatus = `SELECT ` + operationColumns + ` FROM operations o
WHERE o.status = ? AND o.original_repository_path = ?
ORDER BY o.updated_at DESC, o.id DESC
LIMIT ?`

type ListRecentOperationsByStatusParams struct {
	Status         string
	RepositoryPath string
	Limit          int64
}

func (q *Queries) ListRecentOperationsByStatus(ctx context.Context, arg ListRecentOperationsByStatusParams) ([]Operation, error) {
	return q.queryOperations(ctx, listRecentOperationsByStatus, arg.Status, arg.RepositoryPath, arg.Limit)
}

const countOperationsByStatus = `SELECT status, COUNT(*) FROM operations
WHERE original_repository_path = ?
GROUP BY status
ORDER BY status`

func (q *Queries) CountOperationsByStatus(ctx context.Context, repositoryPath string) ([]StatusCountRow, error) {
	rows, err := q.db.QueryContext(ctx, countOperationsByStatus, repositoryPath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StatusCountRow
	for rows.Next() {
		var r StatusCountRow
		if err := rows.Scan(&r.Status, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
