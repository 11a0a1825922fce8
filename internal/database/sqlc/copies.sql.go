package sqldb

import (
	"context"
	"database/sql"
	"time"
)

const copyColumns = `id, document_id, repository_path, file_path, stored_content_hash, stored_size, stored_mtime,
	organization_status, accepted_operation_id, last_seen_at, created_at, updated_at`

func scanDocumentCopy(row interface{ Scan(...any) error }) (DocumentCopy, error) {
	var c DocumentCopy
	err := row.Scan(
		&c.ID,
		&c.DocumentID,
		&c.RepositoryPath,
		&c.FilePath,
		&c.StoredContentHash,
		&c.StoredSize,
		&c.StoredMtime,
		&c.OrganizationStatus,
		&c.AcceptedOperationID,
		&c.LastSeenAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (q *Queries) queryDocumentCopies(ctx context.Context, query string, args ...any) ([]DocumentCopy, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []DocumentCopy
	for rows.Next() {
		c, err := scanDocumentCopy(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findCopyByLocation = `SELECT ` + copyColumns + ` FROM document_copies WHERE repository_path = ? AND file_path = ?`

type FindCopyByLocationParams struct {
	RepositoryPath string
	FilePath       string
}

func (q *Queries) FindCopyByLocation(ctx context.Context, arg FindCopyByLocationParams) (DocumentCopy, error) {
	return scanDocumentCopy(q.db.QueryRowContext(ctx, findCopyByLocation, arg.RepositoryPath, arg.FilePath))
}

const findCopyByID = `SELECT ` + copyColumns + ` FROM document_copies WHERE id = ?`

func (q *Queries) FindCopyByID(ctx context.Context, id int64) (DocumentCopy, error) {
	return scanDocumentCopy(q.db.QueryRowContext(ctx, findCopyByID, id))
}

const insertCopy = `INSERT INTO document_copies (
	document_id, repository_path, file_path, stored_content_hash, stored_size, stored_mtime,
	organization_status, last_seen_at
) VALUES (?, ?, ?, ?, ?, ?, 'unorganized', ?)`

type InsertCopyParams struct {
	DocumentID        int64
	RepositoryPath    string
	FilePath          string
	StoredContentHash sql.NullString
	StoredSize        sql.NullInt64
	StoredMtime       sql.NullInt64
	LastSeenAt        time.Time
}

func (q *Queries) InsertCopy(ctx context.Context, arg InsertCopyParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertCopy,
		arg.DocumentID,
		arg.RepositoryPath,
		arg.FilePath,
		arg.StoredContentHash,
		arg.StoredSize,
		arg.StoredMtime,
		arg.LastSeenAt,
	)
}

const updateCopyFingerprint = `UPDATE document_copies
SET document_id = ?, stored_content_hash = ?, stored_size = ?, stored_mtime = ?, last_seen_at = ?,
	updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

type UpdateCopyFingerprintParams struct {
	ID                int64
	DocumentID        int64
	StoredContentHash sql.NullString
	StoredSize        sql.NullInt64
	StoredMtime       sql.NullInt64
	LastSeenAt        time.Time
}

func (q *Queries) UpdateCopyFingerprint(ctx context.Context, arg UpdateCopyFingerprintParams) error {
	_, err := q.db.ExecContext(ctx, updateCopyFingerprint,
		arg.DocumentID,
		arg.StoredContentHash,
		arg.StoredSize,
		arg.StoredMtime,
		arg.LastSeenAt,
		arg.ID,
	)
	return err
}

const touchCopy = `UPDATE document_copies SET last_seen_at = ? WHERE id = ?`

func (q *Queries) TouchCopy(ctx context.Context, id int64, seenAt time.Time) error {
	_, err := q.db.ExecContext(ctx, touchCopy, seenAt, id)
	return err
}

const updateCopyFilePath = `UPDATE document_copies SET file_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) UpdateCopyFilePath(ctx context.Context, id int64, filePath string) error {
	_, err := q.db.ExecContext(ctx, updateCopyFilePath, filePath, id)
	return err
}

const updateCopyStatus = `UPDATE document_copies SET organization_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) UpdateCopyStatus(ctx context.Context, id int64, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCopyStatus, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markCopyOrganized = `UPDATE document_copies
SET organization_status = 'organized', accepted_operation_id = ?, file_path = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

type MarkCopyOrganizedParams struct {
	ID                  int64
	AcceptedOperationID int64
	FilePath            string
}

func (q *Queries) MarkCopyOrganized(ctx context.Context, arg MarkCopyOrganizedParams) error {
	_, err := q.db.ExecContext(ctx, markCopyOrganized, arg.AcceptedOperationID, arg.FilePath, arg.ID)
	return err
}

const listCopiesByRepository = `SELECT ` + copyColumns + ` FROM document_copies
WHERE repository_path = ?
ORDER BY file_path, id`

func (q *Queries) ListCopiesByRepository(ctx context.Context, repositoryPath string) ([]DocumentCopy, error) {
	return q.queryDocumentCopies(ctx, listCopiesByRepository, repositoryPath)
}

const listCopiesByDocument = `SELECT ` + copyColumns + ` FROM document_copies
WHERE document_id = ?
ORDER BY id`

func (q *Queries) ListCopiesByDocument(ctx context.Context, documentID int64) ([]DocumentCopy, error) {
	return q.queryDocumentCopies(ctx, listCopiesByDocument, documentID)
}

const deleteCopyByID = `DELETE FROM document_copies WHERE id = ?`

func (q *Queries) DeleteCopyByID(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCopyByID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countCopiesByStatus = `SELECT organization_status, COUNT(*) FROM document_copies
WHERE repository_path = ?
GROUP BY organization_status
ORDER BY organization_status`

type StatusCountRow struct {
	Status string
	Count  int64
}

func (q *Queries) CountCopiesByStatus(ctx context.Context, repositoryPath string) ([]StatusCountRow, error) {
	rows, err := q.db.QueryContext(ctx, countCopiesByStatus, repositoryPath)
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
