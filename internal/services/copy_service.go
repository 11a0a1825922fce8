package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/contenthash"
	"github.com/docman-dev/docman/internal/database"
	sqldb "github.com/docman-dev/docman/internal/database/sqlc"
)

// CopyService tracks the filesystem locations of documents.
type CopyService struct {
	ctx *database.Context
}

// NewCopyService creates a new CopyService.
func NewCopyService(ctx *database.Context) *CopyService {
	return &CopyService{ctx: ctx}
}

// NeedsRehashing reports whether the observed size or mtime differs from the
// fingerprint stored on the copy. A content change that keeps both values
// identical goes unnoticed until a forced rescan.
func NeedsRehashing(c database.CopyRecord, size, mtime int64) bool {
	return c.StoredSize != size || c.StoredMTime != mtime
}

// GetOrCreate inserts a copy for the location in in, or rewrites the
// document reference and fingerprint of the existing one.
func (s *CopyService) GetOrCreate(ctx context.Context, in database.CopyInput) (c database.CopyRecord, created bool, err error) {
	err = withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		c, created, err = getOrCreateCopy(txCtx, q, in)
		return err
	})
	return c, created, err
}

func getOrCreateCopy(ctx context.Context, q *sqldb.Queries, in database.CopyInput) (database.CopyRecord, bool, error) {
	row, err := q.FindCopyByLocation(ctx, sqldb.FindCopyByLocationParams{
		RepositoryPath: in.RepositoryPath,
		FilePath:       in.FilePath,
	})
	switch {
	case err == nil:
		id := row.ID
		if err := q.UpdateCopyFingerprint(ctx, database.UpdateCopyFingerprintParams(id, in)); err != nil {
			return database.CopyRecord{}, false, errors.Wrapf(err, "update copy %d", id)
		}
		row, err = q.FindCopyByID(ctx, id)
		if err != nil {
			return database.CopyRecord{}, false, errors.Wrapf(err, "reload copy %d", id)
		}
		return database.CopyRecordFromRow(row), false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return database.CopyRecord{}, false, errors.Wrap(err, "find copy by location")
	}

	res, err := q.InsertCopy(ctx, database.InsertCopyParams(in))
	if err != nil {
		return database.CopyRecord{}, false, errors.Wrapf(err, "insert copy %s", in.FilePath)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return database.CopyRecord{}, false, errors.Wrap(err, "read copy id")
	}
	row, err = q.FindCopyByID(ctx, id)
	if err != nil {
		return database.CopyRecord{}, false, errors.Wrapf(err, "reload copy %d", id)
	}
	return database.CopyRecordFromRow(row), true, nil
}

// TrackInput is the observed state of one extracted file.
type TrackInput struct {
	RepositoryPath string
	FilePath       string
	Content        string
	Size           int64
	MTime          int64
	SeenAt         time.Time
}

// TrackResult describes what Track wrote.
type TrackResult struct {
	Document        database.DocumentRecord
	Copy            database.CopyRecord
	DocumentCreated bool
	CopyCreated     bool
	// PreviousDocumentID is the document the copy pointed at before Track,
	// or zero for a new copy.
	PreviousDocumentID int64
}

// ContentChanged reports whether an existing copy now points at a different document.
func (r TrackResult) ContentChanged() bool {
	return !r.CopyCreated && r.PreviousDocumentID != r.Document.ID
}

// Track hashes the extracted content and upserts the document and the copy
// in one transaction.
func (s *CopyService) Track(ctx context.Context, in TrackInput) (TrackResult, error) {
	hash := contenthash.Compute(in.Content)
	content := in.Content

	var result TrackResult
	err := withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		previous, err := q.FindCopyByLocation(txCtx, sqldb.FindCopyByLocationParams{
			RepositoryPath: in.RepositoryPath,
			FilePath:       in.FilePath,
		})
		switch {
		case err == nil:
			result.PreviousDocumentID = previous.DocumentID
		case !errors.Is(err, sql.ErrNoRows):
			return errors.Wrap(err, "find copy by location")
		}

		result.Document, result.DocumentCreated, err = getOrCreateDocument(txCtx, q, hash, &content)
		if err != nil {
			return err
		}

		result.Copy, result.CopyCreated, err = getOrCreateCopy(txCtx, q, database.CopyInput{
			RepositoryPath: in.RepositoryPath,
			FilePath:       in.FilePath,
			DocumentID:     result.Document.ID,
			ContentHash:    hash,
			Size:           in.Size,
			MTime:          in.MTime,
			SeenAt:         in.SeenAt,
		})
		return err
	})
	if err != nil {
		return TrackResult{}, err
	}
	return result, nil
}

// TouchSeen records that the copy's file was confirmed present at seenAt.
func (s *CopyService) TouchSeen(ctx context.Context, copyID int64, seenAt time.Time) error {
	q, err := queries(s.ctx)
	if err != nil {
		return err
	}
	if err := q.TouchCopy(ctx, copyID, seenAt); err != nil {
		return errors.Wrapf(err, "touch copy %d", copyID)
	}
	return nil
}

// Move updates the copy's file path. The document and fingerprints are kept.
func (s *CopyService) Move(ctx context.Context, copyID int64, newFilePath string) error {
	q, err := queries(s.ctx)
	if err != nil {
		return err
	}
	if err := q.UpdateCopyFilePath(ctx, copyID, newFilePath); err != nil {
		return errors.Wrapf(err, "move copy %d", copyID)
	}
	return nil
}

// Delete removes one copy, deleting its pending operation and detaching its
// decided operations.
func (s *CopyService) Delete(ctx context.Context, copyID int64) (deleted bool, err error) {
	err = withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		deleted, err = deleteCopy(txCtx, q, copyID)
		return err
	})
	return deleted, err
}

// CleanupOrphaned deletes every copy under repositoryPath for which missing
// reports true, and returns the removed copies in path order.
func (s *CopyService) CleanupOrphaned(ctx context.Context, repositoryPath string, missing func(filePath string) bool) ([]database.CopyRecord, error) {
	var removed []database.CopyRecord
	err := withTx(ctx, s.ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		rows, err := q.ListCopiesByRepository(txCtx, repositoryPath)
		if err != nil {
			return errors.Wrap(err, "list copies")
		}

		for _, row := range rows {
			if !missing(row.FilePath) {
				continue
			}
			deleted, err := deleteCopy(txCtx, q, row.ID)
			if err != nil {
				return err
			}
			if deleted {
				removed = append(removed, database.CopyRecordFromRow(row))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
