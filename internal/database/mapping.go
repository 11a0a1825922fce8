package database

import (
	sqldb "github.com/docman-dev/docman/internal/database/sqlc"
	"github.com/docman-dev/docman/internal/docman"
)

// DocumentRecordFromRow converts a documents row.
func DocumentRecordFromRow(row sqldb.Document) DocumentRecord {
	return DocumentRecord{
		ID:          row.ID,
		ContentHash: row.ContentHash,
		Content:     optionalStringPtr(row.Content),
		CreatedAt:   optionalTime(row.CreatedAt),
	}
}

// CopyRecordFromRow converts a document_copies row. Unknown status values
// are surfaced as unorganized so the copy is planned again.
func CopyRecordFromRow(row sqldb.DocumentCopy) CopyRecord {
	status, err := docman.ParseOrganizationStatus(row.OrganizationStatus)
	if err != nil {
		status = docman.StatusUnorganized
	}

	return CopyRecord{
		ID:                  row.ID,
		DocumentID:          row.DocumentID,
		RepositoryPath:      row.RepositoryPath,
		FilePath:            row.FilePath,
		StoredContentHash:   optionalString(row.StoredContentHash),
		StoredSize:          optionalInt64(row.StoredSize),
		StoredMTime:         optionalInt64(row.StoredMtime),
		Status:              status,
		AcceptedOperationID: optionalInt64Ptr(row.AcceptedOperationID),
		LastSeenAt:          optionalTime(row.LastSeenAt),
		CreatedAt:           optionalTime(row.CreatedAt),
		UpdatedAt:           optionalTime(row.UpdatedAt),
	}
}

// OperationRecordFromRow converts an operations row.
func OperationRecordFromRow(row sqldb.Operation) OperationRecord {
	status, err := docman.ParseOperationStatus(row.Status)
	if err != nil {
		status = docman.OperationRejected
	}

	return OperationRecord{
		ID:     row.ID,
		CopyID: optionalInt64Ptr(row.DocumentCopyID),
		Status: status,
		Suggestion: docman.Suggestion{
			DirectoryPath: row.SuggestedDirectoryPath,
			Filename:      row.SuggestedFilename,
			Reason:        row.Reason,
		},
		Fingerprint: docman.Fingerprint{
			ContentHash: optionalString(row.DocumentContentHash),
			PromptHash:  row.PromptHash,
			ModelName:   optionalString(row.ModelName),
		},
		OriginalRepositoryPath: optionalString(row.OriginalRepositoryPath),
		OriginalFilePath:       optionalString(row.OriginalFilePath),
		CreatedAt:              optionalTime(row.CreatedAt),
		UpdatedAt:              optionalTime(row.UpdatedAt),
	}
}

// PendingOperationFromRow converts a joined pending-operation row.
func PendingOperationFromRow(row sqldb.PendingOperationRow) PendingOperation {
	return PendingOperation{
		Operation:      OperationRecordFromRow(row.Operation),
		RepositoryPath: row.CopyRepositoryPath,
		FilePath:       row.CopyFilePath,
	}
}

// InsertOperationParams builds insert parameters for a new pending operation.
func InsertOperationParams(c CopyRecord, s docman.Suggestion, fp docman.Fingerprint) sqldb.InsertOperationParams {
	return sqldb.InsertOperationParams{
		DocumentCopyID:         c.ID,
		SuggestedDirectoryPath: s.DirectoryPath,
		SuggestedFilename:      s.Filename,
		Reason:                 s.Reason,
		PromptHash:             fp.PromptHash,
		DocumentContentHash:    nullString(fp.ContentHash),
		ModelName:              nullString(fp.ModelName),
		OriginalRepositoryPath: nullString(c.RepositoryPath),
		OriginalFilePath:       nullString(c.FilePath),
	}
}

// InsertCopyParams builds insert parameters for a newly discovered copy.
func InsertCopyParams(in CopyInput) sqldb.InsertCopyParams {
	return sqldb.InsertCopyParams{
		DocumentID:        in.DocumentID,
		RepositoryPath:    in.RepositoryPath,
		FilePath:          in.FilePath,
		StoredContentHash: nullString(in.ContentHash),
		StoredSize:        nullInt64(in.Size),
		StoredMtime:       nullInt64(in.MTime),
		LastSeenAt:        in.SeenAt,
	}
}

// UpdateCopyFingerprintParams builds the rehash update for an existing copy.
func UpdateCopyFingerprintParams(id int64, in CopyInput) sqldb.UpdateCopyFingerprintParams {
	return sqldb.UpdateCopyFingerprintParams{
		ID:                id,
		DocumentID:        in.DocumentID,
		StoredContentHash: nullString(in.ContentHash),
		StoredSize:        nullInt64(in.Size),
		StoredMtime:       nullInt64(in.MTime),
		LastSeenAt:        in.SeenAt,
	}
}

// InsertDocumentParams builds insert parameters for a new document.
func InsertDocumentParams(contentHash string, content *string) sqldb.InsertDocumentParams {
	return sqldb.InsertDocumentParams{
		ContentHash: contentHash,
		Content:     stringPtrToNullString(content),
	}
}
