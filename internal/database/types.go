package database

import (
	"time"

	"github.com/docman-dev/docman/internal/docman"
)

// DocumentRecord represents a row in the documents table. There is exactly
// one document per distinct content hash.
type DocumentRecord struct {
	ID          int64
	ContentHash string
	Content     *string
	CreatedAt   time.Time
}

// CopyRecord represents a row in the document_copies table: one filesystem
// location believed to hold a document's content.
type CopyRecord struct {
	ID                  int64
	DocumentID          int64
	RepositoryPath      string
	FilePath            string
	StoredContentHash   string
	StoredSize          int64
	StoredMTime         int64
	Status              docman.OrganizationStatus
	AcceptedOperationID *int64
	LastSeenAt          time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CopyInput carries the observed state of a file for the copy upsert.
type CopyInput struct {
	RepositoryPath string
	FilePath       string
	DocumentID     int64
	ContentHash    string
	Size           int64
	MTime          int64
	SeenAt         time.Time
}

// OperationRecord mirrors the operations table. CopyID is nil once the copy
// it referred to has been garbage-collected.
type OperationRecord struct {
	ID                     int64
	CopyID                 *int64
	Status                 docman.OperationStatus
	Suggestion             docman.Suggestion
	Fingerprint            docman.Fingerprint
	OriginalRepositoryPath string
	OriginalFilePath       string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// PendingOperation is a pending operation together with the current location
// of the copy it would move.
type PendingOperation struct {
	Operation      OperationRecord
	RepositoryPath string
	FilePath       string
}

// StatusCount is the number of rows in a given status.
type StatusCount struct {
	Status string
	Count  int64
}
