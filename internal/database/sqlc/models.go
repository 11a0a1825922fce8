package sqldb

import (
	"database/sql"
)

type Document struct {
	ID          int64
	ContentHash string
	Content     sql.NullString
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
}

type DocumentCopy struct {
	ID                  int64
	DocumentID          int64
	RepositoryPath      string
	FilePath            string
	StoredContentHash   sql.NullString
	StoredSize          sql.NullInt64
	StoredMtime         sql.NullInt64
	OrganizationStatus  string
	AcceptedOperationID sql.NullInt64
	LastSeenAt          sql.NullTime
	CreatedAt           sql.NullTime
	UpdatedAt           sql.NullTime
}

type Operation struct {
	ID                     int64
	DocumentCopyID         sql.NullInt64
	Status                 string
	SuggestedDirectoryPath string
	SuggestedFilename      string
	Reason                 string
	PromptHash             string
	DocumentContentHash    sql.NullString
	ModelName              sql.NullString
	OriginalRepositoryPath sql.NullString
	OriginalFilePath       sql.NullString
	CreatedAt              sql.NullTime
	UpdatedAt              sql.NullTime
}
