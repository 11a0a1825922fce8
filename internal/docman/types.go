// Package docman provides the domain types shared by the document lifecycle.
package docman

import (
	"fmt"
	"strings"
)

// OrganizationStatus is the lifecycle state of a document copy.
type OrganizationStatus string

const (
	StatusUnorganized OrganizationStatus = "unorganized"
	StatusOrganized   OrganizationStatus = "organized"
	StatusIgnored     OrganizationStatus = "ignored"
)

// OrganizationStatuses lists every organization status in display order.
var OrganizationStatuses = []OrganizationStatus{StatusUnorganized, StatusOrganized, StatusIgnored}

// Valid reports whether s is one of the known statuses.
func (s OrganizationStatus) Valid() bool {
	switch s {
	case StatusUnorganized, StatusOrganized, StatusIgnored:
		return true
	default:
		return false
	}
}

// Excluded reports whether copies in this status are left out of planning
// unless a reprocess is requested.
func (s OrganizationStatus) Excluded() bool {
	switch s {
	case StatusOrganized, StatusIgnored:
		return true
	case StatusUnorganized:
		return false
	default:
		return false
	}
}

// ParseOrganizationStatus converts a stored value into an OrganizationStatus.
func ParseOrganizationStatus(value string) (OrganizationStatus, error) {
	s := OrganizationStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid organization status %q", value)
	}
	return s, nil
}

// OperationStatus is the decision state of a suggested operation.
type OperationStatus string

const (
	OperationPending  OperationStatus = "pending"
	OperationAccepted OperationStatus = "accepted"
	OperationRejected OperationStatus = "rejected"
)

// OperationStatuses lists every operation status in display order.
var OperationStatuses = []OperationStatus{OperationPending, OperationAccepted, OperationRejected}

// Valid reports whether s is one of the known statuses.
func (s OperationStatus) Valid() bool {
	switch s {
	case OperationPending, OperationAccepted, OperationRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible from s.
func (s OperationStatus) Terminal() bool {
	switch s {
	case OperationAccepted, OperationRejected:
		return true
	case OperationPending:
		return false
	default:
		return false
	}
}

// ParseOperationStatus converts a stored value into an OperationStatus.
func ParseOperationStatus(value string) (OperationStatus, error) {
	s := OperationStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid operation status %q", value)
	}
	return s, nil
}

// EnsureResult tells the planner what to do with a copy.
type EnsureResult int

const (
	// EnsureSkipped means the copy is organized or ignored and reprocessing was not requested.
	EnsureSkipped EnsureResult = iota
	// EnsureFresh means the pending operation still matches every fingerprint.
	EnsureFresh
	// EnsureStale means the pending operation was outdated and has been deleted.
	EnsureStale
	// EnsureMissing means the copy has no pending operation.
	EnsureMissing
)

func (r EnsureResult) String() string {
	switch r {
	case EnsureSkipped:
		return "skipped"
	case EnsureFresh:
		return "fresh"
	case EnsureStale:
		return "stale"
	case EnsureMissing:
		return "missing"
	default:
		return fmt.Sprintf("EnsureResult(%d)", int(r))
	}
}

// NeedsSuggestion reports whether the caller must request a new suggestion.
func (r EnsureResult) NeedsSuggestion() bool {
	return r == EnsureStale || r == EnsureMissing
}

// Fingerprint is the triple a stored suggestion is validated against.
type Fingerprint struct {
	ContentHash string
	PromptHash  string
	ModelName   string
}

// Equal reports whether all three components match.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.ContentHash == other.ContentHash &&
		f.PromptHash == other.PromptHash &&
		f.ModelName == other.ModelName
}

// Diff describes the first component that differs from current, or "" when equal.
func (f Fingerprint) Diff(current Fingerprint) string {
	switch {
	case f.ContentHash != current.ContentHash:
		return "document content changed"
	case f.PromptHash != current.PromptHash:
		return "prompt changed"
	case f.ModelName != current.ModelName:
		return "model changed"
	default:
		return ""
	}
}

// Suggestion is the payload proposed for one copy.
type Suggestion struct {
	DirectoryPath string `json:"suggested_directory_path"`
	Filename      string `json:"suggested_filename"`
	Reason        string `json:"reason"`
}

// TargetPath joins the suggested directory and filename with forward slashes.
func (s Suggestion) TargetPath() string {
	return JoinTarget(s.DirectoryPath, s.Filename)
}

// JoinTarget joins a repository-relative directory and filename. An empty
// directory means the repository root.
func JoinTarget(dir, filename string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return filename
	}
	return dir + "/" + filename
}
