// Package analyzer derives read-only views over tracked copies and pending
// operations: duplicate groups, target conflicts and deletion selections.
package analyzer

import (
	"sort"

	"github.com/Laisky/errors/v2"

	"github.com/docman-dev/docman/internal/database"
)

// ErrKeepNotInGroup is returned when the copy chosen to survive deduplication
// is not a member of the group.
var ErrKeepNotInGroup = errors.New("selected copy is not part of the duplicate group")

// DuplicateGroup is a set of copies that share one document.
type DuplicateGroup struct {
	DocumentID int64
	Copies     []database.CopyRecord
}

// MinCopyID returns the smallest copy id in the group.
func (g DuplicateGroup) MinCopyID() int64 {
	if len(g.Copies) == 0 {
		return 0
	}
	return g.Copies[0].ID
}

// FindDuplicateGroups partitions copies by document and keeps documents with
// two or more copies. Members are sorted by copy id and groups by their
// smallest member id, so labels stay stable between runs.
func FindDuplicateGroups(copies []database.CopyRecord) []DuplicateGroup {
	byDocument := make(map[int64][]database.CopyRecord)
	for _, c := range copies {
		byDocument[c.DocumentID] = append(byDocument[c.DocumentID], c)
	}

	groups := make([]DuplicateGroup, 0)
	for documentID, members := range byDocument {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		groups = append(groups, DuplicateGroup{DocumentID: documentID, Copies: members})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].MinCopyID() < groups[j].MinCopyID() })
	return groups
}

// EstimateSavings returns how many suggestion requests deduplication would
// avoid: one per extra copy in every group.
func EstimateSavings(groups []DuplicateGroup) int {
	total := 0
	for _, g := range groups {
		if n := len(g.Copies); n > 1 {
			total += n - 1
		}
	}
	return total
}

// Keep selects which copies survive deduplication of a group.
type Keep struct {
	CopyID int64
	All    bool
}

// KeepAll leaves every copy of the group in place.
func KeepAll() Keep { return Keep{All: true} }

// KeepCopy keeps only the copy with the given id.
func KeepCopy(id int64) Keep { return Keep{CopyID: id} }

// SelectDeletions returns the copies of group that would be removed under keep.
func SelectDeletions(group DuplicateGroup, keep Keep) ([]database.CopyRecord, error) {
	if keep.All {
		return nil, nil
	}

	found := false
	deletions := make([]database.CopyRecord, 0, len(group.Copies))
	for _, c := range group.Copies {
		if c.ID == keep.CopyID {
			found = true
			continue
		}
		deletions = append(deletions, c)
	}
	if !found {
		return nil, errors.Wrapf(ErrKeepNotInGroup, "copy %d", keep.CopyID)
	}
	return deletions, nil
}
