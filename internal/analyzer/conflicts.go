package analyzer

import (
	"sort"

	"github.com/docman-dev/docman/internal/database"
)

// ConflictGroup lists pending operations that would write the same target.
type ConflictGroup struct {
	TargetPath string
	Operations []database.PendingOperation
}

// DetectTargetConflicts groups pending operations by suggested directory and
// filename and returns the targets claimed by more than one operation,
// ordered by target path. Members are ordered by operation id.
func DetectTargetConflicts(ops []database.PendingOperation) []ConflictGroup {
	byTarget := make(map[string][]database.PendingOperation)
	for _, op := range ops {
		target := op.Operation.Suggestion.TargetPath()
		byTarget[target] = append(byTarget[target], op)
	}

	groups := make([]ConflictGroup, 0)
	for target, members := range byTarget {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Operation.ID < members[j].Operation.ID })
		groups = append(groups, ConflictGroup{TargetPath: target, Operations: members})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].TargetPath < groups[j].TargetPath })
	return groups
}

// ConflictingOperationIDs flattens groups into a set of operation ids.
func ConflictingOperationIDs(groups []ConflictGroup) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, g := range groups {
		for _, op := range g.Operations {
			ids[op.Operation.ID] = struct{}{}
		}
	}
	return ids
}
