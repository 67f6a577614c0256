// Package relations reconciles many-to-many relation edges by set
// difference: compute added = target - current and removed = current -
// target, then apply only that delta. Applying the same target twice in a row
// yields an empty delta.
package relations

import (
	"sort"

	"github.com/google/uuid"
)

// Delta is the applied change to an edge set.
type Delta struct {
	Added   []uuid.UUID `json:"added"`
	Removed []uuid.UUID `json:"removed"`
}

// Empty reports whether the delta carries no changes.
func (d *Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff computes the minimal delta converging current onto target. Duplicates
// in either input are ignored; both result slices are sorted so batched
// writes are deterministic.
func Diff(current, target []uuid.UUID) Delta {
	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	targetSet := make(map[uuid.UUID]struct{}, len(target))
	for _, id := range target {
		targetSet[id] = struct{}{}
	}

	delta := Delta{Added: []uuid.UUID{}, Removed: []uuid.UUID{}}
	for id := range targetSet {
		if _, ok := currentSet[id]; !ok {
			delta.Added = append(delta.Added, id)
		}
	}
	for id := range currentSet {
		if _, ok := targetSet[id]; !ok {
			delta.Removed = append(delta.Removed, id)
		}
	}

	sortIDs(delta.Added)
	sortIDs(delta.Removed)
	return delta
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
