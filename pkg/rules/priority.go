package rules

import "sort"

// SortByPriority orders rules for evaluation and audit reporting:
// priority descending, ties broken by most-recently-created first. The
// ordering is deterministic so that execution records for one event always
// appear in the same sequence.
func SortByPriority(list []*Rule) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Priority != list[j].Priority {
			return list[i].Priority > list[j].Priority
		}
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		// Equal priority and creation time: fall back to ID for determinism.
		return list[i].ID < list[j].ID
	})
}
