// Package mergepolicy decides which value to persist when a new score meets a
// stored one. Pure and strategy-driven; callers validate input before calling
// and an absent old value is passed as nil.
package mergepolicy

import "github.com/gamekeep/gamekeep/internal/domain/model"

// Merge applies the update strategy to an existing value and an incoming one.
// No clamping or range checks happen here.
//
//   - HighestWins keeps the larger of the two.
//   - LatestWins keeps the incoming value unconditionally.
//   - CumulativeSum adds, treating an absent old value as zero.
//
// Unknown strategies are rejected at config-creation time, so they cannot
// reach this function through the engines; as a last line they behave like
// LatestWins.
func Merge(s model.MergeStrategy, old *int64, incoming int64) int64 {
	switch s {
	case model.HighestWins:
		if old != nil && *old > incoming {
			return *old
		}
		return incoming
	case model.CumulativeSum:
		if old == nil {
			return incoming
		}
		return *old + incoming
	default:
		return incoming
	}
}
