package leaderboard

import (
	"fmt"

	"github.com/gamekeep/gamekeep/internal/domain/model"
)

// rankQuery is the resolved shape of a ranked read: direction, window, and
// rank numbering. Building it is pure so pagination rules can be tested
// without a store.
type rankQuery struct {
	direction model.SortDirection
	skip      int
	limit     int
}

// newRankQuery validates and resolves a ranked read request. startRank is
// zero-based; count is clamped to maxPageSize rather than rejected so clients
// asking for "everything" just get the largest page.
func newRankQuery(configured model.SortDirection, override *model.SortDirection, startRank, count, maxPageSize int) (rankQuery, error) {
	if startRank < 0 {
		return rankQuery{}, fmt.Errorf("%w: startRank must be >= 0, got %d", model.ErrInvalidArgument, startRank)
	}
	if count <= 0 {
		return rankQuery{}, fmt.Errorf("%w: count must be > 0, got %d", model.ErrInvalidArgument, count)
	}
	if count > maxPageSize {
		count = maxPageSize
	}

	dir := configured
	if override != nil {
		if !override.Valid() {
			return rankQuery{}, fmt.Errorf("%w: unknown sort direction %q", model.ErrInvalidArgument, *override)
		}
		dir = *override
	}

	return rankQuery{direction: dir, skip: startRank, limit: count}, nil
}

// assemble numbers the records returned by the store: rank = skip + index + 1.
func (q rankQuery) assemble(records []model.ScoreRecord) []RankedEntry {
	entries := make([]RankedEntry, len(records))
	for i, rec := range records {
		entries[i] = RankedEntry{
			Rank:     q.skip + i + 1,
			PlayerID: rec.PlayerID,
			Value:    rec.Value,
		}
	}
	return entries
}
