package leaderboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gamekeep/gamekeep/internal/adapters/store"
	"github.com/gamekeep/gamekeep/internal/domain/model"
	"github.com/gamekeep/gamekeep/internal/engine/leaderboard"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	appID = "app-1"
	board = "arena"
)

// fixedClock is a settable time source for pinning the engine's "now".
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Set(t time.Time) { c.now = t }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newBoard(ctx context.Context, s store.Store, strategy model.MergeStrategy, dir model.SortDirection, next *time.Time) {
	cfg := model.LeaderboardConfig{
		ApplicationID: appID,
		Key:           board,
		SortDirection: dir,
		Strategy:      strategy,
		Policy:        model.ResetPolicy{Kind: model.ResetDaily},
		NextResetAt:   next,
	}
	if next == nil {
		cfg.Policy = model.ResetPolicy{Kind: model.ResetPermanent}
	}
	So(s.PutLeaderboardConfig(ctx, cfg), ShouldBeNil)
}

func TestSubmitScore(t *testing.T) {
	Convey("Given a leaderboard engine over a memory store", t, func() {
		ctx := context.Background()
		s := store.NewMemory()
		clock := &fixedClock{now: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)}
		eng := leaderboard.New(s, leaderboard.WithNow(clock.Now))

		Convey("When the leaderboard does not exist", func() {
			_, err := eng.SubmitScore(ctx, appID, "missing", "p1", 10)

			Convey("Then the submission fails with not found", func() {
				So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an argument is empty", func() {
			_, err := eng.SubmitScore(ctx, appID, board, "", 10)

			Convey("Then it is rejected before any I/O", func() {
				So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)
			})
		})

		Convey("When the strategy is highest-wins", func() {
			newBoard(ctx, s, model.HighestWins, model.Descending, nil)

			Convey("Then a higher score replaces and a lower one is ignored", func() {
				v, err := eng.SubmitScore(ctx, appID, board, "p1", 100)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 100)

				v, err = eng.SubmitScore(ctx, appID, board, "p1", 50)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 100)

				entries, err := eng.QueryTopRank(ctx, appID, board, 0, 10, nil)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].PlayerID, ShouldEqual, "p1")
				So(entries[0].Value, ShouldEqual, 100)
			})

			Convey("And a rejected lower score does not touch lastUpdatedAt", func() {
				_, err := eng.SubmitScore(ctx, appID, board, "p1", 100)
				So(err, ShouldBeNil)
				first, err := s.GetScoreRecord(ctx, appID, board, "p1")
				So(err, ShouldBeNil)

				clock.Advance(time.Minute)
				_, err = eng.SubmitScore(ctx, appID, board, "p1", 50)
				So(err, ShouldBeNil)

				after, err := s.GetScoreRecord(ctx, appID, board, "p1")
				So(err, ShouldBeNil)
				So(after.LastUpdatedAt, ShouldEqual, first.LastUpdatedAt)
			})
		})

		Convey("When the strategy is cumulative-sum", func() {
			newBoard(ctx, s, model.CumulativeSum, model.Descending, nil)

			Convey("Then submissions add up", func() {
				v, err := eng.SubmitScore(ctx, appID, board, "p1", 10)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 10)

				v, err = eng.SubmitScore(ctx, appID, board, "p1", 5)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 15)
			})
		})

		Convey("When the strategy is latest-wins", func() {
			newBoard(ctx, s, model.LatestWins, model.Descending, nil)

			Convey("Then the newest value always lands", func() {
				_, err := eng.SubmitScore(ctx, appID, board, "p1", 100)
				So(err, ShouldBeNil)
				v, err := eng.SubmitScore(ctx, appID, board, "p1", 3)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 3)
			})
		})
	})
}

func TestLazyReset(t *testing.T) {
	Convey("Given a daily leaderboard whose window boundary approaches", t, func() {
		ctx := context.Background()
		s := store.NewMemory()
		clock := &fixedClock{now: time.Date(2025, time.March, 12, 23, 0, 0, 0, time.UTC)}
		eng := leaderboard.New(s, leaderboard.WithNow(clock.Now))

		boundary := time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC)
		newBoard(ctx, s, model.HighestWins, model.Descending, &boundary)

		_, err := eng.SubmitScore(ctx, appID, board, "p1", 100)
		So(err, ShouldBeNil)
		_, err = eng.SubmitScore(ctx, appID, board, "p2", 80)
		So(err, ShouldBeNil)

		Convey("When a score arrives before the boundary", func() {
			clock.Set(boundary.Add(-time.Second))
			_, err := eng.SubmitScore(ctx, appID, board, "p3", 60)
			So(err, ShouldBeNil)

			Convey("Then nothing is cleared", func() {
				n, err := s.CountScores(ctx, appID, board)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 3)
			})
		})

		Convey("When a score arrives exactly at the boundary", func() {
			clock.Set(boundary)
			v, err := eng.SubmitScore(ctx, appID, board, "p3", 60)
			So(err, ShouldBeNil)

			Convey("Then the whole board is cleared first and the new score starts the window", func() {
				So(v, ShouldEqual, 60)
				n, err := s.CountScores(ctx, appID, board)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})

			Convey("And nextResetAt advances to the next day boundary", func() {
				cfg, err := s.GetLeaderboardConfig(ctx, appID, board)
				So(err, ShouldBeNil)
				So(cfg.NextResetAt, ShouldNotBeNil)
				So(*cfg.NextResetAt, ShouldEqual, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When a read crosses the boundary", func() {
			clock.Set(boundary.Add(time.Hour))
			entries, err := eng.QueryTopRank(ctx, appID, board, 0, 10, nil)
			So(err, ShouldBeNil)

			Convey("Then the read triggers the reset and returns the empty board", func() {
				So(entries, ShouldBeEmpty)

				cfg, err := s.GetLeaderboardConfig(ctx, appID, board)
				So(err, ShouldBeNil)
				So(cfg.NextResetAt.After(clock.Now()), ShouldBeTrue)
			})
		})

		Convey("When the merge strategy is cumulative and the window lapses", func() {
			So(s.PutLeaderboardConfig(ctx, model.LeaderboardConfig{
				ApplicationID: appID,
				Key:           board,
				SortDirection: model.Descending,
				Strategy:      model.CumulativeSum,
				Policy:        model.ResetPolicy{Kind: model.ResetDaily},
				NextResetAt:   &boundary,
			}), ShouldBeNil)

			clock.Set(boundary.Add(time.Minute))
			v, err := eng.SubmitScore(ctx, appID, board, "p1", 7)
			So(err, ShouldBeNil)

			Convey("Then the sum restarts from zero, not from the pre-reset value", func() {
				So(v, ShouldEqual, 7)
			})
		})
	})
}

func TestQueryTopRank(t *testing.T) {
	Convey("Given a permanent descending leaderboard with several players", t, func() {
		ctx := context.Background()
		s := store.NewMemory()
		clock := &fixedClock{now: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)}
		eng := leaderboard.New(s, leaderboard.WithNow(clock.Now), leaderboard.WithMaxPageSize(3))

		newBoard(ctx, s, model.HighestWins, model.Descending, nil)

		submit := func(player string, v int64) {
			_, err := eng.SubmitScore(ctx, appID, board, player, v)
			So(err, ShouldBeNil)
			clock.Advance(time.Second)
		}
		submit("alice", 100)
		submit("bob", 100)
		submit("carol", 250)
		submit("dave", 50)

		Convey("When reading the top page", func() {
			entries, err := eng.QueryTopRank(ctx, appID, board, 0, 3, nil)

			Convey("Then ranks are contiguous and ties go to the earlier submitter", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 3)
				So(entries[0], ShouldResemble, leaderboard.RankedEntry{Rank: 1, PlayerID: "carol", Value: 250})
				So(entries[1], ShouldResemble, leaderboard.RankedEntry{Rank: 2, PlayerID: "alice", Value: 100})
				So(entries[2], ShouldResemble, leaderboard.RankedEntry{Rank: 3, PlayerID: "bob", Value: 100})
			})

			Convey("And an immediate second read returns the same page", func() {
				again, err := eng.QueryTopRank(ctx, appID, board, 0, 3, nil)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, entries)
			})
		})

		Convey("When paginating from a start rank", func() {
			entries, err := eng.QueryTopRank(ctx, appID, board, 2, 2, nil)

			Convey("Then ranks continue from the offset", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Rank, ShouldEqual, 3)
				So(entries[0].PlayerID, ShouldEqual, "bob")
				So(entries[1].Rank, ShouldEqual, 4)
				So(entries[1].PlayerID, ShouldEqual, "dave")
			})
		})

		Convey("When the count exceeds the page cap", func() {
			entries, err := eng.QueryTopRank(ctx, appID, board, 0, 500, nil)

			Convey("Then the page is clamped instead of rejected", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 3)
			})
		})

		Convey("When the sort direction is overridden", func() {
			asc := model.Ascending
			entries, err := eng.QueryTopRank(ctx, appID, board, 0, 3, &asc)

			Convey("Then the lowest value ranks first", func() {
				So(err, ShouldBeNil)
				So(entries[0].PlayerID, ShouldEqual, "dave")
				So(entries[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When the request is malformed", func() {
			_, err := eng.QueryTopRank(ctx, appID, board, -1, 10, nil)
			So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)

			_, err = eng.QueryTopRank(ctx, appID, board, 0, 0, nil)
			So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)

			bogus := model.SortDirection("sideways")
			_, err = eng.QueryTopRank(ctx, appID, board, 0, 10, &bogus)
			So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)
		})

		Convey("When the leaderboard does not exist", func() {
			_, err := eng.QueryTopRank(ctx, appID, "missing", 0, 10, nil)
			So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
		})
	})
}
