// Package leaderboard implements the ranked score engine: strategy-driven
// merges, lazy reset windows, and tie-broken ranked reads.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gamekeep/gamekeep/internal/adapters/store"
	"github.com/gamekeep/gamekeep/internal/domain/mergepolicy"
	"github.com/gamekeep/gamekeep/internal/domain/model"
	"github.com/gamekeep/gamekeep/internal/domain/resetwin"
	"github.com/gamekeep/gamekeep/pkg/logger"
	"github.com/gamekeep/gamekeep/pkg/metrics"
)

// defaultMaxPageSize bounds queryTopRank page sizes.
const defaultMaxPageSize = 1000

// Engine orchestrates score submissions and ranked reads for one store.
// It holds no per-key state of its own; every call loads and persists through
// the store, so concurrent invocations only meet inside the database.
type Engine struct {
	store       store.Store
	now         func() time.Time
	maxPageSize int
	log         logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithNow injects the time source. Tests pin it; production uses time.Now.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMaxPageSize caps the count accepted by QueryTopRank.
func WithMaxPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPageSize = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New constructs an Engine over the given store.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		now:         time.Now,
		maxPageSize: defaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("leaderboard")
	}
	return e
}

// RankedEntry is one row of a ranked read.
type RankedEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Value    int64  `json:"value"`
}

// SubmitScore merges value into the player's record under the leaderboard's
// update strategy and returns the persisted value. Order is fixed: reset
// check, merge, persist; the merge must see post-reset state.
func (e *Engine) SubmitScore(ctx context.Context, appID, key, playerID string, value int64) (int64, error) {
	if appID == "" || key == "" || playerID == "" {
		return 0, fmt.Errorf("%w: applicationId, key, and playerId are required", model.ErrInvalidArgument)
	}

	cfg, err := e.store.GetLeaderboardConfig(ctx, appID, key)
	if err != nil {
		return 0, err
	}

	now := e.now()
	if err := e.ensureWindow(ctx, &cfg, now); err != nil {
		return 0, err
	}

	var old *int64
	existing, err := e.store.GetScoreRecord(ctx, appID, key, playerID)
	switch {
	case err == nil:
		old = &existing.Value
	case errors.Is(err, store.ErrNotFound):
		// First submission for this player in the current window.
	default:
		return 0, err
	}

	merged := mergepolicy.Merge(cfg.Strategy, old, value)
	if old != nil && merged == *old {
		// Nothing changed (e.g. highest-wins rejected a lower score); skip the write.
		metrics.RecordScoreUnchanged()
		return merged, nil
	}

	rec := existing
	rec.ApplicationID = appID
	rec.LeaderboardKey = key
	rec.PlayerID = playerID
	rec.Value = merged
	rec.LastUpdatedAt = now
	if err := e.store.UpsertScoreRecord(ctx, rec); err != nil {
		return 0, err
	}

	metrics.RecordScoreSubmission()
	e.log.Debug(ctx, "score persisted",
		logger.String("app", appID),
		logger.String("leaderboard", key),
		logger.String("player", playerID),
		logger.Int64("value", merged),
	)
	return merged, nil
}

// QueryTopRank returns count entries starting at startRank (zero-based),
// ordered by value in the leaderboard's direction unless override is given.
// Reads run the same lazy reset as writes so an expired board never serves
// pre-reset rows.
func (e *Engine) QueryTopRank(ctx context.Context, appID, key string, startRank, count int, override *model.SortDirection) ([]RankedEntry, error) {
	if appID == "" || key == "" {
		return nil, fmt.Errorf("%w: applicationId and key are required", model.ErrInvalidArgument)
	}

	cfg, err := e.store.GetLeaderboardConfig(ctx, appID, key)
	if err != nil {
		return nil, err
	}

	if err := e.ensureWindow(ctx, &cfg, e.now()); err != nil {
		return nil, err
	}

	q, err := newRankQuery(cfg.SortDirection, override, startRank, count, e.maxPageSize)
	if err != nil {
		return nil, err
	}

	records, err := e.store.TopScores(ctx, appID, key, q.direction, q.skip, q.limit)
	if err != nil {
		return nil, err
	}

	metrics.RecordRankQuery()
	return q.assemble(records), nil
}

// ensureWindow applies the lazy reset when the config's window has elapsed:
// bulk-delete every record under the key, then advance nextResetAt. The two
// writes are not transactional, so concurrent callers may both run
// this, but the bulk delete is idempotent and a second recomputation still
// lands on a strictly-future boundary, so the race heals itself.
func (e *Engine) ensureWindow(ctx context.Context, cfg *model.LeaderboardConfig, now time.Time) error {
	if !resetwin.Elapsed(cfg.NextResetAt, now) {
		return nil
	}

	removed, err := e.store.DeleteScores(ctx, cfg.ApplicationID, cfg.Key)
	if err != nil {
		return err
	}

	next, err := resetwin.NextBoundary(cfg.Policy, now)
	if err != nil {
		return err
	}
	if err := e.store.SetLeaderboardNextReset(ctx, cfg.ApplicationID, cfg.Key, next); err != nil {
		return err
	}
	cfg.NextResetAt = next

	metrics.RecordWindowReset("leaderboard")
	e.log.Info(ctx, "leaderboard window reset",
		logger.String("app", cfg.ApplicationID),
		logger.String("leaderboard", cfg.Key),
		logger.Int64("recordsCleared", removed),
		logger.Duration("windowSpan", resetwin.Span(cfg.Policy)),
		logger.Any("nextResetAt", next),
	)
	return nil
}
