// Package store defines the document persistence capability the engines
// depend on, plus its Mongo and in-memory implementations.
//
// Every method is a single-collection equality/range operation; the engines
// never need joins or cross-document transactions. Implementations must give
// read-your-writes per document but nothing stronger, and must never retry on
// their own.
package store

import (
	"context"
	"time"

	"github.com/gamekeep/gamekeep/internal/domain/model"
)

// Collection names shared by all implementations.
const (
	CollectionLeaderboardConfigs = "leaderboard_configs"
	CollectionScoreRecords       = "score_records"
	CollectionCounterConfigs     = "counter_configs"
)

// Store provides read/write access to configs, score records, and counters.
type Store interface {
	// GetLeaderboardConfig returns the config for (appID, key).
	// Returns ErrNotFound if the leaderboard has not been configured.
	GetLeaderboardConfig(ctx context.Context, appID, key string) (model.LeaderboardConfig, error)
	// PutLeaderboardConfig upserts a config document.
	PutLeaderboardConfig(ctx context.Context, cfg model.LeaderboardConfig) error
	// SetLeaderboardNextReset updates only the nextResetAt field; nil clears it.
	SetLeaderboardNextReset(ctx context.Context, appID, key string, next *time.Time) error
	// DeleteLeaderboardConfig removes the config document.
	DeleteLeaderboardConfig(ctx context.Context, appID, key string) error

	// GetScoreRecord returns one player's record, or ErrNotFound.
	GetScoreRecord(ctx context.Context, appID, key, playerID string) (model.ScoreRecord, error)
	// UpsertScoreRecord writes the record, creating it if absent. At most one
	// record ever exists per (appID, key, playerID).
	UpsertScoreRecord(ctx context.Context, rec model.ScoreRecord) error
	// TopScores returns records for (appID, key) ordered by value in dir,
	// ties broken by lastUpdatedAt ascending then playerId ascending.
	TopScores(ctx context.Context, appID, key string, dir model.SortDirection, skip, limit int) ([]model.ScoreRecord, error)
	// DeleteScores bulk-deletes every record under (appID, key) and returns
	// how many were removed. Idempotent.
	DeleteScores(ctx context.Context, appID, key string) (int64, error)
	// CountScores returns the number of records under (appID, key).
	CountScores(ctx context.Context, appID, key string) (int64, error)
	// TotalScores returns the number of score records across all
	// leaderboards. Feeds the tracked-records gauge.
	TotalScores(ctx context.Context) (int64, error)

	// GetCounterConfig returns the counter for (appID, key), or ErrNotFound.
	GetCounterConfig(ctx context.Context, appID, key string) (model.CounterConfig, error)
	// PutCounterConfig upserts the counter document, value included.
	PutCounterConfig(ctx context.Context, cfg model.CounterConfig) error
	// DeleteCounterConfig removes the counter document.
	DeleteCounterConfig(ctx context.Context, appID, key string) error
}
