// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamekeep/gamekeep/internal/adapters/store"
	"github.com/gamekeep/gamekeep/internal/domain/model"
	"github.com/gamekeep/gamekeep/internal/domain/resetwin"
	"github.com/gamekeep/gamekeep/internal/engine/counter"
	"github.com/gamekeep/gamekeep/internal/engine/leaderboard"
	"github.com/gamekeep/gamekeep/pkg/logger"
)

// Service wires the store and both engines and carries the lifecycle.
type Service struct {
	mu sync.RWMutex

	// Core components
	store        store.Store
	leaderboards *leaderboard.Engine
	counters     *counter.Engine

	// Configuration
	mongoURI     string
	mongoDB      string
	mongoColPfx  string
	maxPageSize  int
	now          func() time.Time

	// State
	mongoClient *mongo.Client
	started     bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithStore injects a pre-built store, bypassing Mongo connection on Start.
// Tests use this with the in-memory store.
func WithStore(st store.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithMongo points the service at a MongoDB deployment. An empty URI means
// the service runs on the in-memory store.
func WithMongo(uri, database string) Option {
	return func(s *Service) {
		s.mongoURI = uri
		if database != "" {
			s.mongoDB = database
		}
	}
}

// WithCollectionPrefix namespaces the Mongo collections, which lets several
// deployments share one database.
func WithCollectionPrefix(prefix string) Option {
	return func(s *Service) {
		s.mongoColPfx = prefix
	}
}

// WithMaxPageSize caps ranked-read page sizes.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// WithNow injects the time source shared by both engines.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		mongoDB:     "gamekeep",
		maxPageSize: 1000,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start connects persistence and builds the engines.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		if s.mongoURI != "" {
			client, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(s.mongoURI))
			if err != nil {
				return fmt.Errorf("mongo connect: %w", err)
			}
			if err := client.Ping(ctx, nil); err != nil {
				return fmt.Errorf("mongo ping: %w", err)
			}
			ms := store.NewMongo(client.Database(s.mongoDB), store.WithCollectionPrefix(s.mongoColPfx))
			if err := ms.EnsureIndexes(ctx); err != nil {
				return err
			}
			s.mongoClient = client
			s.store = ms
			s.logger.Info(ctx, "using mongo store", logger.String("database", s.mongoDB))
		} else {
			s.store = store.NewMemory()
			s.logger.Warn(ctx, "no mongo uri configured; using in-memory store")
		}
	}

	s.leaderboards = leaderboard.New(s.store,
		leaderboard.WithNow(s.now),
		leaderboard.WithMaxPageSize(s.maxPageSize),
		leaderboard.WithLogger(s.logger.Named("leaderboard")),
	)
	s.counters = counter.New(s.store,
		counter.WithNow(s.now),
		counter.WithLogger(s.logger.Named("counter")),
	)

	s.started = true
	s.logger.Info(ctx, "gamekeep service started", logger.Int("maxPageSize", s.maxPageSize))
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mongoClient.Disconnect(ctx); err != nil {
			s.logger.Error(ctx, "mongo disconnect failed", logger.Error(err))
		}
		s.mongoClient = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "gamekeep service stopped")
}

// SubmitScore applies a score submission and returns the persisted value.
func (s *Service) SubmitScore(ctx context.Context, appID, key, playerID string, value int64) (int64, error) {
	return s.leaderboards.SubmitScore(ctx, appID, key, playerID, value)
}

// QueryTopRank returns a ranked page of the leaderboard.
func (s *Service) QueryTopRank(ctx context.Context, appID, key string, startRank, count int, override *model.SortDirection) ([]leaderboard.RankedEntry, error) {
	return s.leaderboards.QueryTopRank(ctx, appID, key, startRank, count, override)
}

// IncrementCounter adds delta to a counter and returns the new value.
func (s *Service) IncrementCounter(ctx context.Context, appID, key string, delta int64) (int64, error) {
	return s.counters.Increment(ctx, appID, key, delta)
}

// CounterValue returns a counter's current value.
func (s *Service) CounterValue(ctx context.Context, appID, key string) (int64, error) {
	return s.counters.GetValue(ctx, appID, key)
}

// TrackedScoreRecords reports how many score records the store holds across
// every leaderboard. Feeds the periodic metrics updater.
func (s *Service) TrackedScoreRecords(ctx context.Context) (int64, error) {
	return s.store.TotalScores(ctx)
}

// ReconfigureCounter replaces a counter's reset policy.
func (s *Service) ReconfigureCounter(ctx context.Context, appID, key string, policy model.ResetPolicy) error {
	return s.counters.Reconfigure(ctx, appID, key, policy)
}

// PutLeaderboardConfig creates or replaces a leaderboard definition. The next
// reset boundary is always recomputed from now under the given policy, which
// keeps the nil-iff-permanent invariant without trusting caller input.
func (s *Service) PutLeaderboardConfig(ctx context.Context, cfg model.LeaderboardConfig) (model.LeaderboardConfig, error) {
	if cfg.ApplicationID == "" || cfg.Key == "" {
		return model.LeaderboardConfig{}, fmt.Errorf("%w: applicationId and key are required", model.ErrInvalidArgument)
	}
	if !cfg.SortDirection.Valid() {
		return model.LeaderboardConfig{}, fmt.Errorf("%w: unknown sort direction %q", model.ErrInvalidArgument, cfg.SortDirection)
	}
	if !cfg.Strategy.Valid() {
		return model.LeaderboardConfig{}, fmt.Errorf("%w: unknown merge strategy %q", model.ErrInvalidArgument, cfg.Strategy)
	}

	now := s.now()
	next, err := resetwin.NextBoundary(cfg.Policy, now)
	if err != nil {
		return model.LeaderboardConfig{}, err
	}
	cfg.NextResetAt = next
	cfg.UpdatedAt = now
	cfg.CreatedAt = now

	if existing, err := s.store.GetLeaderboardConfig(ctx, cfg.ApplicationID, cfg.Key); err == nil {
		cfg.CreatedAt = existing.CreatedAt
	}

	if err := s.store.PutLeaderboardConfig(ctx, cfg); err != nil {
		return model.LeaderboardConfig{}, err
	}
	return cfg, nil
}

// GetLeaderboardConfig returns a leaderboard definition.
func (s *Service) GetLeaderboardConfig(ctx context.Context, appID, key string) (model.LeaderboardConfig, error) {
	return s.store.GetLeaderboardConfig(ctx, appID, key)
}

// DeleteLeaderboard removes a leaderboard definition and all of its records.
func (s *Service) DeleteLeaderboard(ctx context.Context, appID, key string) error {
	if _, err := s.store.DeleteScores(ctx, appID, key); err != nil {
		return err
	}
	return s.store.DeleteLeaderboardConfig(ctx, appID, key)
}

// PutCounterConfig creates or updates a counter definition. The stored value
// survives an update; only description and policy are replaced.
func (s *Service) PutCounterConfig(ctx context.Context, cfg model.CounterConfig) (model.CounterConfig, error) {
	if cfg.ApplicationID == "" || cfg.Key == "" {
		return model.CounterConfig{}, fmt.Errorf("%w: applicationId and key are required", model.ErrInvalidArgument)
	}

	now := s.now()
	next, err := resetwin.NextBoundary(cfg.Policy, now)
	if err != nil {
		return model.CounterConfig{}, err
	}
	cfg.NextResetAt = next
	cfg.UpdatedAt = now
	cfg.CreatedAt = now
	cfg.Value = 0

	if existing, err := s.store.GetCounterConfig(ctx, cfg.ApplicationID, cfg.Key); err == nil {
		cfg.CreatedAt = existing.CreatedAt
		cfg.Value = existing.Value
	}

	if err := s.store.PutCounterConfig(ctx, cfg); err != nil {
		return model.CounterConfig{}, err
	}
	return cfg, nil
}

// GetCounterConfig returns a counter definition, value included.
func (s *Service) GetCounterConfig(ctx context.Context, appID, key string) (model.CounterConfig, error) {
	return s.store.GetCounterConfig(ctx, appID, key)
}

// DeleteCounter removes a counter definition.
func (s *Service) DeleteCounter(ctx context.Context, appID, key string) error {
	return s.store.DeleteCounterConfig(ctx, appID, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kind := "memory"
	if s.mongoClient != nil {
		kind = "mongo"
	}
	return map[string]interface{}{
		"started":     s.started,
		"maxPageSize": s.maxPageSize,
		"store":       kind,
	}
}
