// Package counter implements the counter engine: positive-delta increments
// on a single config-held value, with the same lazy reset windows as the
// leaderboard engine but single-writer-wins semantics only.
package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/gamekeep/gamekeep/internal/adapters/store"
	"github.com/gamekeep/gamekeep/internal/domain/model"
	"github.com/gamekeep/gamekeep/internal/domain/resetwin"
	"github.com/gamekeep/gamekeep/pkg/logger"
	"github.com/gamekeep/gamekeep/pkg/metrics"
)

// Engine orchestrates counter reads and writes. Counters must be created
// out-of-band by an administrator; the engine never creates one implicitly.
type Engine struct {
	store store.Store
	now   func() time.Time
	log   logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithNow injects the time source.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
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
		store: s,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("counter")
	}
	return e
}

// Increment adds delta to the counter and returns the new value. An elapsed
// window zeroes the value and advances nextResetAt inside the same persisted
// update, so the returned value is always relative to the current window.
func (e *Engine) Increment(ctx context.Context, appID, key string, delta int64) (int64, error) {
	if appID == "" || key == "" {
		return 0, fmt.Errorf("%w: applicationId and key are required", model.ErrInvalidArgument)
	}
	if delta <= 0 {
		return 0, fmt.Errorf("%w: delta must be > 0, got %d", model.ErrInvalidArgument, delta)
	}

	cfg, err := e.store.GetCounterConfig(ctx, appID, key)
	if err != nil {
		return 0, err
	}

	now := e.now()
	if err := e.applyWindow(ctx, &cfg, now); err != nil {
		return 0, err
	}

	cfg.Value += delta
	cfg.UpdatedAt = now
	if err := e.store.PutCounterConfig(ctx, cfg); err != nil {
		return 0, err
	}

	metrics.RecordCounterIncrement()
	return cfg.Value, nil
}

// GetValue returns the counter's current value. Like leaderboard reads,
// this persists a lapsed reset before answering, so reads mutate state here.
func (e *Engine) GetValue(ctx context.Context, appID, key string) (int64, error) {
	if appID == "" || key == "" {
		return 0, fmt.Errorf("%w: applicationId and key are required", model.ErrInvalidArgument)
	}

	cfg, err := e.store.GetCounterConfig(ctx, appID, key)
	if err != nil {
		return 0, err
	}

	now := e.now()
	if resetwin.Elapsed(cfg.NextResetAt, now) {
		if err := e.applyWindow(ctx, &cfg, now); err != nil {
			return 0, err
		}
		cfg.UpdatedAt = now
		if err := e.store.PutCounterConfig(ctx, cfg); err != nil {
			return 0, err
		}
	}

	metrics.RecordCounterRead()
	return cfg.Value, nil
}

// Reconfigure replaces the counter's reset policy and recomputes the next
// boundary from now. Old elapsed windows are not applied retroactively; the
// current value survives a reconfigure.
func (e *Engine) Reconfigure(ctx context.Context, appID, key string, policy model.ResetPolicy) error {
	if appID == "" || key == "" {
		return fmt.Errorf("%w: applicationId and key are required", model.ErrInvalidArgument)
	}

	now := e.now()
	next, err := resetwin.NextBoundary(policy, now)
	if err != nil {
		return err
	}

	cfg, err := e.store.GetCounterConfig(ctx, appID, key)
	if err != nil {
		return err
	}

	cfg.Policy = policy
	cfg.NextResetAt = next
	cfg.UpdatedAt = now
	if err := e.store.PutCounterConfig(ctx, cfg); err != nil {
		return err
	}

	e.log.Info(ctx, "counter reconfigured",
		logger.String("app", appID),
		logger.String("counter", key),
		logger.String("kind", string(policy.Kind)),
		logger.Any("nextResetAt", next),
	)
	return nil
}

// applyWindow zeroes the value and advances the boundary in memory when the
// window has elapsed. The caller persists; unlike the leaderboard reset there
// is only one document, so the zero and the new boundary land atomically.
func (e *Engine) applyWindow(ctx context.Context, cfg *model.CounterConfig, now time.Time) error {
	if !resetwin.Elapsed(cfg.NextResetAt, now) {
		return nil
	}

	next, err := resetwin.NextBoundary(cfg.Policy, now)
	if err != nil {
		return err
	}
	cfg.Value = 0
	cfg.NextResetAt = next

	metrics.RecordWindowReset("counter")
	e.log.Info(ctx, "counter window reset",
		logger.String("app", cfg.ApplicationID),
		logger.String("counter", cfg.Key),
		logger.Any("nextResetAt", next),
	)
	return nil
}
