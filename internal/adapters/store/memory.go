package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gamekeep/gamekeep/internal/domain/model"
)

// Memory is a mutex-guarded, map-backed Store. It backs tests and local runs
// without a database and is the reference for ordering semantics: value in
// the requested direction, then lastUpdatedAt ascending, then playerId
// ascending so identical inputs always produce identical pages.
type Memory struct {
	mu       sync.RWMutex
	boards   map[configKey]model.LeaderboardConfig
	scores   map[scoreKey]model.ScoreRecord
	counters map[configKey]model.CounterConfig
}

type configKey struct {
	app string
	key string
}

type scoreKey struct {
	app    string
	key    string
	player string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		boards:   make(map[configKey]model.LeaderboardConfig),
		scores:   make(map[scoreKey]model.ScoreRecord),
		counters: make(map[configKey]model.CounterConfig),
	}
}

func (m *Memory) GetLeaderboardConfig(_ context.Context, appID, key string) (model.LeaderboardConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.boards[configKey{appID, key}]
	if !ok {
		return model.LeaderboardConfig{}, ErrNotFound
	}
	return cfg, nil
}

func (m *Memory) PutLeaderboardConfig(_ context.Context, cfg model.LeaderboardConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.boards[configKey{cfg.ApplicationID, cfg.Key}] = cfg
	return nil
}

func (m *Memory) SetLeaderboardNextReset(_ context.Context, appID, key string, next *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := configKey{appID, key}
	cfg, ok := m.boards[k]
	if !ok {
		return ErrNotFound
	}
	cfg.NextResetAt = copyTime(next)
	m.boards[k] = cfg
	return nil
}

func (m *Memory) DeleteLeaderboardConfig(_ context.Context, appID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.boards, configKey{appID, key})
	return nil
}

func (m *Memory) GetScoreRecord(_ context.Context, appID, key, playerID string) (model.ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.scores[scoreKey{appID, key, playerID}]
	if !ok {
		return model.ScoreRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) UpsertScoreRecord(_ context.Context, rec model.ScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scores[scoreKey{rec.ApplicationID, rec.LeaderboardKey, rec.PlayerID}] = rec
	return nil
}

func (m *Memory) TopScores(_ context.Context, appID, key string, dir model.SortDirection, skip, limit int) ([]model.ScoreRecord, error) {
	m.mu.RLock()
	matched := make([]model.ScoreRecord, 0)
	for k, rec := range m.scores {
		if k.app == appID && k.key == key {
			matched = append(matched, rec)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Value != b.Value {
			if dir == model.Ascending {
				return a.Value < b.Value
			}
			return a.Value > b.Value
		}
		if !a.LastUpdatedAt.Equal(b.LastUpdatedAt) {
			return a.LastUpdatedAt.Before(b.LastUpdatedAt)
		}
		return a.PlayerID < b.PlayerID
	})

	if skip >= len(matched) {
		return []model.ScoreRecord{}, nil
	}
	matched = matched[skip:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *Memory) DeleteScores(_ context.Context, appID, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k := range m.scores {
		if k.app == appID && k.key == key {
			delete(m.scores, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) CountScores(_ context.Context, appID, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for k := range m.scores {
		if k.app == appID && k.key == key {
			n++
		}
	}
	return n, nil
}

func (m *Memory) TotalScores(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.scores)), nil
}

func (m *Memory) GetCounterConfig(_ context.Context, appID, key string) (model.CounterConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.counters[configKey{appID, key}]
	if !ok {
		return model.CounterConfig{}, ErrNotFound
	}
	return cfg, nil
}

func (m *Memory) PutCounterConfig(_ context.Context, cfg model.CounterConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[configKey{cfg.ApplicationID, cfg.Key}] = cfg
	return nil
}

func (m *Memory) DeleteCounterConfig(_ context.Context, appID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.counters, configKey{appID, key})
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
