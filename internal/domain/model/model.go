// Package model contains the persisted shapes and enumerations shared
// between the engines, the store adapters, and the HTTP layer.
package model

import (
	"fmt"
	"time"
)

// SortDirection orders ranked reads.
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// Valid reports whether d is a known sort direction.
func (d SortDirection) Valid() bool {
	return d == Ascending || d == Descending
}

// ParseSortDirection converts a wire/config string into a SortDirection.
func ParseSortDirection(s string) (SortDirection, error) {
	d := SortDirection(s)
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown sort direction %q", ErrInvalidArgument, s)
	}
	return d, nil
}

// MergeStrategy selects how an incoming score is merged with a stored one.
type MergeStrategy string

const (
	HighestWins   MergeStrategy = "highest_wins"
	LatestWins    MergeStrategy = "latest_wins"
	CumulativeSum MergeStrategy = "cumulative_sum"
)

// Valid reports whether s is a known merge strategy.
func (s MergeStrategy) Valid() bool {
	switch s {
	case HighestWins, LatestWins, CumulativeSum:
		return true
	}
	return false
}

// ParseMergeStrategy converts a wire/config string into a MergeStrategy.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	m := MergeStrategy(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown merge strategy %q", ErrInvalidArgument, s)
	}
	return m, nil
}

// ResetKind names the reset cadence of a leaderboard or counter.
type ResetKind string

const (
	ResetPermanent ResetKind = "permanent"
	ResetDaily     ResetKind = "daily"
	ResetWeekly    ResetKind = "weekly"
	ResetMonthly   ResetKind = "monthly"
	ResetCustom    ResetKind = "custom"
)

// Valid reports whether k is a known reset kind.
func (k ResetKind) Valid() bool {
	switch k {
	case ResetPermanent, ResetDaily, ResetWeekly, ResetMonthly, ResetCustom:
		return true
	}
	return false
}

// ResetPolicy describes when a ranked record set is cleared.
// CustomHours is only meaningful when Kind is ResetCustom.
type ResetPolicy struct {
	Kind        ResetKind `bson:"kind" json:"kind"`
	CustomHours int       `bson:"customHours,omitempty" json:"customHours,omitempty"`
}

// LeaderboardConfig is the per-(application, key) leaderboard definition.
// NextResetAt is nil exactly when the policy kind is permanent; otherwise it
// holds the boundary the next access will compare against.
type LeaderboardConfig struct {
	ApplicationID string        `bson:"applicationId" json:"applicationId"`
	Key           string        `bson:"key" json:"key"`
	SortDirection SortDirection `bson:"sortDirection" json:"sortDirection"`
	Strategy      MergeStrategy `bson:"updateStrategy" json:"updateStrategy"`
	Policy        ResetPolicy   `bson:"resetPolicy" json:"resetPolicy"`
	NextResetAt   *time.Time    `bson:"nextResetAt" json:"nextResetAt,omitempty"`
	MaxRank       int           `bson:"maxRank,omitempty" json:"maxRank,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// ScoreRecord is one player's current value on one leaderboard. There is at
// most one record per (applicationId, key, playerId); writers upsert.
type ScoreRecord struct {
	ApplicationID  string    `bson:"applicationId" json:"applicationId"`
	LeaderboardKey string    `bson:"leaderboardKey" json:"leaderboardKey"`
	PlayerID       string    `bson:"playerId" json:"playerId"`
	Value          int64     `bson:"value" json:"value"`
	LastUpdatedAt  time.Time `bson:"lastUpdatedAt" json:"lastUpdatedAt"`
	HasProfileMeta bool      `bson:"hasProfileMeta" json:"hasProfileMeta"`
}

// CounterConfig is both the definition and the value holder of a counter.
// Unlike leaderboards there is no separate record collection; the value lives
// on the config document itself.
type CounterConfig struct {
	ApplicationID string      `bson:"applicationId" json:"applicationId"`
	Key           string      `bson:"key" json:"key"`
	Description   string      `bson:"description,omitempty" json:"description,omitempty"`
	Value         int64       `bson:"value" json:"value"`
	Policy        ResetPolicy `bson:"resetPolicy" json:"resetPolicy"`
	NextResetAt   *time.Time  `bson:"nextResetAt" json:"nextResetAt,omitempty"`
	CreatedAt     time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time   `bson:"updatedAt" json:"updatedAt"`
}
