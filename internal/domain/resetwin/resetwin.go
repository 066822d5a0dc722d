// Package resetwin computes periodic reset boundaries for leaderboards and
// counters. Everything here is pure: callers pass "now" in and persist the
// result themselves, which keeps window math testable independent of storage.
package resetwin

import (
	"fmt"
	"time"

	"github.com/gamekeep/gamekeep/internal/domain/model"
)

const hoursPerDay = 24

// NextBoundary returns the next reset boundary after now for the given
// policy, or nil for a permanent policy. Calendar kinds are computed in UTC
// so every caller agrees on where a day, week, or month starts.
func NextBoundary(p model.ResetPolicy, now time.Time) (*time.Time, error) {
	now = now.UTC()
	switch p.Kind {
	case model.ResetPermanent:
		return nil, nil
	case model.ResetDaily:
		y, m, d := now.Date()
		t := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
		return &t, nil
	case model.ResetWeekly:
		// Weeks start on Monday.
		y, m, d := now.Date()
		days := (8 - int(now.Weekday())) % 7
		if days == 0 {
			days = 7
		}
		t := time.Date(y, m, d+days, 0, 0, 0, 0, time.UTC)
		return &t, nil
	case model.ResetMonthly:
		y, m, _ := now.Date()
		t := time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
		return &t, nil
	case model.ResetCustom:
		if p.CustomHours <= 0 {
			return nil, fmt.Errorf("%w: custom policy needs positive customHours, got %d", ErrInvalidPolicy, p.CustomHours)
		}
		t := now.Add(time.Duration(p.CustomHours) * time.Hour)
		return &t, nil
	default:
		return nil, fmt.Errorf("%w: unknown reset kind %q", ErrInvalidPolicy, p.Kind)
	}
}

// Elapsed reports whether the window ending at next has passed. The boundary
// instant itself counts as elapsed. A nil next never elapses.
func Elapsed(next *time.Time, now time.Time) bool {
	if next == nil {
		return false
	}
	return !now.Before(*next)
}

// Validate checks a policy for internal consistency without computing a
// boundary. Used by admin surfaces before persisting a config.
func Validate(p model.ResetPolicy) error {
	_, err := NextBoundary(p, time.Unix(0, 0))
	return err
}

// Span returns the nominal length of one window for a policy, used only for
// reporting. Calendar months are approximated as 30 days.
func Span(p model.ResetPolicy) time.Duration {
	switch p.Kind {
	case model.ResetDaily:
		return hoursPerDay * time.Hour
	case model.ResetWeekly:
		return 7 * hoursPerDay * time.Hour
	case model.ResetMonthly:
		return 30 * hoursPerDay * time.Hour
	case model.ResetCustom:
		return time.Duration(p.CustomHours) * time.Hour
	default:
		return 0
	}
}
