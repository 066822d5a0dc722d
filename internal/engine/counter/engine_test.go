package counter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gamekeep/gamekeep/internal/adapters/store"
	"github.com/gamekeep/gamekeep/internal/domain/model"
	"github.com/gamekeep/gamekeep/internal/domain/resetwin"
	"github.com/gamekeep/gamekeep/internal/engine/counter"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	appID  = "app-1"
	ctrKey = "daily-logins"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Set(t time.Time) { c.now = t }

func newCounter(ctx context.Context, s store.Store, value int64, policy model.ResetPolicy, next *time.Time) {
	So(s.PutCounterConfig(ctx, model.CounterConfig{
		ApplicationID: appID,
		Key:           ctrKey,
		Description:   "logins per window",
		Value:         value,
		Policy:        policy,
		NextResetAt:   next,
	}), ShouldBeNil)
}

func TestIncrement(t *testing.T) {
	Convey("Given a counter engine over a memory store", t, func() {
		ctx := context.Background()
		s := store.NewMemory()
		clock := &fixedClock{now: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)}
		eng := counter.New(s, counter.WithNow(clock.Now))

		Convey("When the counter was never created", func() {
			_, err := eng.Increment(ctx, appID, ctrKey, 3)

			Convey("Then it fails with not found and writes nothing", func() {
				So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
				_, err := s.GetCounterConfig(ctx, appID, ctrKey)
				So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the delta is not positive", func() {
			newCounter(ctx, s, 10, model.ResetPolicy{Kind: model.ResetPermanent}, nil)

			Convey("Then zero and negative deltas are rejected before any write", func() {
				_, err := eng.Increment(ctx, appID, ctrKey, 0)
				So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)

				_, err = eng.Increment(ctx, appID, ctrKey, -4)
				So(errors.Is(err, model.ErrInvalidArgument), ShouldBeTrue)

				cfg, err := s.GetCounterConfig(ctx, appID, ctrKey)
				So(err, ShouldBeNil)
				So(cfg.Value, ShouldEqual, 10)
			})
		})

		Convey("When the counter is permanent", func() {
			newCounter(ctx, s, 0, model.ResetPolicy{Kind: model.ResetPermanent}, nil)

			Convey("Then increments accumulate forever", func() {
				v, err := eng.Increment(ctx, appID, ctrKey, 3)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 3)

				v, err = eng.Increment(ctx, appID, ctrKey, 7)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 10)
			})
		})

		Convey("When a daily counter's boundary is already in the past", func() {
			past := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
			newCounter(ctx, s, 999, model.ResetPolicy{Kind: model.ResetDaily}, &past)

			v, err := eng.Increment(ctx, appID, ctrKey, 3)

			Convey("Then the value is zeroed before the delta is applied", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 3)
			})

			Convey("And the boundary advances to the next day from the call's now", func() {
				So(err, ShouldBeNil)
				cfg, err := s.GetCounterConfig(ctx, appID, ctrKey)
				So(err, ShouldBeNil)
				So(cfg.NextResetAt, ShouldNotBeNil)
				So(*cfg.NextResetAt, ShouldEqual, time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC))
			})
		})
	})
}

func TestGetValue(t *testing.T) {
	Convey("Given a counter with a value in the current window", t, func() {
		ctx := context.Background()
		s := store.NewMemory()
		clock := &fixedClock{now: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)}
		eng := counter.New(s, counter.WithNow(clock.Now))

		next := time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC)
		newCounter(ctx, s, 42, model.ResetPolicy{Kind: model.ResetDaily}, &next)

		Convey("When read inside the window", func() {
			v, err := eng.GetValue(ctx, appID, ctrKey)

			Convey("Then the stored value comes back untouched", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 42)
			})
		})

		Convey("When read after the boundary", func() {
			clock.Set(next.Add(time.Minute))
			v, err := eng.GetValue(ctx, appID, ctrKey)

			Convey("Then the read returns zero and persists the reset", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 0)

				cfg, err := s.GetCounterConfig(ctx, appID, ctrKey)
				So(err, ShouldBeNil)
				So(cfg.Value, ShouldEqual, 0)
				So(*cfg.NextResetAt, ShouldEqual, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC))
			})
		})

		Convey("When the counter does not exist", func() {
			_, err := eng.GetValue(ctx, appID, "missing")
			So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestReconfigure(t *testing.T) {
	Convey("Given an existing daily counter", t, func() {
		ctx := context.Background()
		s := store.NewMemory()
		clock := &fixedClock{now: time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)}
		eng := counter.New(s, counter.WithNow(clock.Now))

		next := time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC)
		newCounter(ctx, s, 17, model.ResetPolicy{Kind: model.ResetDaily}, &next)

		Convey("When switched to a custom 6-hour policy", func() {
			err := eng.Reconfigure(ctx, appID, ctrKey, model.ResetPolicy{Kind: model.ResetCustom, CustomHours: 6})

			Convey("Then the boundary is recomputed from now and the value survives", func() {
				So(err, ShouldBeNil)
				cfg, err := s.GetCounterConfig(ctx, appID, ctrKey)
				So(err, ShouldBeNil)
				So(cfg.Value, ShouldEqual, 17)
				So(*cfg.NextResetAt, ShouldEqual, clock.Now().Add(6*time.Hour))
			})
		})

		Convey("When switched to permanent", func() {
			err := eng.Reconfigure(ctx, appID, ctrKey, model.ResetPolicy{Kind: model.ResetPermanent})

			Convey("Then the boundary is cleared entirely", func() {
				So(err, ShouldBeNil)
				cfg, err := s.GetCounterConfig(ctx, appID, ctrKey)
				So(err, ShouldBeNil)
				So(cfg.NextResetAt, ShouldBeNil)
			})
		})

		Convey("When the new policy is malformed", func() {
			err := eng.Reconfigure(ctx, appID, ctrKey, model.ResetPolicy{Kind: model.ResetCustom})

			Convey("Then it is rejected and the stored policy is untouched", func() {
				So(errors.Is(err, resetwin.ErrInvalidPolicy), ShouldBeTrue)
				cfg, err := s.GetCounterConfig(ctx, appID, ctrKey)
				So(err, ShouldBeNil)
				So(cfg.Policy.Kind, ShouldEqual, model.ResetDaily)
			})
		})

		Convey("When the counter does not exist", func() {
			err := eng.Reconfigure(ctx, appID, "missing", model.ResetPolicy{Kind: model.ResetDaily})
			So(errors.Is(err, store.ErrNotFound), ShouldBeTrue)
		})
	})
}
