package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"visitor-registry-backend/internal/model"
	"visitor-registry-backend/internal/store"
)

// CheckerOuter is the visit-closing primitive the scheduler shares with the
// admin bulk action.
type CheckerOuter interface {
	CheckOutAll(ctx context.Context) (int64, error)
}

// Scheduler force-closes every active visit once per calendar day at local
// midnight. It is an explicit long-lived task owned by the composition
// root; Run exits only when the context is cancelled.
type Scheduler struct {
	checkout CheckerOuter
	store    store.Store
	loc      *time.Location

	// wait returns the delay before the next firing. Overridable in tests.
	wait func() time.Duration
}

// New creates a scheduler operating in the given timezone.
func New(checkout CheckerOuter, s store.Store, timezone string) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", timezone, err)
	}
	sched := &Scheduler{checkout: checkout, store: s, loc: loc}
	sched.wait = func() time.Duration {
		return sched.untilNextMidnight(time.Now().In(loc))
	}
	return sched, nil
}

// Run arms a one-shot timer for the next local midnight, fires the
// auto-checkout, and re-arms. A failed run logs an error entry and never
// stops future runs.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		wait := s.wait()
		log.Printf("auto-checkout scheduled in %s", wait.Round(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			s.runCheckout(ctx, model.ActionScheduledCheckout, nil)
		case <-ctx.Done():
			timer.Stop()
			log.Println("auto-checkout scheduler stopped")
			return
		}
	}
}

// RunManual triggers the same checkout primitive on demand, logging the
// acting admin id so manual and scheduled runs are distinguishable in the
// audit trail.
func (s *Scheduler) RunManual(ctx context.Context, adminID *int64) (int64, error) {
	return s.runCheckout(ctx, model.ActionManualCheckout, adminID)
}

func (s *Scheduler) runCheckout(ctx context.Context, action string, adminID *int64) (int64, error) {
	count, err := s.checkout.CheckOutAll(ctx)

	entry := &model.SystemLog{
		Action:        action,
		AdminID:       adminID,
		AffectedCount: count,
	}
	if err != nil {
		entry.Details = fmt.Sprintf("checkout failed: %v", err)
		log.Printf("auto-checkout failed: %v", err)
	} else {
		entry.Details = fmt.Sprintf("checked out %d active visit(s)", count)
		log.Printf("auto-checkout closed %d visit(s)", count)
	}

	if logErr := s.store.AppendSystemLog(ctx, entry); logErr != nil {
		log.Printf("failed to write system log entry: %v", logErr)
	}
	return count, err
}

// untilNextMidnight returns the duration from now to the next local
// midnight. Computed via date arithmetic so DST transitions land on the
// real wall-clock midnight.
func (s *Scheduler) untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.loc)
	return next.Sub(now)
}
