package domain

import "time"

// LifecycleEvent is the closed set of inputs the reconciler accepts.
// Every reconciling event carries an explicit Now so evaluation is
// deterministic; callers that want wall-clock behavior supply it at
// the call site.
type LifecycleEvent interface {
	lifecycleEvent()
}

// SystemReconcile re-evaluates the campaign exactly as stored. This is
// the default periodic / on-read check.
type SystemReconcile struct {
	Now time.Time
}

// ManualStatusSet unconditionally sets the status: an explicit
// administrator override that bypasses reconciliation entirely.
type ManualStatusSet struct {
	Status Status
}

// GoalUpdated re-runs reconciliation with the campaign's goal replaced
// by the new value.
type GoalUpdated struct {
	Goal float64
	Now  time.Time
}

// EndDateUpdated re-runs reconciliation with the campaign's end date
// replaced by the new DateLike value.
type EndDateUpdated struct {
	EndDate any
	Now     time.Time
}

func (SystemReconcile) lifecycleEvent() {}
func (ManualStatusSet) lifecycleEvent() {}
func (GoalUpdated) lifecycleEvent()     {}
func (EndDateUpdated) lifecycleEvent()  {}

// StatusUpdate is the set of persisted fields a reconciliation
// proposes. The persistence adapter must apply it as a partial-field
// merge, updating exactly Status plus the non-nil fields, never as a
// full-record write, or it would clobber concurrently-written donation
// totals.
type StatusUpdate struct {
	Status              Status
	AutoCompletedGoal   *float64
	AutoCompletedAt     *time.Time
	AutoPausedEndDate   *string
	AutoPausedEndDateAt *time.Time
}

// ApplyTo returns a copy of c with the update's fields merged in,
// the in-memory equivalent of the partial-field write the persistence
// adapter performs.
func (u StatusUpdate) ApplyTo(c Campaign) Campaign {
	c.Status = u.Status
	if u.AutoCompletedGoal != nil {
		c.AutoCompletedGoal = u.AutoCompletedGoal
	}
	if u.AutoCompletedAt != nil {
		c.AutoCompletedAt = u.AutoCompletedAt
	}
	if u.AutoPausedEndDate != nil {
		c.AutoPausedEndDate = *u.AutoPausedEndDate
	}
	if u.AutoPausedEndDateAt != nil {
		c.AutoPausedEndDateAt = u.AutoPausedEndDateAt
	}
	return c
}

// Outcome is the result of applying a lifecycle event. Update is nil
// when no fingerprint bookkeeping is proposed; the caller still
// persists a bare status change when Status differs from the stored
// value.
type Outcome struct {
	Status Status
	Update *StatusUpdate
}

// ApplyLifecycleEvent computes a campaign's authoritative status from
// its raw fields plus the given event. It is pure: it never mutates
// the campaign, performs no I/O, and is safe to call repeatedly or
// concurrently on the same input.
func ApplyLifecycleEvent(c Campaign, event LifecycleEvent) Outcome {
	switch ev := event.(type) {
	case ManualStatusSet:
		return Outcome{
			Status: ev.Status,
			Update: &StatusUpdate{Status: ev.Status},
		}
	case GoalUpdated:
		c.Goal = ev.Goal
		return reconcile(c, ev.Now)
	case EndDateUpdated:
		c.EndDate = ev.EndDate
		return reconcile(c, ev.Now)
	case SystemReconcile:
		return reconcile(c, ev.Now)
	default:
		// Unknown event: reassert the stored status, propose nothing.
		return Outcome{Status: c.Status}
	}
}

// reconcile evaluates the lifecycle rules in strict priority order;
// the first matching rule wins.
func reconcile(c Campaign, now time.Time) Outcome {
	// Goal completion fires exactly once per distinct goal value: the
	// fingerprint must equal the current goal to suppress a re-fire.
	if c.Goal > 0 && c.Raised >= c.Goal &&
		(c.AutoCompletedGoal == nil || *c.AutoCompletedGoal != c.Goal) {
		goal := c.Goal
		return Outcome{
			Status: StatusCompleted,
			Update: &StatusUpdate{
				Status:            StatusCompleted,
				AutoCompletedGoal: &goal,
				AutoCompletedAt:   &now,
			},
		}
	}

	// Completion is sticky only for the current goal: with goal
	// tracking off, or with the fingerprint still matching, a
	// completed campaign stays completed. A goal raised above the
	// recorded fingerprint invalidates it and re-evaluation continues
	// from scratch.
	if c.Status == StatusCompleted &&
		(c.Goal <= 0 || (c.AutoCompletedGoal != nil && *c.AutoCompletedGoal == c.Goal)) {
		return Outcome{Status: StatusCompleted}
	}

	// End-date expiry: the campaign stays live through the entirety of
	// its end date's calendar day.
	if end, ok := ParseInstant(c.EndDate); ok && EndOfDay(end).Before(now) {
		key, _ := EndDateKey(c.EndDate)
		if c.Status != StatusPaused && c.AutoPausedEndDate != key {
			return Outcome{
				Status: StatusPaused,
				Update: &StatusUpdate{
					Status:              StatusPaused,
					AutoPausedEndDate:   &key,
					AutoPausedEndDateAt: &now,
				},
			}
		}
		// Either already paused, or the pause was recorded and an
		// operator has since moved the status elsewhere. Leave the
		// stored status alone.
		return Outcome{Status: c.Status}
	}

	// Statuses outside the managed lifecycle (draft, archived, ...)
	// are operator-owned; reconciliation never rewrites them.
	if !c.Status.Managed() {
		return Outcome{Status: c.Status}
	}

	start, hasStart := ParseInstant(c.StartDate)

	// Pre-launch: not yet live. Never fingerprinted; the condition is
	// purely a function of now vs the start date.
	if hasStart && StartOfDay(start).After(now) {
		return Outcome{Status: StatusPaused}
	}

	// Nothing to evaluate: a manual pause stays sticky.
	_, hasEnd := ParseInstant(c.EndDate)
	if !hasStart && !hasEnd && c.Status == StatusPaused {
		return Outcome{Status: StatusPaused}
	}

	// A started, unexpired, uncompleted campaign normalizes to active.
	return Outcome{Status: StatusActive}
}
