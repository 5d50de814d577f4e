package domain

import "time"

// Status represents the lifecycle state of a campaign. The reconciler
// only manages the three lifecycle values; anything else (draft,
// archived, ...) is stored by operators and passed through untouched.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Managed reports whether s is one of the lifecycle-managed statuses.
func (s Status) Managed() bool {
	return s == StatusActive || s == StatusPaused || s == StatusCompleted
}

// Campaign is the core domain entity: a fundraising campaign shown on
// donation kiosks.
//
// StartDate and EndDate are DateLike values (see ParseInstant): records
// reach this service as native times, ISO strings, or document-store
// timestamp exports, and the reconciler normalizes them on every
// evaluation rather than trusting any one shape.
//
// AutoCompletedGoal and AutoPausedEndDate are idempotency fingerprints:
// they record which goal value / end date last caused an automatic
// transition, so reconciliation never re-fires the same transition for
// the same trigger. They are compared against the current trigger
// value, not treated as booleans: changing the goal or end date
// invalidates them.
type Campaign struct {
	ID             string
	Name           string
	Slug           string
	Status         Status
	Goal           float64 // 0 means no goal tracking
	Raised         float64
	Currency       string
	GiftAidEnabled bool

	StartDate any // DateLike
	EndDate   any // DateLike

	AutoCompletedGoal   *float64
	AutoCompletedAt     *time.Time
	AutoPausedEndDate   string // EndDateKey of the end date that triggered the last auto-pause
	AutoPausedEndDateAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCampaign creates a campaign in the initial "active" state.
// Date window and goal are evaluated by the reconciler, not here.
func NewCampaign(id, name, slug string, goal float64, startDate, endDate any) Campaign {
	now := time.Now().UTC()
	return Campaign{
		ID:        id,
		Name:      name,
		Slug:      slug,
		Status:    StatusActive,
		Goal:      goal,
		Currency:  "GBP",
		StartDate: startDate,
		EndDate:   endDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
