package domain

import "context"

// CampaignRepository defines the persistence contract for campaigns.
//
// ApplyStatusUpdate and AddToRaised are deliberately partial-field
// operations: status reconciliation and donation posting may race, and
// field-level writes keep either side from clobbering the other. No
// method here ever rewrites a full campaign record except Create.
type CampaignRepository interface {
	Create(ctx context.Context, c Campaign) error
	GetByID(ctx context.Context, id string) (Campaign, error)
	GetBySlug(ctx context.Context, slug string) (Campaign, error)
	List(ctx context.Context, filter CampaignFilter) ([]Campaign, error)

	// ApplyStatusUpdate merges a proposed status update into the
	// stored record, touching exactly the fields the update carries.
	ApplyStatusUpdate(ctx context.Context, id string, update StatusUpdate) error

	// AddToRaised atomically increments the raised amount.
	AddToRaised(ctx context.Context, id string, amount float64) error

	SetGoal(ctx context.Context, id string, goal float64) error
	SetEndDate(ctx context.Context, id string, endDate *string) error
}

// CampaignFilter holds optional criteria for listing campaigns.
type CampaignFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// DonationRepository defines the persistence contract for donations.
type DonationRepository interface {
	Create(ctx context.Context, d Donation) error
	ListByCampaign(ctx context.Context, campaignID string) ([]Donation, error)
}

// KioskRepository defines the persistence contract for kiosks.
type KioskRepository interface {
	Create(ctx context.Context, k Kiosk) error
	GetByID(ctx context.Context, id string) (Kiosk, error)
	List(ctx context.Context) ([]Kiosk, error)
	Update(ctx context.Context, k Kiosk) error
}

// Event identifies a domain event emitted to the async pipeline.
type Event string

const (
	EventCampaignCreated  Event = "campaign.created"
	EventCampaignImported Event = "campaign.imported"
	EventDonationReceived Event = "donation.received"
	EventAutoCompleted    Event = "campaign.auto_completed"
	EventAutoPaused       Event = "campaign.auto_paused"
	EventStatusChanged    Event = "campaign.status_changed"
)

// EventPublisher defines the contract for emitting domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, c Campaign) error
}

// KioskTransitionValidator checks whether a kiosk lifecycle event is
// valid from the current status and returns the destination status.
type KioskTransitionValidator interface {
	Apply(ctx context.Context, current KioskStatus, event KioskEvent) (KioskStatus, error)
}
