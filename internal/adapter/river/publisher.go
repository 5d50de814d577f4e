package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/solward/donatiq/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries the data needed to process a domain event
// asynchronously. River serializes this as JSON into its job queue
// table. It includes a snapshot of the campaign at the time the event
// was published, so the worker never needs to query the database.
type EventJobArgs struct {
	Event      string  `json:"event"`
	CampaignID string  `json:"campaign_id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Status     string  `json:"status"`
	Goal       float64 `json:"goal"`
	Raised     float64 `json:"raised"`
	Currency   string  `json:"currency"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "campaign.event" }

// ReconcileJobArgs is the periodic sweep job. It carries no payload:
// the worker walks every campaign and re-derives its status, catching
// transitions (end dates expiring overnight) that no API call would
// otherwise observe.
type ReconcileJobArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (ReconcileJobArgs) Kind() string { return "campaign.reconcile" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a domain event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, c domain.Campaign) error {
	_, err := p.client.Insert(ctx, EventJobArgs{
		Event:      string(event),
		CampaignID: c.ID,
		Name:       c.Name,
		Slug:       c.Slug,
		Status:     string(c.Status),
		Goal:       c.Goal,
		Raised:     c.Raised,
		Currency:   c.Currency,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
