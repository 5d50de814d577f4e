package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/solward/donatiq/internal/domain"
)

// CampaignService orchestrates campaign lifecycle operations. It is
// the persistence-sync side of the reconciliation engine: it loads a
// record, asks the pure kernel for the authoritative status, and, only
// when the answer differs from what is stored, issues a single
// partial-field write before returning the merged record.
type CampaignService struct {
	campaigns domain.CampaignRepository
	donations domain.DonationRepository
	publisher domain.EventPublisher

	// now supplies the clock for every reconciliation. The kernel
	// itself takes an explicit instant, so this is the only place the
	// wall clock enters the system.
	now func() time.Time
}

// NewCampaignService creates a service with the given adapters and
// clock. Production callers pass time.Now; tests pass a fixed instant.
func NewCampaignService(
	campaigns domain.CampaignRepository,
	donations domain.DonationRepository,
	publisher domain.EventPublisher,
	now func() time.Time,
) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		donations: donations,
		publisher: publisher,
		now:       now,
	}
}

// Create persists a new campaign and publishes a creation event. The
// initial status is reconciled immediately so a campaign with a future
// start date is born paused rather than waiting for the first sweep.
func (s *CampaignService) Create(ctx context.Context, name, slug string, goal float64, startDate, endDate any, giftAid bool) (domain.Campaign, error) {
	if _, err := s.campaigns.GetBySlug(ctx, slug); err == nil {
		return domain.Campaign{}, &domain.SlugConflictError{Slug: slug}
	}

	c := domain.NewCampaign(uuid.NewString(), name, slug, goal, startDate, endDate)
	c.GiftAidEnabled = giftAid

	out := domain.ApplyLifecycleEvent(c, domain.SystemReconcile{Now: s.now()})
	c.Status = out.Status
	if out.Update != nil {
		c = out.Update.ApplyTo(c)
	}

	if err := s.campaigns.Create(ctx, c); err != nil {
		return domain.Campaign{}, fmt.Errorf("creating campaign: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.EventCampaignCreated, c); err != nil {
		return domain.Campaign{}, fmt.Errorf("publishing creation event: %w", err)
	}

	return c, nil
}

// Import decodes a document-store-shaped legacy record and persists
// it. Malformed fields degrade to safe defaults; existing fingerprints
// survive so already-handled transitions are not re-fired.
func (s *CampaignService) Import(ctx context.Context, rec map[string]any) (domain.Campaign, error) {
	c := domain.CampaignFromRecord(rec)

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug != "" {
		if _, err := s.campaigns.GetBySlug(ctx, c.Slug); err == nil {
			return domain.Campaign{}, &domain.SlugConflictError{Slug: c.Slug}
		}
	}

	out := domain.ApplyLifecycleEvent(c, domain.SystemReconcile{Now: s.now()})
	c.Status = out.Status
	if out.Update != nil {
		c = out.Update.ApplyTo(c)
	}

	if err := s.campaigns.Create(ctx, c); err != nil {
		return domain.Campaign{}, fmt.Errorf("importing campaign: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.EventCampaignImported, c); err != nil {
		return domain.Campaign{}, fmt.Errorf("publishing import event: %w", err)
	}

	return c, nil
}

// GetByID returns a campaign, reconciling its status on the way out.
func (s *CampaignService) GetByID(ctx context.Context, id string) (domain.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}
	return s.reconcile(ctx, c)
}

// GetBySlug returns a campaign by slug, reconciling its status.
func (s *CampaignService) GetBySlug(ctx context.Context, slug string) (domain.Campaign, error) {
	c, err := s.campaigns.GetBySlug(ctx, slug)
	if err != nil {
		return domain.Campaign{}, err
	}
	return s.reconcile(ctx, c)
}

// List returns campaigns as stored. Listing stays write-free; the
// periodic reconcile sweep keeps stored statuses from going stale.
func (s *CampaignService) List(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	return s.campaigns.List(ctx, filter)
}

// SetStatus applies an administrator override. No reconciliation
// logic runs; the given status is persisted unconditionally.
func (s *CampaignService) SetStatus(ctx context.Context, id string, status domain.Status) (domain.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}

	out := domain.ApplyLifecycleEvent(c, domain.ManualStatusSet{Status: status})

	if err := s.campaigns.ApplyStatusUpdate(ctx, id, *out.Update); err != nil {
		return domain.Campaign{}, fmt.Errorf("applying status override: %w", err)
	}
	c = out.Update.ApplyTo(c)

	if err := s.publisher.Publish(ctx, domain.EventStatusChanged, c); err != nil {
		return domain.Campaign{}, fmt.Errorf("publishing status event: %w", err)
	}

	return c, nil
}

// UpdateGoal changes the campaign's goal and re-runs reconciliation
// against the new value. A previously recorded completion fingerprint
// that no longer matches is invalidated by the kernel.
func (s *CampaignService) UpdateGoal(ctx context.Context, id string, goal float64) (domain.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}

	if err := s.campaigns.SetGoal(ctx, id, goal); err != nil {
		return domain.Campaign{}, fmt.Errorf("updating goal: %w", err)
	}

	out := domain.ApplyLifecycleEvent(c, domain.GoalUpdated{Goal: goal, Now: s.now()})
	c.Goal = goal

	return s.persistOutcome(ctx, c, out)
}

// UpdateEndDate changes the campaign's end date and re-runs
// reconciliation against the new value. A nil end date clears it.
func (s *CampaignService) UpdateEndDate(ctx context.Context, id string, endDate *time.Time) (domain.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return domain.Campaign{}, err
	}

	var stored *string
	var dateLike any
	if endDate != nil {
		key := endDate.UTC().Format(time.RFC3339Nano)
		stored = &key
		dateLike = *endDate
	}

	if err := s.campaigns.SetEndDate(ctx, id, stored); err != nil {
		return domain.Campaign{}, fmt.Errorf("updating end date: %w", err)
	}

	out := domain.ApplyLifecycleEvent(c, domain.EndDateUpdated{EndDate: dateLike, Now: s.now()})
	c.EndDate = dateLike

	return s.persistOutcome(ctx, c, out)
}

// Donate records a donation, increments the raised total with a
// field-level write, and reconciles the campaign (which is how a
// goal-reaching gift flips the status to completed).
func (s *CampaignService) Donate(ctx context.Context, campaignID, kioskID string, amount float64, giftAid bool) (domain.Donation, domain.Campaign, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return domain.Donation{}, domain.Campaign{}, domain.ErrInvalidAmount
	}

	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return domain.Donation{}, domain.Campaign{}, err
	}

	d := domain.Donation{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		KioskID:    kioskID,
		Amount:     amount,
		GiftAid:    giftAid,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.donations.Create(ctx, d); err != nil {
		return domain.Donation{}, domain.Campaign{}, fmt.Errorf("recording donation: %w", err)
	}
	if err := s.campaigns.AddToRaised(ctx, campaignID, amount); err != nil {
		return domain.Donation{}, domain.Campaign{}, fmt.Errorf("incrementing raised: %w", err)
	}
	c.Raised += amount

	if err := s.publisher.Publish(ctx, domain.EventDonationReceived, c); err != nil {
		return domain.Donation{}, domain.Campaign{}, fmt.Errorf("publishing donation event: %w", err)
	}

	c, err = s.reconcile(ctx, c)
	if err != nil {
		return domain.Donation{}, domain.Campaign{}, err
	}

	return d, c, nil
}

// Donations lists the donations recorded against a campaign.
func (s *CampaignService) Donations(ctx context.Context, campaignID string) ([]domain.Donation, error) {
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.donations.ListByCampaign(ctx, campaignID)
}

// ReconcileAll sweeps every campaign through reconciliation and
// returns how many were changed. Called by the periodic job so expiry
// transitions land even when nobody reads a campaign.
func (s *CampaignService) ReconcileAll(ctx context.Context) (int, error) {
	campaigns, err := s.campaigns.List(ctx, domain.CampaignFilter{})
	if err != nil {
		return 0, fmt.Errorf("listing campaigns: %w", err)
	}

	changed := 0
	for _, c := range campaigns {
		reconciled, err := s.reconcile(ctx, c)
		if err != nil {
			return changed, fmt.Errorf("reconciling campaign %s: %w", c.ID, err)
		}
		if reconciled.Status != c.Status {
			changed++
		}
	}
	return changed, nil
}

// reconcile runs the kernel against the stored record and persists the
// proposal only when it differs; the conditional write makes
// repeated (including concurrent) reconciliation harmless.
func (s *CampaignService) reconcile(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	out := domain.ApplyLifecycleEvent(c, domain.SystemReconcile{Now: s.now()})
	if out.Status == c.Status && out.Update == nil {
		return c, nil
	}
	return s.persistOutcome(ctx, c, out)
}

// persistOutcome writes the proposed status update (if any difference
// exists), merges it into the in-memory record, and publishes the
// matching event.
func (s *CampaignService) persistOutcome(ctx context.Context, c domain.Campaign, out domain.Outcome) (domain.Campaign, error) {
	update := out.Update
	if update == nil {
		if out.Status == c.Status {
			return c, nil
		}
		update = &domain.StatusUpdate{Status: out.Status}
	}

	if err := s.campaigns.ApplyStatusUpdate(ctx, c.ID, *update); err != nil {
		return domain.Campaign{}, fmt.Errorf("applying status update: %w", err)
	}
	c = update.ApplyTo(c)

	event := domain.EventStatusChanged
	switch {
	case update.AutoCompletedGoal != nil:
		event = domain.EventAutoCompleted
	case update.AutoPausedEndDate != nil:
		event = domain.EventAutoPaused
	}
	if err := s.publisher.Publish(ctx, event, c); err != nil {
		return domain.Campaign{}, fmt.Errorf("publishing event %q: %w", event, err)
	}

	return c, nil
}
