package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/solward/donatiq/internal/domain"
)

// KioskService orchestrates kiosk fleet operations. Kiosk status is a
// guarded state machine, so every change goes through the transition
// validator.
type KioskService struct {
	kiosks    domain.KioskRepository
	campaigns domain.CampaignRepository
	validator domain.KioskTransitionValidator
}

// NewKioskService creates a service with the given adapters.
func NewKioskService(kiosks domain.KioskRepository, campaigns domain.CampaignRepository, validator domain.KioskTransitionValidator) *KioskService {
	return &KioskService{
		kiosks:    kiosks,
		campaigns: campaigns,
		validator: validator,
	}
}

// Register persists a new kiosk in the provisioning state.
func (s *KioskService) Register(ctx context.Context, name, location string) (domain.Kiosk, error) {
	k := domain.NewKiosk(uuid.NewString(), name, location)

	if err := s.kiosks.Create(ctx, k); err != nil {
		return domain.Kiosk{}, fmt.Errorf("creating kiosk: %w", err)
	}

	return k, nil
}

// GetByID returns a kiosk by its unique identifier.
func (s *KioskService) GetByID(ctx context.Context, id string) (domain.Kiosk, error) {
	return s.kiosks.GetByID(ctx, id)
}

// List returns all registered kiosks.
func (s *KioskService) List(ctx context.Context) ([]domain.Kiosk, error) {
	return s.kiosks.List(ctx)
}

// Transition applies a lifecycle event to a kiosk, changing its state.
func (s *KioskService) Transition(ctx context.Context, id string, event domain.KioskEvent) (domain.Kiosk, error) {
	k, err := s.kiosks.GetByID(ctx, id)
	if err != nil {
		return domain.Kiosk{}, err
	}

	newStatus, err := s.validator.Apply(ctx, k.Status, event)
	if err != nil {
		return domain.Kiosk{}, err
	}

	k.Status = newStatus

	if err := s.kiosks.Update(ctx, k); err != nil {
		return domain.Kiosk{}, fmt.Errorf("updating kiosk: %w", err)
	}

	return k, nil
}

// AssignCampaign points a kiosk at the campaign it should display.
// The campaign must exist; an empty id clears the assignment.
func (s *KioskService) AssignCampaign(ctx context.Context, kioskID, campaignID string) (domain.Kiosk, error) {
	k, err := s.kiosks.GetByID(ctx, kioskID)
	if err != nil {
		return domain.Kiosk{}, err
	}

	if campaignID != "" {
		if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
			return domain.Kiosk{}, err
		}
	}

	k.CampaignID = campaignID

	if err := s.kiosks.Update(ctx, k); err != nil {
		return domain.Kiosk{}, fmt.Errorf("updating kiosk: %w", err)
	}

	return k, nil
}
