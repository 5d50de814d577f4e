package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrKioskNotFound    = errors.New("kiosk not found")
	ErrInvalidAmount    = errors.New("donation amount must be positive")
)

// SlugConflictError is returned when a campaign slug is already in use.
type SlugConflictError struct {
	Slug string
}

func (e *SlugConflictError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

// KioskTransitionError is returned when a kiosk state transition is
// not allowed.
type KioskTransitionError struct {
	Event   KioskEvent
	Current KioskStatus
}

func (e *KioskTransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
