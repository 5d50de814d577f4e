package domain

import "time"

// KioskStatus represents the lifecycle state of a donation kiosk.
// Unlike campaign status, which is recomputed from raw fields, kiosk
// status only ever changes through guarded transitions.
type KioskStatus string

const (
	KioskProvisioning KioskStatus = "provisioning"
	KioskOnline       KioskStatus = "online"
	KioskMaintenance  KioskStatus = "maintenance"
	KioskRetired      KioskStatus = "retired"
)

// KioskEvent represents an action that triggers a kiosk state change.
type KioskEvent string

const (
	KioskEventActivate         KioskEvent = "activate"
	KioskEventStartMaintenance KioskEvent = "start_maintenance"
	KioskEventResume           KioskEvent = "resume"
	KioskEventRetire           KioskEvent = "retire"
)

// KioskTransition defines a valid state change: an event moves a kiosk
// from Src to Dst.
type KioskTransition struct {
	Event KioskEvent
	Src   KioskStatus
	Dst   KioskStatus
}

// KioskTransitions defines all valid state changes in the kiosk
// lifecycle. This is domain knowledge consumed by the FSM adapter.
var KioskTransitions = []KioskTransition{
	{Event: KioskEventActivate, Src: KioskProvisioning, Dst: KioskOnline},
	{Event: KioskEventStartMaintenance, Src: KioskOnline, Dst: KioskMaintenance},
	{Event: KioskEventResume, Src: KioskMaintenance, Dst: KioskOnline},
	{Event: KioskEventRetire, Src: KioskOnline, Dst: KioskRetired},
	{Event: KioskEventRetire, Src: KioskMaintenance, Dst: KioskRetired},
}

// Kiosk is a physical donation terminal deployed at a venue.
type Kiosk struct {
	ID         string
	Name       string
	Location   string
	Status     KioskStatus
	CampaignID string // campaign currently shown on this kiosk, if any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewKiosk creates a kiosk in the initial "provisioning" state.
func NewKiosk(id, name, location string) Kiosk {
	now := time.Now().UTC()
	return Kiosk{
		ID:        id,
		Name:      name,
		Location:  location,
		Status:    KioskProvisioning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
