package domain

import "time"

// Donation is a single gift taken at a kiosk (or the web front end,
// in which case KioskID is empty). Amounts are in the campaign's
// currency; GiftAid records the donor's declaration so the claim can
// be assembled later.
type Donation struct {
	ID         string
	CampaignID string
	KioskID    string
	Amount     float64
	GiftAid    bool
	CreatedAt  time.Time
}
