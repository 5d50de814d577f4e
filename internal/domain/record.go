package domain

import "time"

// CampaignFromRecord decodes a document-store-shaped campaign record
// (the original platform's export format) into a Campaign. Numeric
// fields are coerced with ParseAmount and date fields are carried
// through as DateLike for the normalizer, so a partially-populated or
// legacy-shaped record always decodes to something the reconciler can
// evaluate. It never fails.
func CampaignFromRecord(rec map[string]any) Campaign {
	c := Campaign{
		ID:        str(rec["id"]),
		Name:      str(rec["name"]),
		Slug:      str(rec["slug"]),
		Status:    Status(str(rec["status"])),
		Goal:      ParseAmount(rec["goal"]),
		Raised:    ParseAmount(rec["raised"]),
		Currency:  str(rec["currency"]),
		StartDate: rec["startDate"],
		EndDate:   rec["endDate"],
	}

	if c.Currency == "" {
		c.Currency = "GBP"
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if giftAid, ok := rec["giftAidEnabled"].(bool); ok {
		c.GiftAidEnabled = giftAid
	}

	// Fingerprints survive the import so already-handled transitions
	// are not re-fired against the migrated record.
	if v, ok := rec["autoCompletedGoal"]; ok && v != nil {
		goal := ParseAmount(v)
		c.AutoCompletedGoal = &goal
	}
	if at, ok := ParseInstant(rec["autoCompletedAt"]); ok {
		c.AutoCompletedAt = &at
	}
	if key, ok := EndDateKey(rec["autoPausedEndDate"]); ok {
		c.AutoPausedEndDate = key
	}
	if at, ok := ParseInstant(rec["autoPausedEndDateAt"]); ok {
		c.AutoPausedEndDateAt = &at
	}

	now := time.Now().UTC()
	if created, ok := ParseInstant(rec["createdAt"]); ok {
		c.CreatedAt = created
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	return c
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
