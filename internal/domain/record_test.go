package domain_test

import (
	"testing"
	"time"

	"github.com/solward/donatiq/internal/domain"
)

func TestCampaignFromRecord_FullRecord(t *testing.T) {
	rec := map[string]any{
		"id":             "c-legacy-1",
		"name":           "Roof Fund",
		"slug":           "roof-fund",
		"status":         "active",
		"goal":           float64(5000),
		"raised":         float64(1200.50),
		"currency":       "GBP",
		"giftAidEnabled": true,
		"startDate":      "2025-01-01T00:00:00Z",
		"endDate":        map[string]any{"seconds": float64(1767139200)},
	}

	c := domain.CampaignFromRecord(rec)

	if c.ID != "c-legacy-1" {
		t.Errorf("ID = %q, want %q", c.ID, "c-legacy-1")
	}
	if c.Goal != 5000 {
		t.Errorf("Goal = %v, want 5000", c.Goal)
	}
	if c.Raised != 1200.50 {
		t.Errorf("Raised = %v, want 1200.50", c.Raised)
	}
	if !c.GiftAidEnabled {
		t.Error("GiftAidEnabled should be true")
	}

	// Both date shapes must survive for the normalizer.
	if _, ok := domain.ParseInstant(c.StartDate); !ok {
		t.Error("StartDate should normalize")
	}
	if end, ok := domain.ParseInstant(c.EndDate); !ok || end.Unix() != 1767139200 {
		t.Errorf("EndDate = %v (%v), want seconds 1767139200", end, ok)
	}
}

func TestCampaignFromRecord_MalformedDegrades(t *testing.T) {
	rec := map[string]any{
		"id":     "c-legacy-2",
		"name":   "Broken Export",
		"goal":   "five thousand",
		"raised": nil,
		"endDate": map[string]any{
			"seconds": "not a number",
		},
	}

	c := domain.CampaignFromRecord(rec)

	if c.Goal != 0 {
		t.Errorf("Goal = %v, want 0 (no goal tracking)", c.Goal)
	}
	if c.Raised != 0 {
		t.Errorf("Raised = %v, want 0", c.Raised)
	}
	if c.Status != domain.StatusActive {
		t.Errorf("Status = %q, want default %q", c.Status, domain.StatusActive)
	}
	if c.Currency != "GBP" {
		t.Errorf("Currency = %q, want default GBP", c.Currency)
	}
	if _, ok := domain.ParseInstant(c.EndDate); ok {
		t.Error("malformed EndDate should not normalize")
	}

	// The decoded record is still reconcilable.
	out := domain.ApplyLifecycleEvent(c, domain.SystemReconcile{Now: testNow})
	if out.Status != domain.StatusActive {
		t.Errorf("reconciled status = %q, want %q", out.Status, domain.StatusActive)
	}
}

func TestCampaignFromRecord_FingerprintsSurvive(t *testing.T) {
	end := "2025-03-31T00:00:00Z"
	rec := map[string]any{
		"id":                  "c-legacy-3",
		"status":              "paused",
		"endDate":             end,
		"autoPausedEndDate":   end,
		"autoPausedEndDateAt": "2025-04-01T00:05:00Z",
		"autoCompletedGoal":   float64(1000),
		"autoCompletedAt":     "2025-02-01T09:00:00Z",
	}

	c := domain.CampaignFromRecord(rec)

	wantKey, _ := domain.EndDateKey(end)
	if c.AutoPausedEndDate != wantKey {
		t.Errorf("AutoPausedEndDate = %q, want %q", c.AutoPausedEndDate, wantKey)
	}
	if c.AutoCompletedGoal == nil || *c.AutoCompletedGoal != 1000 {
		t.Errorf("AutoCompletedGoal = %v, want 1000", c.AutoCompletedGoal)
	}
	if c.AutoCompletedAt == nil {
		t.Fatal("AutoCompletedAt should survive")
	}
	if want := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC); !c.AutoCompletedAt.Equal(want) {
		t.Errorf("AutoCompletedAt = %v, want %v", c.AutoCompletedAt, want)
	}

	// With the fingerprint intact, reconciling the migrated record
	// proposes no re-fire of the pause.
	out := domain.ApplyLifecycleEvent(c, domain.SystemReconcile{Now: testNow})
	if out.Update != nil {
		t.Errorf("unexpected update %+v", out.Update)
	}
}
