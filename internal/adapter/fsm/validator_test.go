package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/solward/donatiq/internal/adapter/fsm"
	"github.com/solward/donatiq/internal/domain"
)

func TestValidator_AllTransitions(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, tr := range domain.KioskTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestValidator_InvalidTransition(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	// Can't start maintenance on a kiosk still provisioning.
	_, err := v.Apply(ctx, domain.KioskProvisioning, domain.KioskEventStartMaintenance)
	var trErr *domain.KioskTransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected KioskTransitionError, got %v", err)
	}
	if trErr.Event != domain.KioskEventStartMaintenance {
		t.Errorf("event = %q, want %q", trErr.Event, domain.KioskEventStartMaintenance)
	}
	if trErr.Current != domain.KioskProvisioning {
		t.Errorf("current = %q, want %q", trErr.Current, domain.KioskProvisioning)
	}
}

func TestValidator_FullLifecycle(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	steps := []struct {
		from  domain.KioskStatus
		event domain.KioskEvent
		want  domain.KioskStatus
	}{
		{domain.KioskProvisioning, domain.KioskEventActivate, domain.KioskOnline},
		{domain.KioskOnline, domain.KioskEventStartMaintenance, domain.KioskMaintenance},
		{domain.KioskMaintenance, domain.KioskEventResume, domain.KioskOnline},
		{domain.KioskOnline, domain.KioskEventRetire, domain.KioskRetired},
	}

	for _, step := range steps {
		got, err := v.Apply(ctx, step.from, step.event)
		if err != nil {
			t.Fatalf("Apply(%q, %q) error: %v", step.from, step.event, err)
		}
		if got != step.want {
			t.Errorf("Apply(%q, %q) = %q, want %q", step.from, step.event, got, step.want)
		}
	}
}

func TestValidator_RetireFromMaintenance(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	// Retire is valid from both "online" and "maintenance".
	got, err := v.Apply(ctx, domain.KioskMaintenance, domain.KioskEventRetire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.KioskRetired {
		t.Errorf("got %q, want %q", got, domain.KioskRetired)
	}
}
