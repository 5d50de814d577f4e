package otel_test

import (
	"context"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel/codes"

	adapter "github.com/solward/donatiq/internal/adapter/otel"
	"github.com/solward/donatiq/internal/domain"
)

// --- Mock publisher ---

type mockPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	event    domain.Event
	campaign domain.Campaign
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, c domain.Campaign) error {
	m.events = append(m.events, publishedEvent{event: e, campaign: c})
	return nil
}

type failingPublisher struct{}

func (p *failingPublisher) Publish(_ context.Context, _ domain.Event, _ domain.Campaign) error {
	return fmt.Errorf("publish failed")
}

// --- Tests ---

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &mockPublisher{}
	pub := adapter.NewTracingPublisher(inner)

	campaign := domain.NewCampaign("c-1", "Winter Appeal", "winter-appeal", 500, nil, nil)
	if err := pub.Publish(context.Background(), domain.EventAutoCompleted, campaign); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EventPublisher.Publish" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "EventPublisher.Publish")
	}

	assertAttribute(t, spans[0], "event.type", "campaign.auto_completed")
	assertAttribute(t, spans[0], "campaign.id", "c-1")
	assertAttribute(t, spans[0], "campaign.slug", "winter-appeal")

	if len(inner.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(inner.events))
	}
}

func TestTracingPublisher_Publish_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	pub := adapter.NewTracingPublisher(&failingPublisher{})

	campaign := domain.NewCampaign("c-1", "Winter Appeal", "winter-appeal", 500, nil, nil)
	err := pub.Publish(context.Background(), domain.EventDonationReceived, campaign)
	if err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}
