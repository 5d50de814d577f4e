package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/solward/donatiq/internal/domain"
)

const tracerName = "github.com/solward/donatiq/internal/adapter/otel"

// TracingRepository wraps a domain.CampaignRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and
// records errors.
type TracingRepository struct {
	next   domain.CampaignRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.CampaignRepository.
var _ domain.CampaignRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.CampaignRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) Create(ctx context.Context, c domain.Campaign) error {
	ctx, span := r.tracer.Start(ctx, "CampaignRepository.Create",
		trace.WithAttributes(
			attribute.String("campaign.id", c.ID),
			attribute.String("campaign.slug", c.Slug),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) GetByID(ctx context.Context, id string) (domain.Campaign, error) {
	ctx, span := r.tracer.Start(ctx, "CampaignRepository.GetByID",
		trace.WithAttributes(attribute.String("campaign.id", id)),
	)
	defer span.End()

	c, err := r.next.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return c, err
}

func (r *TracingRepository) GetBySlug(ctx context.Context, slug string) (domain.Campaign, error) {
	ctx, span := r.tracer.Start(ctx, "CampaignRepository.GetBySlug",
		trace.WithAttributes(attribute.String("campaign.slug", slug)),
	)
	defer span.End()

	c, err := r.next.GetBySlug(ctx, slug)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return c, err
}

func (r *TracingRepository) List(ctx context.Context, filter domain.CampaignFilter) ([]domain.Campaign, error) {
	ctx, span := r.tracer.Start(ctx, "CampaignRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	campaigns, err := r.next.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(campaigns)))
	}
	return campaigns, err
}

func (r *TracingRepository) ApplyStatusUpdate(ctx context.Context, id string, update domain.StatusUpdate) error {
	ctx, span := r.tracer.Start(ctx, "CampaignRepository.ApplyStatusUpdate",
		trace.WithAttributes(
			attribute.String("campaign.id", id),
			attribute.String("campaign.status", string(update.Status)),
			attribute.Bool("update.completed_fingerprint", update.AutoCompletedGoal != nil),
			attribute.Bool("update.paused_fingerprint", update.AutoPausedEndDate != nil),
		),
	)
	defer span.End()

	err := r.next.ApplyStatusUpdate(ctx, id, update)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) AddToRaised(ctx context.Context, id string, amount float64) error {
	ctx, span := r.tracer.Start(ctx, "CampaignRepository.AddToRaised",
		trace.WithAttributes(
			attribute.String("campaign.id", id),
			attribute.Float64("donation.amount", amount),
		),
	)
	defer span.End()

	err := r.next.AddToRaised(ctx, id, amount)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) SetGoal(ctx context.Context, id string, goal float64) error {
	ctx, span := r.tracer.Start(ctx, "CampaignRepository.SetGoal",
		trace.WithAttributes(
			attribute.String("campaign.id", id),
			attribute.Float64("campaign.goal", goal),
		),
	)
	defer span.End()

	err := r.next.SetGoal(ctx, id, goal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) SetEndDate(ctx context.Context, id string, endDate *string) error {
	ctx, span := r.tracer.Start(ctx, "CampaignRepository.SetEndDate",
		trace.WithAttributes(attribute.String("campaign.id", id)),
	)
	defer span.End()

	if endDate != nil {
		span.SetAttributes(attribute.String("campaign.end_date", *endDate))
	}

	err := r.next.SetEndDate(ctx, id, endDate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
