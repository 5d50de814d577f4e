package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/solward/donatiq/internal/app"
	"github.com/solward/donatiq/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// CampaignResponse is the API representation of a campaign.
type CampaignResponse struct {
	ID             string   `json:"id" doc:"Unique identifier"`
	Name           string   `json:"name" doc:"Display name"`
	Slug           string   `json:"slug" doc:"URL-friendly identifier"`
	Status         string   `json:"status" doc:"Lifecycle state"`
	Goal           float64  `json:"goal" doc:"Fundraising goal (0 disables goal tracking)"`
	Raised         float64  `json:"raised" doc:"Total raised so far"`
	Currency       string   `json:"currency" doc:"ISO 4217 currency code"`
	GiftAidEnabled bool     `json:"gift_aid_enabled" doc:"Whether Gift Aid declarations are collected"`
	StartDate      *string  `json:"start_date,omitempty" doc:"Campaign start (ISO 8601)"`
	EndDate        *string  `json:"end_date,omitempty" doc:"Campaign end (ISO 8601)"`
	CompletedGoal  *float64 `json:"completed_goal,omitempty" doc:"Goal value that triggered automatic completion"`
	CreatedAt      string   `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt      string   `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toCampaignResponse(c domain.Campaign) CampaignResponse {
	resp := CampaignResponse{
		ID:             c.ID,
		Name:           c.Name,
		Slug:           c.Slug,
		Status:         string(c.Status),
		Goal:           c.Goal,
		Raised:         c.Raised,
		Currency:       c.Currency,
		GiftAidEnabled: c.GiftAidEnabled,
		CompletedGoal:  c.AutoCompletedGoal,
		CreatedAt:      c.CreatedAt.Format(timeFormat),
		UpdatedAt:      c.UpdatedAt.Format(timeFormat),
	}
	if key, ok := domain.InstantKey(c.StartDate); ok {
		resp.StartDate = &key
	}
	if key, ok := domain.InstantKey(c.EndDate); ok {
		resp.EndDate = &key
	}
	return resp
}

// DonationResponse is the API representation of a single donation.
type DonationResponse struct {
	ID         string  `json:"id" doc:"Unique identifier"`
	CampaignID string  `json:"campaign_id" doc:"Campaign the donation belongs to"`
	KioskID    string  `json:"kiosk_id,omitempty" doc:"Kiosk the donation was made at, if any"`
	Amount     float64 `json:"amount" doc:"Donated amount"`
	GiftAid    bool    `json:"gift_aid" doc:"Whether a Gift Aid declaration was made"`
	CreatedAt  string  `json:"created_at" doc:"Donation timestamp (ISO 8601)"`
}

func toDonationResponse(d domain.Donation) DonationResponse {
	return DonationResponse{
		ID:         d.ID,
		CampaignID: d.CampaignID,
		KioskID:    d.KioskID,
		Amount:     d.Amount,
		GiftAid:    d.GiftAid,
		CreatedAt:  d.CreatedAt.Format(timeFormat),
	}
}

// KioskResponse is the API representation of a kiosk.
type KioskResponse struct {
	ID         string `json:"id" doc:"Unique identifier"`
	Name       string `json:"name" doc:"Display name"`
	Location   string `json:"location" doc:"Physical location description"`
	Status     string `json:"status" doc:"Lifecycle state"`
	CampaignID string `json:"campaign_id,omitempty" doc:"Campaign currently assigned, if any"`
	CreatedAt  string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt  string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toKioskResponse(k domain.Kiosk) KioskResponse {
	return KioskResponse{
		ID:         k.ID,
		Name:       k.Name,
		Location:   k.Location,
		Status:     string(k.Status),
		CampaignID: k.CampaignID,
		CreatedAt:  k.CreatedAt.Format(timeFormat),
		UpdatedAt:  k.UpdatedAt.Format(timeFormat),
	}
}

// --- Create Campaign ---

type CreateCampaignInput struct {
	Body struct {
		Name      string  `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Slug      string  `json:"slug" minLength:"1" maxLength:"100" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"URL-friendly identifier (lowercase, hyphens)"`
		Goal      float64 `json:"goal,omitempty" minimum:"0" doc:"Fundraising goal (0 disables goal tracking)"`
		StartDate string  `json:"start_date,omitempty" doc:"Campaign start (ISO 8601 timestamp or date)"`
		EndDate   string  `json:"end_date,omitempty" doc:"Campaign end (ISO 8601 timestamp or date)"`
		GiftAid   bool    `json:"gift_aid_enabled,omitempty" doc:"Collect Gift Aid declarations"`
	}
}

type CreateCampaignOutput struct {
	Body CampaignResponse
}

// --- Get Campaign ---

type GetCampaignInput struct {
	ID string `path:"id" doc:"Campaign ID"`
}

type GetCampaignOutput struct {
	Body CampaignResponse
}

type GetCampaignBySlugInput struct {
	Slug string `path:"slug" doc:"Campaign slug"`
}

// --- List Campaigns ---

type ListCampaignsInput struct {
	Status string `query:"status" required:"false" doc:"Filter by status"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListCampaignsOutput struct {
	Body []CampaignResponse
}

// --- Status / goal / end date updates ---

type SetStatusInput struct {
	ID   string `path:"id" doc:"Campaign ID"`
	Body struct {
		Status string `json:"status" doc:"New status" enum:"active,paused,completed"`
	}
}

type SetGoalInput struct {
	ID   string `path:"id" doc:"Campaign ID"`
	Body struct {
		Goal float64 `json:"goal" minimum:"0" doc:"New fundraising goal (0 disables goal tracking)"`
	}
}

type SetEndDateInput struct {
	ID   string `path:"id" doc:"Campaign ID"`
	Body struct {
		EndDate *string `json:"end_date" doc:"New campaign end (ISO 8601), null to clear"`
	}
}

// --- Import ---

type ImportCampaignInput struct {
	Body map[string]any `doc:"Raw legacy campaign record"`
}

// --- Donations ---

type CreateDonationInput struct {
	ID   string `path:"id" doc:"Campaign ID"`
	Body struct {
		Amount  float64 `json:"amount" doc:"Donated amount"`
		KioskID string  `json:"kiosk_id,omitempty" doc:"Kiosk the donation was made at"`
		GiftAid bool    `json:"gift_aid,omitempty" doc:"Gift Aid declaration"`
	}
}

type CreateDonationOutput struct {
	Body struct {
		Donation DonationResponse `json:"donation"`
		Campaign CampaignResponse `json:"campaign" doc:"Campaign state after the donation landed"`
	}
}

type ListDonationsInput struct {
	ID string `path:"id" doc:"Campaign ID"`
}

type ListDonationsOutput struct {
	Body []DonationResponse
}

// --- Kiosks ---

type RegisterKioskInput struct {
	Body struct {
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Location string `json:"location" minLength:"1" maxLength:"255" doc:"Physical location description"`
	}
}

type KioskOutput struct {
	Body KioskResponse
}

type GetKioskInput struct {
	ID string `path:"id" doc:"Kiosk ID"`
}

type ListKiosksOutput struct {
	Body []KioskResponse
}

type KioskTransitionInput struct {
	ID   string `path:"id" doc:"Kiosk ID"`
	Body struct {
		Event string `json:"event" doc:"Lifecycle event to trigger" enum:"activate,start_maintenance,resume,retire"`
	}
}

type AssignCampaignInput struct {
	ID   string `path:"id" doc:"Kiosk ID"`
	Body struct {
		CampaignID string `json:"campaign_id" doc:"Campaign to display (empty clears the assignment)"`
	}
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, campaigns *app.CampaignService, kiosks *app.KioskService) {
	registerCampaignRoutes(api, campaigns)
	registerKioskRoutes(api, kiosks)
}

func registerCampaignRoutes(api huma.API, svc *app.CampaignService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-campaign",
		Method:      http.MethodPost,
		Path:        "/api/v1/campaigns",
		Summary:     "Create a new campaign",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *CreateCampaignInput) (*CreateCampaignOutput, error) {
		startDate, err := parseDateField("start_date", input.Body.StartDate)
		if err != nil {
			return nil, err
		}
		endDate, err := parseDateField("end_date", input.Body.EndDate)
		if err != nil {
			return nil, err
		}

		c, err := svc.Create(ctx, input.Body.Name, input.Body.Slug, input.Body.Goal, startDate, endDate, input.Body.GiftAid)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateCampaignOutput{Body: toCampaignResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "import-campaign",
		Method:      http.MethodPost,
		Path:        "/api/v1/campaigns/import",
		Summary:     "Import a legacy campaign record",
		Description: "Accepts a raw document-store export. Malformed amounts and dates degrade to safe defaults rather than rejecting the record.",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *ImportCampaignInput) (*CreateCampaignOutput, error) {
		c, err := svc.Import(ctx, input.Body)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateCampaignOutput{Body: toCampaignResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-campaign",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns/{id}",
		Summary:     "Get a campaign by ID",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *GetCampaignInput) (*GetCampaignOutput, error) {
		c, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetCampaignOutput{Body: toCampaignResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-campaign-by-slug",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns/slug/{slug}",
		Summary:     "Get a campaign by slug",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *GetCampaignBySlugInput) (*GetCampaignOutput, error) {
		c, err := svc.GetBySlug(ctx, input.Slug)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetCampaignOutput{Body: toCampaignResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-campaigns",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns",
		Summary:     "List campaigns",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *ListCampaignsInput) (*ListCampaignsOutput, error) {
		filter := domain.CampaignFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			filter.Status = &s
		}

		campaigns, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]CampaignResponse, len(campaigns))
		for i, c := range campaigns {
			resp[i] = toCampaignResponse(c)
		}
		return &ListCampaignsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-campaign-status",
		Method:      http.MethodPut,
		Path:        "/api/v1/campaigns/{id}/status",
		Summary:     "Override a campaign's status",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *SetStatusInput) (*GetCampaignOutput, error) {
		c, err := svc.SetStatus(ctx, input.ID, domain.Status(input.Body.Status))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetCampaignOutput{Body: toCampaignResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-campaign-goal",
		Method:      http.MethodPut,
		Path:        "/api/v1/campaigns/{id}/goal",
		Summary:     "Change a campaign's fundraising goal",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *SetGoalInput) (*GetCampaignOutput, error) {
		c, err := svc.UpdateGoal(ctx, input.ID, input.Body.Goal)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetCampaignOutput{Body: toCampaignResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-campaign-end-date",
		Method:      http.MethodPut,
		Path:        "/api/v1/campaigns/{id}/end-date",
		Summary:     "Change or clear a campaign's end date",
		Tags:        []string{"Campaigns"},
	}, func(ctx context.Context, input *SetEndDateInput) (*GetCampaignOutput, error) {
		var endDate *time.Time
		if input.Body.EndDate != nil {
			parsed, ok := domain.ParseInstant(*input.Body.EndDate)
			if !ok {
				return nil, huma.Error422UnprocessableEntity("end_date is not a recognized timestamp")
			}
			endDate = &parsed
		}

		c, err := svc.UpdateEndDate(ctx, input.ID, endDate)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetCampaignOutput{Body: toCampaignResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-donation",
		Method:      http.MethodPost,
		Path:        "/api/v1/campaigns/{id}/donations",
		Summary:     "Record a donation against a campaign",
		Tags:        []string{"Donations"},
	}, func(ctx context.Context, input *CreateDonationInput) (*CreateDonationOutput, error) {
		d, c, err := svc.Donate(ctx, input.ID, input.Body.KioskID, input.Body.Amount, input.Body.GiftAid)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &CreateDonationOutput{}
		out.Body.Donation = toDonationResponse(d)
		out.Body.Campaign = toCampaignResponse(c)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-donations",
		Method:      http.MethodGet,
		Path:        "/api/v1/campaigns/{id}/donations",
		Summary:     "List a campaign's donations",
		Tags:        []string{"Donations"},
	}, func(ctx context.Context, input *ListDonationsInput) (*ListDonationsOutput, error) {
		donations, err := svc.Donations(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]DonationResponse, len(donations))
		for i, d := range donations {
			resp[i] = toDonationResponse(d)
		}
		return &ListDonationsOutput{Body: resp}, nil
	})
}

func registerKioskRoutes(api huma.API, svc *app.KioskService) {
	huma.Register(api, huma.Operation{
		OperationID: "register-kiosk",
		Method:      http.MethodPost,
		Path:        "/api/v1/kiosks",
		Summary:     "Register a new kiosk",
		Tags:        []string{"Kiosks"},
	}, func(ctx context.Context, input *RegisterKioskInput) (*KioskOutput, error) {
		k, err := svc.Register(ctx, input.Body.Name, input.Body.Location)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &KioskOutput{Body: toKioskResponse(k)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-kiosk",
		Method:      http.MethodGet,
		Path:        "/api/v1/kiosks/{id}",
		Summary:     "Get a kiosk by ID",
		Tags:        []string{"Kiosks"},
	}, func(ctx context.Context, input *GetKioskInput) (*KioskOutput, error) {
		k, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &KioskOutput{Body: toKioskResponse(k)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-kiosks",
		Method:      http.MethodGet,
		Path:        "/api/v1/kiosks",
		Summary:     "List kiosks",
		Tags:        []string{"Kiosks"},
	}, func(ctx context.Context, _ *struct{}) (*ListKiosksOutput, error) {
		kiosks, err := svc.List(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]KioskResponse, len(kiosks))
		for i, k := range kiosks {
			resp[i] = toKioskResponse(k)
		}
		return &ListKiosksOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-kiosk",
		Method:      http.MethodPost,
		Path:        "/api/v1/kiosks/{id}/events",
		Summary:     "Trigger a kiosk lifecycle event",
		Tags:        []string{"Kiosks"},
	}, func(ctx context.Context, input *KioskTransitionInput) (*KioskOutput, error) {
		k, err := svc.Transition(ctx, input.ID, domain.KioskEvent(input.Body.Event))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &KioskOutput{Body: toKioskResponse(k)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-kiosk-campaign",
		Method:      http.MethodPut,
		Path:        "/api/v1/kiosks/{id}/campaign",
		Summary:     "Assign the campaign a kiosk displays",
		Tags:        []string{"Kiosks"},
	}, func(ctx context.Context, input *AssignCampaignInput) (*KioskOutput, error) {
		k, err := svc.AssignCampaign(ctx, input.ID, input.Body.CampaignID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &KioskOutput{Body: toKioskResponse(k)}, nil
	})
}

// parseDateField validates an optional ISO date string from the API.
// An empty string means the field was omitted.
func parseDateField(name, value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	if _, ok := domain.ParseInstant(value); !ok {
		return nil, huma.Error422UnprocessableEntity(name + " is not a recognized timestamp")
	}
	return value, nil
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	if errors.Is(err, domain.ErrCampaignNotFound) {
		return huma.Error404NotFound("campaign not found")
	}
	if errors.Is(err, domain.ErrKioskNotFound) {
		return huma.Error404NotFound("kiosk not found")
	}
	if errors.Is(err, domain.ErrInvalidAmount) {
		return huma.Error422UnprocessableEntity(domain.ErrInvalidAmount.Error())
	}

	var slugErr *domain.SlugConflictError
	if errors.As(err, &slugErr) {
		return huma.Error409Conflict(slugErr.Error())
	}

	var trErr *domain.KioskTransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
