package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/solward/donatiq/internal/adapter/fsm"
	adapter "github.com/solward/donatiq/internal/adapter/http"
	"github.com/solward/donatiq/internal/adapter/sqlite"
	"github.com/solward/donatiq/internal/app"
	"github.com/solward/donatiq/internal/domain"
)

// noopPublisher is a no-op EventPublisher for tests.
type noopPublisher struct{}

func (p *noopPublisher) Publish(_ context.Context, _ domain.Event, _ domain.Campaign) error {
	return nil
}

// fixedNow is the clock every test server runs on.
var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

// newTestServer creates a full-stack httptest.Server with SQLite in-memory.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	campaigns := app.NewCampaignService(store.Campaigns(), store.Donations(), &noopPublisher{}, func() time.Time { return fixedNow })
	kiosks := app.NewKioskService(store.Kiosks(), store.Campaigns(), fsm.New())

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("donatiq", "0.1.0"))
	adapter.Register(api, campaigns, kiosks)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

// doRequest performs an HTTP request with context (avoids noctx linter).
func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}

	return resp
}

func decodeCampaign(t *testing.T, resp *http.Response) adapter.CampaignResponse {
	t.Helper()
	var c adapter.CampaignResponse
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("decode campaign: %v", err)
	}
	return c
}

// mustCreateCampaign creates a campaign via the API and returns its response.
func mustCreateCampaign(t *testing.T, srv *httptest.Server, body string) adapter.CampaignResponse {
	t.Helper()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create campaign: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	return decodeCampaign(t, resp)
}

func mustRegisterKiosk(t *testing.T, srv *httptest.Server, name, location string) adapter.KioskResponse {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"location":%q}`, name, location)
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/kiosks", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register kiosk: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var k adapter.KioskResponse
	if err := json.NewDecoder(resp.Body).Decode(&k); err != nil {
		t.Fatalf("decode kiosk: %v", err)
	}
	return k
}

// --- Create ---

func TestCreateCampaign(t *testing.T) {
	srv := newTestServer(t)
	c := mustCreateCampaign(t, srv, `{"name":"Winter Appeal","slug":"winter-appeal","goal":500,"gift_aid_enabled":true}`)

	if c.ID == "" {
		t.Error("ID should not be empty")
	}
	if c.Name != "Winter Appeal" {
		t.Errorf("Name = %q, want %q", c.Name, "Winter Appeal")
	}
	if c.Status != "active" {
		t.Errorf("Status = %q, want %q", c.Status, "active")
	}
	if c.Goal != 500 {
		t.Errorf("Goal = %v, want 500", c.Goal)
	}
	if c.Currency != "GBP" {
		t.Errorf("Currency = %q, want %q", c.Currency, "GBP")
	}
	if !c.GiftAidEnabled {
		t.Error("GiftAidEnabled should be true")
	}
	if c.CreatedAt == "" {
		t.Error("CreatedAt should not be empty")
	}
}

func TestCreateCampaign_FutureStartIsBornPaused(t *testing.T) {
	srv := newTestServer(t)
	c := mustCreateCampaign(t, srv, `{"name":"Autumn Appeal","slug":"autumn-appeal","start_date":"2025-09-01"}`)

	if c.Status != "paused" {
		t.Errorf("Status = %q, want %q", c.Status, "paused")
	}
}

func TestCreateCampaign_DuplicateSlug(t *testing.T) {
	srv := newTestServer(t)
	mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns", `{"name":"Appeal 2","slug":"appeal"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestCreateCampaign_InvalidSlug(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns", `{"name":"Appeal","slug":"INVALID SLUG!"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestCreateCampaign_UnparseableDate(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns", `{"name":"Appeal","slug":"appeal","end_date":"not a date"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

// --- Import ---

func TestImportCampaign_CoercesLegacyRecord(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"id": "c-legacy-1",
		"name": "Organ Restoration",
		"slug": "organ-restoration",
		"goal": "2500",
		"raised": 2600.50,
		"endDate": {"seconds": 1767139199, "nanoseconds": 0}
	}`
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns/import", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	c := decodeCampaign(t, resp)
	if c.ID != "c-legacy-1" {
		t.Errorf("ID = %q, want %q", c.ID, "c-legacy-1")
	}
	if c.Goal != 2500 {
		t.Errorf("Goal = %v, want 2500 (string amount coerced)", c.Goal)
	}
	// Raised over goal: imported record lands completed.
	if c.Status != "completed" {
		t.Errorf("Status = %q, want %q", c.Status, "completed")
	}
}

// --- Get ---

func TestGetCampaign(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/campaigns/"+created.ID, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	c := decodeCampaign(t, resp)
	if c.ID != created.ID {
		t.Errorf("ID = %q, want %q", c.ID, created.ID)
	}
}

func TestGetCampaign_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/campaigns/nonexistent", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestGetCampaignBySlug(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/campaigns/slug/appeal", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	c := decodeCampaign(t, resp)
	if c.ID != created.ID {
		t.Errorf("ID = %q, want %q", c.ID, created.ID)
	}
}

// Reads reconcile: a campaign whose end date passed while nobody was
// looking comes back paused from a plain GET.
func TestGetCampaign_ExpiredEndDatePausesOnRead(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal","end_date":"2025-06-01"}`)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/campaigns/"+created.ID, "")
	defer resp.Body.Close()

	c := decodeCampaign(t, resp)
	if c.Status != "paused" {
		t.Errorf("Status = %q, want %q", c.Status, "paused")
	}
}

// --- List ---

func TestListCampaigns(t *testing.T) {
	srv := newTestServer(t)
	mustCreateCampaign(t, srv, `{"name":"A","slug":"a"}`)
	mustCreateCampaign(t, srv, `{"name":"B","slug":"b"}`)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/campaigns", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var campaigns []adapter.CampaignResponse
	if err := json.NewDecoder(resp.Body).Decode(&campaigns); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(campaigns) != 2 {
		t.Errorf("got %d campaigns, want 2", len(campaigns))
	}
}

func TestListCampaigns_FilterByStatus(t *testing.T) {
	srv := newTestServer(t)
	mustCreateCampaign(t, srv, `{"name":"A","slug":"a"}`)
	// Future start date: born paused.
	mustCreateCampaign(t, srv, `{"name":"B","slug":"b","start_date":"2025-09-01"}`)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/campaigns?status=paused", "")
	defer resp.Body.Close()

	var campaigns []adapter.CampaignResponse
	if err := json.NewDecoder(resp.Body).Decode(&campaigns); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(campaigns) != 1 {
		t.Fatalf("got %d campaigns, want 1", len(campaigns))
	}
	if campaigns[0].Slug != "b" {
		t.Errorf("Slug = %q, want %q", campaigns[0].Slug, "b")
	}
}

// --- Status / goal / end date ---

func TestSetStatus_Override(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/campaigns/"+created.ID+"/status", `{"status":"paused"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	c := decodeCampaign(t, resp)
	if c.Status != "paused" {
		t.Errorf("Status = %q, want %q", c.Status, "paused")
	}
}

func TestSetGoal_CrossedGoalCompletes(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal","goal":1000}`)

	// Donate most of the way there.
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns/"+created.ID+"/donations", `{"amount":600}`)
	resp.Body.Close()

	// Lowering the goal below the raised total completes the campaign.
	resp = doRequest(t, http.MethodPut, srv.URL+"/api/v1/campaigns/"+created.ID+"/goal", `{"goal":500}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	c := decodeCampaign(t, resp)
	if c.Status != "completed" {
		t.Errorf("Status = %q, want %q", c.Status, "completed")
	}
	if c.CompletedGoal == nil || *c.CompletedGoal != 500 {
		t.Errorf("CompletedGoal = %v, want 500", c.CompletedGoal)
	}
}

func TestSetEndDate_PastDatePauses(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/campaigns/"+created.ID+"/end-date", `{"end_date":"2025-06-01"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	c := decodeCampaign(t, resp)
	if c.Status != "paused" {
		t.Errorf("Status = %q, want %q", c.Status, "paused")
	}
}

func TestSetEndDate_Unparseable(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/campaigns/"+created.ID+"/end-date", `{"end_date":"whenever"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

// --- Donations ---

func TestCreateDonation_CrossingGoalCompletes(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal","goal":100}`)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns/"+created.ID+"/donations", `{"amount":150,"gift_aid":true}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var out struct {
		Donation adapter.DonationResponse `json:"donation"`
		Campaign adapter.CampaignResponse `json:"campaign"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if out.Donation.Amount != 150 {
		t.Errorf("donation amount = %v, want 150", out.Donation.Amount)
	}
	if !out.Donation.GiftAid {
		t.Error("GiftAid should be true")
	}
	if out.Campaign.Raised != 150 {
		t.Errorf("Raised = %v, want 150", out.Campaign.Raised)
	}
	if out.Campaign.Status != "completed" {
		t.Errorf("Status = %q, want %q", out.Campaign.Status, "completed")
	}
}

func TestCreateDonation_InvalidAmount(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns/"+created.ID+"/donations", `{"amount":-5}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestListDonations(t *testing.T) {
	srv := newTestServer(t)
	created := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	for _, amount := range []string{"5", "10"} {
		resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/campaigns/"+created.ID+"/donations", `{"amount":`+amount+`}`)
		resp.Body.Close()
	}

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/campaigns/"+created.ID+"/donations", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var donations []adapter.DonationResponse
	if err := json.NewDecoder(resp.Body).Decode(&donations); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(donations) != 2 {
		t.Errorf("got %d donations, want 2", len(donations))
	}
}

// --- Kiosks ---

func TestRegisterKiosk(t *testing.T) {
	srv := newTestServer(t)
	k := mustRegisterKiosk(t, srv, "Foyer", "St Mary's, north entrance")

	if k.ID == "" {
		t.Error("ID should not be empty")
	}
	if k.Status != "provisioning" {
		t.Errorf("Status = %q, want %q", k.Status, "provisioning")
	}
}

func TestKioskTransition(t *testing.T) {
	srv := newTestServer(t)
	k := mustRegisterKiosk(t, srv, "Foyer", "North entrance")

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/kiosks/"+k.ID+"/events", `{"event":"activate"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got adapter.KioskResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "online" {
		t.Errorf("Status = %q, want %q", got.Status, "online")
	}
}

func TestKioskTransition_InvalidEvent(t *testing.T) {
	srv := newTestServer(t)
	k := mustRegisterKiosk(t, srv, "Foyer", "North entrance")

	// "retire" is not valid from "provisioning" state.
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/kiosks/"+k.ID+"/events", `{"event":"retire"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestAssignKioskCampaign(t *testing.T) {
	srv := newTestServer(t)
	k := mustRegisterKiosk(t, srv, "Foyer", "North entrance")
	c := mustCreateCampaign(t, srv, `{"name":"Appeal","slug":"appeal"}`)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/kiosks/"+k.ID+"/campaign", fmt.Sprintf(`{"campaign_id":%q}`, c.ID))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got adapter.KioskResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CampaignID != c.ID {
		t.Errorf("CampaignID = %q, want %q", got.CampaignID, c.ID)
	}
}

func TestAssignKioskCampaign_UnknownCampaign(t *testing.T) {
	srv := newTestServer(t)
	k := mustRegisterKiosk(t, srv, "Foyer", "North entrance")

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/kiosks/"+k.ID+"/campaign", `{"campaign_id":"nonexistent"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
