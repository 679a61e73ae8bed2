package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-doctor-helper/internal/domain"
)

func intPtr(v int) *int { return &v }

func newChatHandlerFixture() (*ChatHandler, *mockQuotaService, *mockPlanService, *mockAIService) {
	quota := &mockQuotaService{decision: domain.QuotaDecision{CanInteract: true}}
	plans := &mockPlanService{resolved: &domain.Plan{ID: "plan-free", Title: "Free", InteractionsLimit: intPtr(3)}}
	ai := &mockAIService{
		chatResp:   &domain.ChatResponse{Message: "Stay hydrated.", PlainText: "Stay hydrated."},
		reportResp: &domain.HealthReportAnalysis{Summary: "All values in range."},
	}
	h := NewChatHandler(quota, plans, &mockProfileRepo{}, ai, &testLogger{})
	return h, quota, plans, ai
}

func TestChat_AuthenticatedWithinQuota(t *testing.T) {
	h, quota, _, ai := newChatHandlerFixture()

	req := withUser(newJSONRequest("POST", "/api/v1/chat", `{"prompt":"I have a headache"}`), "user-1")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ai.chatCalls != 1 {
		t.Fatalf("expected one generation call, got %d", ai.chatCalls)
	}
	if len(quota.recorded) != 1 {
		t.Fatalf("expected one recorded interaction, got %d", len(quota.recorded))
	}
	if quota.recorded[0].Type != domain.InteractionTypeChat {
		t.Fatalf("expected chat interaction type, got %s", quota.recorded[0].Type)
	}
	if quota.recorded[0].PlanID != "plan-free" {
		t.Fatalf("expected resolved plan id, got %s", quota.recorded[0].PlanID)
	}
}

func TestChat_AnonymousSkipsGate(t *testing.T) {
	h, quota, _, ai := newChatHandlerFixture()
	quota.decision = domain.QuotaDecision{CanInteract: false}

	req := newJSONRequest("POST", "/api/v1/chat", `{"prompt":"hello"}`)
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous request to pass, got %d", rec.Code)
	}
	if quota.canInteractCalls != 0 {
		t.Fatalf("expected gate to be skipped for anonymous requests")
	}
	if len(quota.recorded) != 0 {
		t.Fatalf("expected nothing recorded for anonymous requests")
	}
	if ai.chatCalls != 1 {
		t.Fatalf("expected generation to run, got %d calls", ai.chatCalls)
	}
}

func TestChat_LimitReached(t *testing.T) {
	h, quota, _, ai := newChatHandlerFixture()
	quota.decision = domain.QuotaDecision{
		CanInteract:           false,
		RemainingInteractions: intPtr(0),
		Limit:                 intPtr(3),
	}

	req := withUser(newJSONRequest("POST", "/api/v1/chat", `{"prompt":"hello"}`), "user-1")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if ai.chatCalls != 0 {
		t.Fatalf("expected no generation after denial")
	}
	if len(quota.recorded) != 0 {
		t.Fatalf("expected no event recorded after denial")
	}

	var body limitReachedResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error != "Interaction limit reached" {
		t.Fatalf("expected machine-readable error marker, got %q", body.Error)
	}
	if body.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", body.Remaining)
	}
	if body.Limit == nil || *body.Limit != 3 {
		t.Fatalf("expected limit 3, got %+v", body.Limit)
	}
	if body.Message == "" {
		t.Fatalf("expected human-readable message")
	}
}

func TestChat_RecordFailureDoesNotBlockResponse(t *testing.T) {
	h, quota, _, ai := newChatHandlerFixture()
	quota.recordErr = errors.New("insert failed")

	req := withUser(newJSONRequest("POST", "/api/v1/chat", `{"prompt":"hello"}`), "user-1")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite record failure, got %d", rec.Code)
	}
	if ai.chatCalls != 1 {
		t.Fatalf("expected generation to run, got %d calls", ai.chatCalls)
	}
}

func TestChat_RecordHappensBeforeGeneration(t *testing.T) {
	h, quota, _, ai := newChatHandlerFixture()
	ai.err = errors.New("model unavailable")
	ai.chatResp = nil

	req := withUser(newJSONRequest("POST", "/api/v1/chat", `{"prompt":"hello"}`), "user-1")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on generation failure, got %d", rec.Code)
	}
	// The interaction is consumed even when generation fails afterwards.
	if len(quota.recorded) != 1 {
		t.Fatalf("expected interaction recorded before generation, got %d", len(quota.recorded))
	}
}

func TestChat_PlanCatalogUnavailable(t *testing.T) {
	h, quota, plans, _ := newChatHandlerFixture()
	plans.resolved = nil
	plans.resolveErr = domain.ErrStoreUnavailable

	req := withUser(newJSONRequest("POST", "/api/v1/chat", `{"prompt":"hello"}`), "user-1")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when catalog is down, got %d", rec.Code)
	}
	if quota.canInteractCalls != 0 {
		t.Fatalf("expected gate not consulted without a plan")
	}
}

func TestChat_Validation(t *testing.T) {
	h, _, _, _ := newChatHandlerFixture()

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"empty prompt", `{"prompt":""}`},
		{"whitespace prompt", `{"prompt":"   "}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Chat(rec, withUser(newJSONRequest("POST", "/api/v1/chat", tc.body), "user-1"))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestChat_AIServiceNotConfigured(t *testing.T) {
	quota := &mockQuotaService{decision: domain.QuotaDecision{CanInteract: true}}
	plans := &mockPlanService{resolved: &domain.Plan{ID: "plan-free", Title: "Free"}}
	h := NewChatHandler(quota, plans, &mockProfileRepo{}, nil, &testLogger{})

	rec := httptest.NewRecorder()
	h.Chat(rec, withUser(newJSONRequest("POST", "/api/v1/chat", `{"prompt":"hello"}`), "user-1"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without AI service, got %d", rec.Code)
	}
}

func TestChat_ClientRequestIDForwardedToRecorder(t *testing.T) {
	h, quota, _, _ := newChatHandlerFixture()

	const reqID = "7a9e2b4c-6f8d-4e1a-9c3b-2d5f7a8e9b1c"
	body := `{"prompt":"hello","client_request_id":"` + reqID + `"}`
	rec := httptest.NewRecorder()
	h.Chat(rec, withUser(newJSONRequest("POST", "/api/v1/chat", body), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(quota.recorded) != 1 || quota.recorded[0].ClientRequestID != reqID {
		t.Fatalf("expected client request id forwarded, got %+v", quota.recorded)
	}
}

func TestChat_ProfileLookupFailureResolvesWithoutProfile(t *testing.T) {
	quota := &mockQuotaService{decision: domain.QuotaDecision{CanInteract: true}}
	plans := &mockPlanService{resolved: &domain.Plan{ID: "plan-free", Title: "Free"}}
	ai := &mockAIService{chatResp: &domain.ChatResponse{Message: "ok"}}
	profiles := &mockProfileRepo{getErr: errors.New("profiles table down")}
	h := NewChatHandler(quota, plans, profiles, ai, &testLogger{})

	rec := httptest.NewRecorder()
	h.Chat(rec, withUser(newJSONRequest("POST", "/api/v1/chat", `{"prompt":"hello"}`), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected profile failure to degrade, got %d", rec.Code)
	}
	if quota.canInteractCalls != 1 {
		t.Fatalf("expected gate still consulted, got %d calls", quota.canInteractCalls)
	}
}

func TestAnalyzeHealthReport_GatedAndRecorded(t *testing.T) {
	h, quota, _, ai := newChatHandlerFixture()

	body := `{"report_text":"Hemoglobin 14.2 g/dL"}`
	rec := httptest.NewRecorder()
	h.AnalyzeHealthReport(rec, withUser(newJSONRequest("POST", "/api/v1/health-report", body), "user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ai.reportCalls != 1 {
		t.Fatalf("expected one analysis call, got %d", ai.reportCalls)
	}
	if len(quota.recorded) != 1 || quota.recorded[0].Type != domain.InteractionTypeHealthReport {
		t.Fatalf("expected health_report interaction recorded, got %+v", quota.recorded)
	}
}

func TestAnalyzeHealthReport_EmptyText(t *testing.T) {
	h, _, _, _ := newChatHandlerFixture()

	rec := httptest.NewRecorder()
	h.AnalyzeHealthReport(rec, withUser(newJSONRequest("POST", "/api/v1/health-report", `{"report_text":" "}`), "user-1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeImage_RequiresImageField(t *testing.T) {
	h, _, _, _ := newChatHandlerFixture()

	req := httptest.NewRequest("POST", "/api/v1/image-analysis", nil)
	rec := httptest.NewRecorder()
	h.AnalyzeImage(rec, withUser(req, "user-1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without multipart body, got %d", rec.Code)
	}
}
