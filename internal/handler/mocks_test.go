package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"ai-doctor-helper/internal/domain"
)

// Shared mocks for handler tests.

type testLogger struct{}

func (l *testLogger) Info(msg string, fields ...interface{})             {}
func (l *testLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *testLogger) Debug(msg string, fields ...interface{})            {}
func (l *testLogger) Warn(msg string, fields ...interface{})             {}

type recordedInteraction struct {
	UserID          string
	PlanID          string
	Type            domain.InteractionType
	ClientRequestID string
}

type mockQuotaService struct {
	decision  domain.QuotaDecision
	stats     domain.UsageStats
	recordErr error

	recorded         []recordedInteraction
	canInteractCalls int
}

func (m *mockQuotaService) CanInteract(ctx context.Context, userID, planID string) domain.QuotaDecision {
	m.canInteractCalls++
	return m.decision
}

func (m *mockQuotaService) GetStats(ctx context.Context, userID, planID string) domain.UsageStats {
	return m.stats
}

func (m *mockQuotaService) Record(ctx context.Context, userID, planID string, interactionType domain.InteractionType, clientRequestID string) error {
	m.recorded = append(m.recorded, recordedInteraction{
		UserID:          userID,
		PlanID:          planID,
		Type:            interactionType,
		ClientRequestID: clientRequestID,
	})
	return m.recordErr
}

type mockPlanService struct {
	plans      []domain.Plan
	resolved   *domain.Plan
	resolveErr error
	listErr    error
}

func (m *mockPlanService) GetPlans(ctx context.Context) ([]domain.Plan, error) {
	return m.plans, m.listErr
}

func (m *mockPlanService) FindPlanByID(ctx context.Context, id string) (*domain.Plan, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	for i := range m.plans {
		if m.plans[i].ID == id {
			return &m.plans[i], nil
		}
	}
	return nil, nil
}

func (m *mockPlanService) FindPlanByTitle(ctx context.Context, title string) (*domain.Plan, error) {
	for i := range m.plans {
		if m.plans[i].Title == title {
			return &m.plans[i], nil
		}
	}
	return nil, nil
}

func (m *mockPlanService) ResolvePlan(ctx context.Context, profile *domain.Profile) (*domain.Plan, error) {
	return m.resolved, m.resolveErr
}

func (m *mockPlanService) CreatePlan(ctx context.Context, plan *domain.Plan) error { return nil }
func (m *mockPlanService) UpdatePlan(ctx context.Context, plan *domain.Plan) error { return nil }
func (m *mockPlanService) DeletePlan(ctx context.Context, id string) error         { return nil }

type mockProfileRepo struct {
	profile *domain.Profile
	getErr  error

	ownProfileToken string

	updatedUserID string
	updatedPlanID string
	updateErr     error

	disabledUserID string
	disabledValue  bool
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.profile != nil {
		return m.profile, nil
	}
	return &domain.Profile{UserID: userID}, nil
}

func (m *mockProfileRepo) GetOwnProfile(ctx context.Context, token, userID string) (*domain.Profile, error) {
	m.ownProfileToken = token
	return m.GetProfile(ctx, userID)
}

func (m *mockProfileRepo) UpdatePlan(ctx context.Context, userID, planID string) error {
	m.updatedUserID = userID
	m.updatedPlanID = planID
	return m.updateErr
}

func (m *mockProfileRepo) SetAccountDisabled(ctx context.Context, userID string, disabled bool) error {
	m.disabledUserID = userID
	m.disabledValue = disabled
	return nil
}

type mockAIService struct {
	chatResp   *domain.ChatResponse
	reportResp *domain.HealthReportAnalysis
	err        error

	chatCalls   int
	imageCalls  int
	reportCalls int
}

func (m *mockAIService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.chatCalls++
	return m.chatResp, m.err
}

func (m *mockAIService) AnalyzeImage(ctx context.Context, req domain.ImageAnalysisRequest) (*domain.ChatResponse, error) {
	m.imageCalls++
	return m.chatResp, m.err
}

func (m *mockAIService) AnalyzeHealthReport(ctx context.Context, req domain.HealthReportRequest) (*domain.HealthReportAnalysis, error) {
	m.reportCalls++
	return m.reportResp, m.err
}

type mockFAQRepo struct {
	entries []domain.FAQEntry
	listErr error
}

func (m *mockFAQRepo) ListPublished(ctx context.Context) ([]domain.FAQEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var published []domain.FAQEntry
	for _, e := range m.entries {
		if e.Published {
			published = append(published, e)
		}
	}
	return published, nil
}

func (m *mockFAQRepo) ListAll(ctx context.Context) ([]domain.FAQEntry, error) {
	return m.entries, m.listErr
}

func (m *mockFAQRepo) Create(ctx context.Context, entry *domain.FAQEntry) error { return nil }
func (m *mockFAQRepo) Update(ctx context.Context, entry *domain.FAQEntry) error { return nil }
func (m *mockFAQRepo) Delete(ctx context.Context, id string) error              { return nil }

type mockAuthService struct {
	user        *domain.SupabaseUser
	validateErr error
	disabled    bool
	disabledErr error
}

func (m *mockAuthService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return m.user, nil
}

func (m *mockAuthService) IsAccountDisabled(ctx context.Context, userID string) (bool, error) {
	return m.disabled, m.disabledErr
}

// withUser attaches an authenticated user to the request context the way the
// auth middleware would.
func withUser(r *http.Request, userID string) *http.Request {
	user := &domain.SupabaseUser{ID: userID, Email: userID + "@example.com"}
	return r.WithContext(contextWithAuth(r.Context(), user, "test-token"))
}

func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
