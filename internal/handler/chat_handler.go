package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"ai-doctor-helper/internal/domain"
	apperrors "ai-doctor-helper/pkg/errors"
)

const (
	maxPromptLen     = 4000
	maxReportLen     = 100_000
	maxImageBytes    = 10 * 1024 * 1024
	imageMemoryLimit = 12 * 1024 * 1024
)

// ChatHandler serves the gated AI endpoints: chat, image analysis and health
// report analysis. Each request goes through the same flow: resolve the
// user's plan, check the quota gate, record the interaction, then generate.
type ChatHandler struct {
	quotaService domain.QuotaService
	planService  domain.PlanService
	profileRepo  domain.ProfileRepository
	aiService    domain.AIService
	logger       domain.Logger
}

func NewChatHandler(
	quotaService domain.QuotaService,
	planService domain.PlanService,
	profileRepo domain.ProfileRepository,
	aiService domain.AIService,
	logger domain.Logger,
) *ChatHandler {
	return &ChatHandler{
		quotaService: quotaService,
		planService:  planService,
		profileRepo:  profileRepo,
		aiService:    aiService,
		logger:       logger,
	}
}

// gateAndRecord runs the interaction gating flow for an authenticated user.
// Anonymous requests (no user in context) skip gating entirely. It returns
// false when the response has already been written (limit reached or a fatal
// catalog failure).
//
// The interaction is recorded before the generation call so concurrent
// requests in the same month see the incremented count as early as possible.
// Recording failure is logged and does not abort the request.
func (h *ChatHandler) gateAndRecord(w http.ResponseWriter, r *http.Request, interactionType domain.InteractionType, clientRequestID string) bool {
	user, ok := GetUserFromContext(r)
	if !ok {
		return true
	}

	profile, err := h.profileRepo.GetProfile(r.Context(), user.ID)
	if err != nil {
		h.logger.Warn("Profile lookup failed, resolving plan without profile", "user_id", user.ID, "error", err)
		profile = &domain.Profile{UserID: user.ID}
	}

	plan, err := h.planService.ResolvePlan(r.Context(), profile)
	if err != nil {
		// Catalog unavailable: entitlement cannot be established, fail the
		// whole request rather than silently defaulting.
		h.logger.Error("Plan resolution failed", err, "user_id", user.ID)
		writeAppError(w, apperrors.NewNetworkError("Plan catalog unavailable", err))
		return false
	}

	decision := h.quotaService.CanInteract(r.Context(), user.ID, plan.ID)
	if !decision.CanInteract {
		writeLimitReached(w, decision)
		return false
	}

	if err := h.quotaService.Record(r.Context(), user.ID, plan.ID, interactionType, clientRequestID); err != nil {
		h.logger.Error("Failed to record interaction", err,
			"user_id", user.ID, "plan_id", plan.ID, "type", interactionType)
	}
	return true
}

// Chat handles one conversational turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.aiService == nil {
		writeError(w, http.StatusServiceUnavailable, "AI service not configured (missing GCP_PROJECT_ID or credentials)")
		return
	}

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt cannot be empty")
		return
	}
	if len(req.Prompt) > maxPromptLen {
		writeError(w, http.StatusBadRequest, "prompt too long")
		return
	}
	if req.Language == "" {
		req.Language = r.Header.Get("Accept-Language")
	}

	if !h.gateAndRecord(w, r, domain.InteractionTypeChat, req.ClientRequestID) {
		return
	}

	resp, err := h.aiService.Chat(r.Context(), req)
	if err != nil {
		h.logger.Error("Chat generation failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to process chat")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AnalyzeImage handles image analysis uploads (multipart form, field "image").
func (h *ChatHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if h.aiService == nil {
		writeError(w, http.StatusServiceUnavailable, "AI service not configured (missing GCP_PROJECT_ID or credentials)")
		return
	}

	if err := r.ParseMultipartForm(imageMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "image too large")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	imageData, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	if len(imageData) > maxImageBytes {
		writeError(w, http.StatusBadRequest, "image too large")
		return
	}

	req := domain.ImageAnalysisRequest{
		ImageData:       imageData,
		MimeType:        mimeType,
		Prompt:          strings.TrimSpace(r.FormValue("prompt")),
		Language:        r.FormValue("language"),
		ClientRequestID: r.FormValue("client_request_id"),
	}
	if req.Language == "" {
		req.Language = r.Header.Get("Accept-Language")
	}

	if !h.gateAndRecord(w, r, domain.InteractionTypeImageAnalysis, req.ClientRequestID) {
		return
	}

	resp, err := h.aiService.AnalyzeImage(r.Context(), req)
	if err != nil {
		h.logger.Error("Image analysis failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze image")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AnalyzeHealthReport handles health report text analysis.
func (h *ChatHandler) AnalyzeHealthReport(w http.ResponseWriter, r *http.Request) {
	if h.aiService == nil {
		writeError(w, http.StatusServiceUnavailable, "AI service not configured (missing GCP_PROJECT_ID or credentials)")
		return
	}

	var req domain.HealthReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.ReportText = strings.TrimSpace(req.ReportText)
	if req.ReportText == "" {
		writeError(w, http.StatusBadRequest, "report_text cannot be empty")
		return
	}
	if len(req.ReportText) > maxReportLen {
		writeError(w, http.StatusBadRequest, "report too long")
		return
	}
	if req.Language == "" {
		req.Language = r.Header.Get("Accept-Language")
	}

	if !h.gateAndRecord(w, r, domain.InteractionTypeHealthReport, req.ClientRequestID) {
		return
	}

	resp, err := h.aiService.AnalyzeHealthReport(r.Context(), req)
	if err != nil {
		h.logger.Error("Health report analysis failed", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze report")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
