package handler

import (
	"net/http"

	"ai-doctor-helper/internal/domain"
)

// UsageHandler serves the usage statistics endpoint for UI display.
type UsageHandler struct {
	quotaService domain.QuotaService
	planService  domain.PlanService
	profileRepo  domain.ProfileRepository
	logger       domain.Logger
}

func NewUsageHandler(
	quotaService domain.QuotaService,
	planService domain.PlanService,
	profileRepo domain.ProfileRepository,
	logger domain.Logger,
) *UsageHandler {
	return &UsageHandler{
		quotaService: quotaService,
		planService:  planService,
		profileRepo:  profileRepo,
		logger:       logger,
	}
}

// GetStats returns the current month's usage for the authenticated user.
// Display-only: it always answers 200 and degrades to zero counts when the
// metering subsystem is unavailable.
func (h *UsageHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	// Read the caller's own row with their token so RLS enforces ownership.
	token, _ := GetTokenFromContext(r)
	profile, err := h.profileRepo.GetOwnProfile(r.Context(), token, user.ID)
	if err != nil {
		h.logger.Warn("Profile lookup failed for usage stats", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusOK, domain.UsageStats{})
		return
	}

	plan, err := h.planService.ResolvePlan(r.Context(), profile)
	if err != nil {
		h.logger.Warn("Plan resolution failed for usage stats", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusOK, domain.UsageStats{})
		return
	}

	writeJSON(w, http.StatusOK, h.quotaService.GetStats(r.Context(), user.ID, plan.ID))
}
