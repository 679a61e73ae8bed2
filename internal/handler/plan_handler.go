package handler

import (
	"net/http"

	"ai-doctor-helper/internal/domain"
)

// PlanHandler serves the public plan catalog and FAQ content.
type PlanHandler struct {
	planService domain.PlanService
	faqRepo     domain.FAQRepository
	logger      domain.Logger
}

func NewPlanHandler(planService domain.PlanService, faqRepo domain.FAQRepository, logger domain.Logger) *PlanHandler {
	return &PlanHandler{
		planService: planService,
		faqRepo:     faqRepo,
		logger:      logger,
	}
}

// GetPlans returns all plans ordered by price ascending. A catalog failure is
// fatal to the request; there is no silent empty default.
func (h *PlanHandler) GetPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.planService.GetPlans(r.Context())
	if err != nil {
		h.logger.Error("Failed to list plans", err)
		writeError(w, http.StatusServiceUnavailable, "Plan catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// GetFAQ returns published FAQ entries ordered by position.
func (h *PlanHandler) GetFAQ(w http.ResponseWriter, r *http.Request) {
	entries, err := h.faqRepo.ListPublished(r.Context())
	if err != nil {
		h.logger.Error("Failed to list FAQ entries", err)
		writeError(w, http.StatusInternalServerError, "Failed to load FAQ")
		return
	}
	if entries == nil {
		entries = []domain.FAQEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
