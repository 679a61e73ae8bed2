package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"ai-doctor-helper/internal/config"
	"ai-doctor-helper/internal/domain"
	apperrors "ai-doctor-helper/pkg/errors"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

// months of ledger history returned by the admin usage overview
const usageHistoryMonths = 6

// AdminHandler exposes the back office endpoints protected by X-Admin-Secret.
// These endpoints are intended for internal support tooling and should not be
// exposed publicly without additional safeguards.
type AdminHandler struct {
	container *config.Container
}

func NewAdminHandler(container *config.Container) *AdminHandler {
	return &AdminHandler{container: container}
}

// requireAdmin checks the shared admin secret. It writes the error response
// itself and returns false when the caller is not authorized.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	secret := r.Header.Get("X-Admin-Secret")
	expected := h.container.Config.GetAdminAPISecret()
	if expected == "" || secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(expected)) != 1 {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	return true
}

// --- Plan management ---

func (h *AdminHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	plans, err := h.container.PlanService.GetPlans(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Plan catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *AdminHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var plan domain.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.container.PlanService.CreatePlan(r.Context(), &plan); err != nil {
		h.writeServiceError(w, err, "Failed to create plan")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (h *AdminHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var plan domain.Plan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	plan.ID = mux.Vars(r)["id"]

	if err := h.container.PlanService.UpdatePlan(r.Context(), &plan); err != nil {
		h.writeServiceError(w, err, "Failed to update plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *AdminHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.container.PlanService.DeletePlan(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "Failed to delete plan")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// --- FAQ management ---

func (h *AdminHandler) ListFAQ(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	entries, err := h.container.FAQRepository.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load FAQ")
		return
	}
	if entries == nil {
		entries = []domain.FAQEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var entry domain.FAQEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if entry.Question == "" || entry.Answer == "" {
		writeError(w, http.StatusBadRequest, "question and answer are required")
		return
	}

	if err := h.container.FAQRepository.Create(r.Context(), &entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create FAQ entry")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *AdminHandler) UpdateFAQ(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var entry domain.FAQEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry.ID = mux.Vars(r)["id"]

	if err := h.container.FAQRepository.Update(r.Context(), &entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update FAQ entry")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *AdminHandler) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.container.FAQRepository.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete FAQ entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// --- User management ---

type setUserPlanRequest struct {
	PlanID string `json:"plan_id"`
}

// SetUserPlan assigns a plan to a user by id. Quota counting is scoped to
// (user, plan, month), so the user starts a fresh count under the new plan;
// events recorded under the old plan are kept but no longer counted.
func (h *AdminHandler) SetUserPlan(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	userID := mux.Vars(r)["id"]
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User id is required")
		return
	}

	var req setUserPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := h.container.PlanService.FindPlanByID(r.Context(), req.PlanID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Plan catalog unavailable")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "Plan not found")
		return
	}

	if err := h.container.ProfileRepository.UpdatePlan(r.Context(), userID, plan.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user plan")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID, "plan_id": plan.ID})
}

type setAccountDisabledRequest struct {
	AccountDisabled bool `json:"account_disabled"`
}

// SetAccountDisabled toggles the profile's account_disabled flag for a user.
func (h *AdminHandler) SetAccountDisabled(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	userID := mux.Vars(r)["id"]
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User id is required")
		return
	}

	var req setAccountDisabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.container.ProfileRepository.SetAccountDisabled(r.Context(), userID, req.AccountDisabled); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update account status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":          userID,
		"account_disabled": req.AccountDisabled,
	})
}

type monthUsage struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type userUsageResponse struct {
	UserID string       `json:"user_id"`
	PlanID string       `json:"plan_id"`
	Months []monthUsage `json:"months"`
}

// GetUserUsage returns the user's ledger counts for the last months under
// their current plan, newest first.
func (h *AdminHandler) GetUserUsage(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	userID := mux.Vars(r)["id"]
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User id is required")
		return
	}

	profile, err := h.container.ProfileRepository.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	plan, err := h.container.PlanService.ResolvePlan(r.Context(), profile)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Plan catalog unavailable")
		return
	}

	// Anchor at the first of the month so subtracting months never
	// normalizes across a short month.
	now := time.Now().UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]monthUsage, usageHistoryMonths)
	var monthsMu sync.Mutex
	g, gctx := errgroup.WithContext(r.Context())

	for i := 0; i < usageHistoryMonths; i++ {
		i := i
		month := domain.MonthKey(firstOfMonth.AddDate(0, -i, 0))
		g.Go(func() error {
			count, err := h.container.InteractionRepository.CountForMonth(gctx, userID, plan.ID, month)
			if err != nil {
				return err
			}
			monthsMu.Lock()
			months[i] = monthUsage{Month: month, Count: count}
			monthsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.container.Logger.Error("Failed to load usage history", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load usage history")
		return
	}

	writeJSON(w, http.StatusOK, userUsageResponse{
		UserID: userID,
		PlanID: plan.ID,
		Months: months,
	})
}

// --- Billing ---

// SyncPrices pulls current amounts from Stripe into the plan catalog.
func (h *AdminHandler) SyncPrices(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	results, err := h.container.BillingService.SyncPlanPrices(r.Context())
	if err != nil {
		h.container.Logger.Error("Price sync failed", err)
		writeError(w, http.StatusInternalServerError, "Price sync failed")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *AdminHandler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if verr, ok := err.(*domain.ValidationError); ok {
		writeAppError(w, apperrors.NewValidationError(verr.Error()))
		return
	}
	h.container.Logger.Error(fallback, err)
	writeAppError(w, apperrors.NewInternalError(fallback, err))
}
