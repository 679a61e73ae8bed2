package service

import (
	"context"
	"time"

	"ai-doctor-helper/internal/domain"

	"github.com/google/uuid"
)

// quotaService is the quota gate and interaction recorder. It decides whether
// one more interaction is permitted for a (user, plan) pair this month and
// appends consumed interactions to the ledger.
//
// The check and the record are two separate store calls, so two concurrent
// requests can both pass the gate when one slot remains. This is a soft usage
// cap, not a billing ledger; tightening it would need an atomic
// insert-if-under-limit and would change user-visible behavior under load.
type quotaService struct {
	planService     domain.PlanService
	interactionRepo domain.InteractionRepository
	logger          domain.Logger

	// failOpen controls behavior when the count query fails. Plan-not-found
	// always denies regardless.
	failOpen bool
}

func NewQuotaService(
	planService domain.PlanService,
	interactionRepo domain.InteractionRepository,
	logger domain.Logger,
	failOpen bool,
) domain.QuotaService {
	return &quotaService{
		planService:     planService,
		interactionRepo: interactionRepo,
		logger:          logger,
		failOpen:        failOpen,
	}
}

// CanInteract decides whether one more interaction is permitted this month.
func (s *quotaService) CanInteract(ctx context.Context, userID, planID string) domain.QuotaDecision {
	plan, err := s.planService.FindPlanByID(ctx, planID)
	if err != nil {
		// Entitlement cannot be established without a catalog; fail closed.
		s.logger.Error("Plan lookup failed during quota check", err, "user_id", userID, "plan_id", planID)
		return domain.QuotaDecision{CanInteract: false}
	}
	if plan == nil {
		return domain.QuotaDecision{CanInteract: false}
	}

	if plan.Unlimited() {
		return domain.QuotaDecision{CanInteract: true}
	}

	limit := *plan.InteractionsLimit
	count, err := s.interactionRepo.CountForMonth(ctx, userID, planID, domain.CurrentMonth())
	if err != nil {
		if s.failOpen {
			// A metering outage must not block the product.
			s.logger.Warn("Usage count failed, allowing interaction",
				"user_id", userID, "plan_id", planID, "error", err)
			return domain.QuotaDecision{CanInteract: true}
		}
		s.logger.Error("Usage count failed, denying interaction", err,
			"user_id", userID, "plan_id", planID)
		zero := 0
		return domain.QuotaDecision{CanInteract: false, RemainingInteractions: &zero, Limit: &limit}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return domain.QuotaDecision{
		CanInteract:           count < limit,
		RemainingInteractions: &remaining,
		Limit:                 &limit,
	}
}

// GetStats reports current usage for display. It never fails: on any error it
// returns zero usage with whatever limit information is available.
func (s *quotaService) GetStats(ctx context.Context, userID, planID string) domain.UsageStats {
	plan, err := s.planService.FindPlanByID(ctx, planID)
	if err != nil || plan == nil {
		if err != nil {
			s.logger.Warn("Plan lookup failed for usage stats", "user_id", userID, "plan_id", planID, "error", err)
		}
		return domain.UsageStats{}
	}

	if plan.Unlimited() {
		return domain.UsageStats{HasUnlimited: true}
	}

	limit := *plan.InteractionsLimit
	count, err := s.interactionRepo.CountForMonth(ctx, userID, planID, domain.CurrentMonth())
	if err != nil {
		s.logger.Warn("Usage count failed for usage stats", "user_id", userID, "plan_id", planID, "error", err)
		remaining := limit
		return domain.UsageStats{CurrentMonth: 0, Limit: &limit, Remaining: &remaining}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return domain.UsageStats{CurrentMonth: count, Limit: &limit, Remaining: &remaining}
}

// Record appends a consumed interaction. The month partition key is computed
// from the clock at record time, in UTC.
func (s *quotaService) Record(ctx context.Context, userID, planID string, interactionType domain.InteractionType, clientRequestID string) error {
	if !interactionType.Valid() {
		return domain.ErrInvalidInteractionType
	}
	if clientRequestID != "" {
		if _, err := uuid.Parse(clientRequestID); err != nil {
			return domain.ErrInvalidClientRequestID
		}
	}

	now := time.Now().UTC()
	event := &domain.InteractionEvent{
		UserID:          userID,
		PlanID:          planID,
		InteractionType: interactionType,
		Month:           domain.MonthKey(now),
		ClientRequestID: clientRequestID,
		CreatedAt:       now,
	}
	return s.interactionRepo.Insert(ctx, event)
}
