package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-doctor-helper/internal/domain"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/price"
	"golang.org/x/sync/errgroup"
)

// max concurrent Stripe price lookups during a sync
const priceSyncWorkers = 4

// PlanSyncResult reports the outcome of one plan's price sync.
type PlanSyncResult struct {
	PlanID  string `json:"plan_id"`
	Title   string `json:"title"`
	Synced  bool   `json:"synced"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BillingService synchronizes plan pricing with Stripe. Stripe is the source
// of truth for amounts; the plans table caches them for the catalog endpoint.
type BillingService struct {
	planRepo domain.PlanRepository
	logger   domain.Logger
}

func NewBillingService(planRepo domain.PlanRepository, logger domain.Logger, apiKey string) *BillingService {
	stripe.Key = apiKey
	return &BillingService{
		planRepo: planRepo,
		logger:   logger,
	}
}

// SyncPlanPrices refreshes the stored amount, currency and active flag of
// every plan linked to a Stripe price. Partial failures are reported per
// plan; one broken price does not abort the rest of the sync.
func (s *BillingService) SyncPlanPrices(ctx context.Context) ([]PlanSyncResult, error) {
	plans, err := s.planRepo.GetPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plans for sync: %w", err)
	}

	results := make([]PlanSyncResult, len(plans))
	var resultsMu sync.Mutex
	sem := make(chan struct{}, priceSyncWorkers)
	g, gctx := errgroup.WithContext(ctx)

	for i := range plans {
		i := i
		plan := plans[i]
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			res := s.syncPlan(gctx, plan)
			resultsMu.Lock()
			results[i] = res
			resultsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *BillingService) syncPlan(ctx context.Context, plan domain.Plan) PlanSyncResult {
	res := PlanSyncResult{PlanID: plan.ID, Title: plan.Title}

	if plan.StripePriceID == "" {
		res.Skipped = true
		return res
	}

	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p, err := price.Get(plan.StripePriceID, &stripe.PriceParams{
		Params: stripe.Params{Context: callCtx},
	})
	if err != nil {
		s.logger.Error("Failed to get Stripe price", err, "plan_id", plan.ID, "price_id", plan.StripePriceID)
		res.Error = err.Error()
		return res
	}

	if !p.Active {
		s.logger.Warn("Stripe price is inactive", "plan_id", plan.ID, "price_id", plan.StripePriceID)
	}

	updated := plan
	updated.PriceCents = p.UnitAmount
	updated.Currency = strings.ToUpper(string(p.Currency))
	updated.Active = p.Active

	if updated.PriceCents == plan.PriceCents && updated.Currency == plan.Currency && updated.Active == plan.Active {
		res.Synced = true
		return res
	}

	if err := s.planRepo.UpdatePlan(ctx, &updated); err != nil {
		s.logger.Error("Failed to persist synced price", err, "plan_id", plan.ID)
		res.Error = err.Error()
		return res
	}

	s.logger.Info("Plan price synced", "plan_id", plan.ID, "price_cents", updated.PriceCents, "currency", updated.Currency)
	res.Synced = true
	return res
}
