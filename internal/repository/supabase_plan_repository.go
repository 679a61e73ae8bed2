package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-doctor-helper/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

// SupabasePlanRepository implements the domain.PlanRepository interface
type SupabasePlanRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabasePlanRepository creates a new Supabase plan repository
func NewSupabasePlanRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.PlanRepository {
	return &SupabasePlanRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetPlans returns all plans ordered by price ascending. A store failure
// surfaces as ErrStoreUnavailable: callers must treat it as fatal to the
// request rather than defaulting to an empty catalog.
func (r *SupabasePlanRepository) GetPlans(ctx context.Context) ([]domain.Plan, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("%w: supabase client not initialized", domain.ErrStoreUnavailable)
	}

	data, _, err := client.From("plans").
		Select("*", "", false).
		Order("price_cents", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list plans: %v", domain.ErrStoreUnavailable, err)
	}

	var plans []domain.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal plans: %v", domain.ErrStoreUnavailable, err)
	}
	return plans, nil
}

// GetPlanByID returns the plan with the given id, or nil when none matches.
func (r *SupabasePlanRepository) GetPlanByID(ctx context.Context, id string) (*domain.Plan, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("%w: supabase client not initialized", domain.ErrStoreUnavailable)
	}

	data, _, err := client.From("plans").
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get plan: %v", domain.ErrStoreUnavailable, err)
	}

	var plans []domain.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal plan: %v", domain.ErrStoreUnavailable, err)
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return &plans[0], nil
}

// CreatePlan inserts a new plan row and backfills the generated id.
func (r *SupabasePlanRepository) CreatePlan(ctx context.Context, plan *domain.Plan) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	now := time.Now()
	data := map[string]interface{}{
		"title":              plan.Title,
		"description":        plan.Description,
		"price_cents":        plan.PriceCents,
		"currency":           plan.Currency,
		"stripe_price_id":    plan.StripePriceID,
		"interactions_limit": plan.InteractionsLimit,
		"features":           plan.Features,
		"active":             plan.Active,
		"created_at":         now,
		"updated_at":         now,
	}

	resp, _, err := client.From("plans").Insert(data, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	var result []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(result) > 0 {
		plan.ID = result[0].ID
	}

	r.logger.Info("Plan created", "plan_id", plan.ID, "title", plan.Title)
	return nil
}

// UpdatePlan overwrites the mutable columns of an existing plan.
func (r *SupabasePlanRepository) UpdatePlan(ctx context.Context, plan *domain.Plan) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"title":              plan.Title,
		"description":        plan.Description,
		"price_cents":        plan.PriceCents,
		"currency":           plan.Currency,
		"stripe_price_id":    plan.StripePriceID,
		"interactions_limit": plan.InteractionsLimit,
		"features":           plan.Features,
		"active":             plan.Active,
		"updated_at":         time.Now(),
	}

	_, _, err := client.From("plans").Update(data, "", "").Eq("id", plan.ID).Execute()
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	r.logger.Info("Plan updated", "plan_id", plan.ID, "title", plan.Title)
	return nil
}

// DeletePlan removes a plan row. Historical ledger entries referencing the
// plan are kept; orphaned plan references are tolerated.
func (r *SupabasePlanRepository) DeletePlan(ctx context.Context, id string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err := client.From("plans").Delete("", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	r.logger.Info("Plan deleted", "plan_id", id)
	return nil
}
