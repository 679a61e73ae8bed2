package domain

import (
	"context"
	"time"
)

// Plan represents a subscription tier with a monthly interaction quota.
// InteractionsLimit == nil means unlimited; 0 means the plan grants no
// interactions at all (e.g. a suspended tier).
type Plan struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	PriceCents        int64     `json:"price_cents"`
	Currency          string    `json:"currency,omitempty"`
	StripePriceID     string    `json:"stripe_price_id,omitempty"`
	InteractionsLimit *int      `json:"interactions_limit"`
	Features          []string  `json:"features,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Unlimited reports whether the plan has no monthly interaction cap.
func (p *Plan) Unlimited() bool {
	return p.InteractionsLimit == nil
}

// FreePlanTitle is the catalog entry users fall back to when their stored
// plan cannot be resolved.
const FreePlanTitle = "Free"

// PlanRepository defines persistence for the plan catalog.
type PlanRepository interface {
	// GetPlans returns all plans (active and inactive) ordered by price ascending.
	GetPlans(ctx context.Context) ([]Plan, error)
	// GetPlanByID returns nil when no plan matches.
	GetPlanByID(ctx context.Context, id string) (*Plan, error)
	CreatePlan(ctx context.Context, plan *Plan) error
	UpdatePlan(ctx context.Context, plan *Plan) error
	DeletePlan(ctx context.Context, id string) error
}

// PlanService exposes catalog lookups to the gating flow and admin surface.
type PlanService interface {
	GetPlans(ctx context.Context) ([]Plan, error)
	FindPlanByID(ctx context.Context, id string) (*Plan, error)
	FindPlanByTitle(ctx context.Context, title string) (*Plan, error)
	// ResolvePlan resolves the effective plan for a profile: plan id first,
	// title match as a compatibility shim, Free plan as the last fallback.
	ResolvePlan(ctx context.Context, profile *Profile) (*Plan, error)
	CreatePlan(ctx context.Context, plan *Plan) error
	UpdatePlan(ctx context.Context, plan *Plan) error
	DeletePlan(ctx context.Context, id string) error
}
