package service

import (
	"context"
	"strings"

	"ai-doctor-helper/internal/domain"
)

type planService struct {
	planRepo domain.PlanRepository
	logger   domain.Logger
}

func NewPlanService(
	planRepo domain.PlanRepository,
	logger domain.Logger,
) domain.PlanService {
	return &planService{
		planRepo: planRepo,
		logger:   logger,
	}
}

// GetPlans returns all plans ordered by price ascending.
func (s *planService) GetPlans(ctx context.Context) ([]domain.Plan, error) {
	return s.planRepo.GetPlans(ctx)
}

// FindPlanByID returns nil when no plan matches the id.
func (s *planService) FindPlanByID(ctx context.Context, id string) (*domain.Plan, error) {
	if id == "" {
		return nil, nil
	}
	return s.planRepo.GetPlanByID(ctx, id)
}

// FindPlanByTitle matches a plan by display title, case-insensitively.
// Title matching is a compatibility shim: renaming a plan breaks it, so new
// profiles always carry a plan id instead.
func (s *planService) FindPlanByTitle(ctx context.Context, title string) (*domain.Plan, error) {
	if title == "" {
		return nil, nil
	}
	plans, err := s.planRepo.GetPlans(ctx)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if strings.EqualFold(plans[i].Title, title) {
			return &plans[i], nil
		}
	}
	return nil, nil
}

// ResolvePlan resolves the effective plan for a profile. Order: explicit plan
// id, stored plan title (shim), then the Free plan. A store failure
// propagates: entitlement must never be silently defaulted.
func (s *planService) ResolvePlan(ctx context.Context, profile *domain.Profile) (*domain.Plan, error) {
	if profile != nil && profile.PlanID != "" {
		plan, err := s.planRepo.GetPlanByID(ctx, profile.PlanID)
		if err != nil {
			return nil, err
		}
		if plan != nil {
			return plan, nil
		}
		s.logger.Warn("Profile references unknown plan id, falling back",
			"user_id", profile.UserID, "plan_id", profile.PlanID)
	}

	if profile != nil && profile.PlanTitle != "" {
		plan, err := s.FindPlanByTitle(ctx, profile.PlanTitle)
		if err != nil {
			return nil, err
		}
		if plan != nil {
			return plan, nil
		}
	}

	plan, err := s.FindPlanByTitle(ctx, domain.FreePlanTitle)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

func (s *planService) CreatePlan(ctx context.Context, plan *domain.Plan) error {
	if strings.TrimSpace(plan.Title) == "" {
		return &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if plan.InteractionsLimit != nil && *plan.InteractionsLimit < 0 {
		return &domain.ValidationError{Field: "interactions_limit", Message: "must be >= 0 or null"}
	}
	return s.planRepo.CreatePlan(ctx, plan)
}

func (s *planService) UpdatePlan(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == "" {
		return &domain.ValidationError{Field: "id", Message: "id is required"}
	}
	if plan.InteractionsLimit != nil && *plan.InteractionsLimit < 0 {
		return &domain.ValidationError{Field: "interactions_limit", Message: "must be >= 0 or null"}
	}
	return s.planRepo.UpdatePlan(ctx, plan)
}

func (s *planService) DeletePlan(ctx context.Context, id string) error {
	if id == "" {
		return &domain.ValidationError{Field: "id", Message: "id is required"}
	}
	return s.planRepo.DeletePlan(ctx, id)
}
