package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-doctor-helper/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// SupabaseProfileRepository implements the domain.ProfileRepository interface
type SupabaseProfileRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseProfileRepository creates a new Supabase profile repository
func NewSupabaseProfileRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.ProfileRepository {
	return &SupabaseProfileRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetProfile retrieves the profile row for a user. Users without a row yet
// get a default profile with no plan linkage, which resolves to the Free plan.
func (r *SupabaseProfileRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}
	return r.getProfile(client, userID)
}

// GetOwnProfile reads the caller's row through a client carrying their JWT so
// Postgres row-level security applies. Server-side flows with no user token
// (empty token) read with the service role instead.
func (r *SupabaseProfileRepository) GetOwnProfile(ctx context.Context, token, userID string) (*domain.Profile, error) {
	if token == "" {
		return r.GetProfile(ctx, userID)
	}

	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create token-scoped client: %w", err)
	}
	return r.getProfile(client, userID)
}

func (r *SupabaseProfileRepository) getProfile(client *supabase.Client, userID string) (*domain.Profile, error) {
	data, _, err := client.From("profiles").
		Select("*", "", false).
		Eq("user_id", userID).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profiles []domain.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(profiles) == 0 {
		return &domain.Profile{UserID: userID}, nil
	}
	return &profiles[0], nil
}

// UpdatePlan sets the user's plan id. The plan title column is cleared so the
// compatibility shim never overrides an explicit assignment.
func (r *SupabaseProfileRepository) UpdatePlan(ctx context.Context, userID, planID string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"user_id":    userID,
		"plan_id":    planID,
		"plan_title": "",
		"updated_at": time.Now(),
	}

	_, _, err := client.From("profiles").Upsert(data, "user_id", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	r.logger.Info("Profile plan updated", "user_id", userID, "plan_id", planID)
	return nil
}

// SetAccountDisabled toggles the profile's account_disabled flag.
func (r *SupabaseProfileRepository) SetAccountDisabled(ctx context.Context, userID string, disabled bool) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"user_id":          userID,
		"account_disabled": disabled,
		"updated_at":       time.Now(),
	}

	_, _, err := client.From("profiles").Upsert(data, "user_id", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	r.logger.Info("Account status updated", "user_id", userID, "disabled", disabled)
	return nil
}
