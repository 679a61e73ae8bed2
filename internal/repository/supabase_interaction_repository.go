package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-doctor-helper/internal/domain"
)

// SupabaseInteractionRepository implements the domain.InteractionRepository
// interface over the append-only user_interactions table.
type SupabaseInteractionRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseInteractionRepository creates a new Supabase interaction repository
func NewSupabaseInteractionRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.InteractionRepository {
	return &SupabaseInteractionRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Insert appends one interaction event. Events are never updated or deleted
// by application flow; the ledger is the audit trail for quota accounting.
func (r *SupabaseInteractionRepository) Insert(ctx context.Context, event *domain.InteractionEvent) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("%w: supabase client not initialized", domain.ErrPersistence)
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Month == "" {
		event.Month = domain.MonthKey(event.CreatedAt)
	}

	data := map[string]interface{}{
		"user_id":          event.UserID,
		"plan_id":          event.PlanID,
		"interaction_type": string(event.InteractionType),
		"month":            event.Month,
		"created_at":       event.CreatedAt,
	}
	if event.ClientRequestID != "" {
		data["client_request_id"] = event.ClientRequestID
	}

	// Upsert on (user_id, client_request_id) when the client supplied a
	// request id, so a retried request after a network blip is not counted twice.
	upsert := event.ClientRequestID != ""
	onConflict := ""
	if upsert {
		onConflict = "user_id,client_request_id"
	}

	resp, _, err := client.From("user_interactions").Insert(data, upsert, onConflict, "id", "").Execute()
	if err != nil {
		return fmt.Errorf("%w: failed to insert interaction: %v", domain.ErrPersistence, err)
	}

	var result []struct {
		ID string `json:"id"`
	}
	if len(resp) > 0 {
		if err := json.Unmarshal(resp, &result); err == nil && len(result) > 0 {
			event.ID = result[0].ID
		}
	}
	return nil
}

// CountForMonth counts events matching user, plan and month exactly. An event
// recorded at 23:59:59Z on January 31 counts toward "2025-01" only.
func (r *SupabaseInteractionRepository) CountForMonth(ctx context.Context, userID, planID, month string) (int, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return 0, fmt.Errorf("%w: supabase client not initialized", domain.ErrStoreUnavailable)
	}

	_, count, err := client.From("user_interactions").
		Select("id", "exact", true).
		Eq("user_id", userID).
		Eq("plan_id", planID).
		Eq("month", month).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count interactions: %v", domain.ErrStoreUnavailable, err)
	}

	return int(count), nil
}
