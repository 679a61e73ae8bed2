package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-doctor-helper/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

// SupabaseFAQRepository implements the domain.FAQRepository interface
type SupabaseFAQRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseFAQRepository creates a new Supabase FAQ repository
func NewSupabaseFAQRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.FAQRepository {
	return &SupabaseFAQRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// ListPublished returns published FAQ entries ordered by position.
func (r *SupabaseFAQRepository) ListPublished(ctx context.Context) ([]domain.FAQEntry, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From("faq_entries").
		Select("*", "", false).
		Eq("published", "true").
		Order("position", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list faq entries: %w", err)
	}

	var entries []domain.FAQEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return entries, nil
}

// ListAll returns every FAQ entry for the admin screen, published or not.
func (r *SupabaseFAQRepository) ListAll(ctx context.Context) ([]domain.FAQEntry, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From("faq_entries").
		Select("*", "", false).
		Order("position", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list faq entries: %w", err)
	}

	var entries []domain.FAQEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return entries, nil
}

// Create inserts a new FAQ entry and backfills the generated id.
func (r *SupabaseFAQRepository) Create(ctx context.Context, entry *domain.FAQEntry) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	now := time.Now()
	data := map[string]interface{}{
		"question":   entry.Question,
		"answer":     entry.Answer,
		"position":   entry.Position,
		"published":  entry.Published,
		"created_at": now,
		"updated_at": now,
	}

	resp, _, err := client.From("faq_entries").Insert(data, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create faq entry: %w", err)
	}

	var result []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(result) > 0 {
		entry.ID = result[0].ID
	}
	return nil
}

// Update overwrites an existing FAQ entry.
func (r *SupabaseFAQRepository) Update(ctx context.Context, entry *domain.FAQEntry) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"question":   entry.Question,
		"answer":     entry.Answer,
		"position":   entry.Position,
		"published":  entry.Published,
		"updated_at": time.Now(),
	}

	_, _, err := client.From("faq_entries").Update(data, "", "").Eq("id", entry.ID).Execute()
	if err != nil {
		return fmt.Errorf("failed to update faq entry: %w", err)
	}
	return nil
}

// Delete removes an FAQ entry.
func (r *SupabaseFAQRepository) Delete(ctx context.Context, id string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err := client.From("faq_entries").Delete("", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete faq entry: %w", err)
	}
	return nil
}
