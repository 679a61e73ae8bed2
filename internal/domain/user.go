package domain

import (
	"context"
	"time"
)

// SupabaseUser represents a user from Supabase Auth
type SupabaseUser struct {
	ID           string
	Email        string
	UserMetadata map[string]interface{}
	CreatedAt    string
	UpdatedAt    string
}

// Profile is the application-side user record holding the plan linkage.
// PlanID is the authoritative foreign key; PlanTitle survives only as a
// compatibility shim for rows written before plan ids existed.
type Profile struct {
	UserID          string    `json:"user_id"`
	Email           string    `json:"email,omitempty"`
	PlanID          string    `json:"plan_id,omitempty"`
	PlanTitle       string    `json:"plan_title,omitempty"`
	AccountDisabled bool      `json:"account_disabled"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProfileRepository defines persistence for user profiles.
type ProfileRepository interface {
	// GetProfile returns a default profile (no plan linkage) when the user
	// has no row yet.
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// GetOwnProfile reads the caller's own row through a client scoped to
	// their JWT, so row-level security enforces ownership. An empty token
	// falls back to the service-role read.
	GetOwnProfile(ctx context.Context, token, userID string) (*Profile, error)
	UpdatePlan(ctx context.Context, userID, planID string) error
	SetAccountDisabled(ctx context.Context, userID string, disabled bool) error
}
