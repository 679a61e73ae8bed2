package domain

import (
	"context"
	"time"
)

// InteractionType identifies one billable unit of AI usage.
type InteractionType string

const (
	InteractionTypeChat          InteractionType = "chat"
	InteractionTypeImageAnalysis InteractionType = "image_analysis"
	InteractionTypeHealthReport  InteractionType = "health_report"
)

// Valid reports whether t is one of the known interaction types.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionTypeChat, InteractionTypeImageAnalysis, InteractionTypeHealthReport:
		return true
	}
	return false
}

// InteractionEvent is one row of the append-only interaction ledger.
// Events are immutable once inserted and keep the plan id they were recorded
// under even if the user later changes plans.
type InteractionEvent struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	PlanID          string          `json:"plan_id"`
	InteractionType InteractionType `json:"interaction_type"`
	// Month is the quota partition key, "YYYY-MM" computed in UTC at insert time.
	Month           string    `json:"month"`
	ClientRequestID string    `json:"client_request_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// MonthKey formats t as the ledger's "YYYY-MM" partition key in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// CurrentMonth returns the partition key for the current UTC month.
func CurrentMonth() string {
	return MonthKey(time.Now())
}

// QuotaDecision is the gate's answer for a single interaction attempt.
// RemainingInteractions and Limit are only set for plans with a finite quota.
type QuotaDecision struct {
	CanInteract           bool `json:"canInteract"`
	RemainingInteractions *int `json:"remainingInteractions,omitempty"`
	Limit                 *int `json:"limit,omitempty"`
}

// UsageStats is the display-only usage summary. Limit and Remaining are nil
// for unlimited plans.
type UsageStats struct {
	CurrentMonth int  `json:"currentMonth"`
	Limit        *int `json:"limit"`
	Remaining    *int `json:"remaining"`
	HasUnlimited bool `json:"hasUnlimited"`
}

// InteractionRepository defines persistence for the interaction ledger.
type InteractionRepository interface {
	// Insert appends one event. When event.ClientRequestID is set the insert
	// is idempotent on (user_id, client_request_id) so client retries do not
	// double-count.
	Insert(ctx context.Context, event *InteractionEvent) error
	// CountForMonth counts events matching all three keys exactly. No caching;
	// every call hits the store.
	CountForMonth(ctx context.Context, userID, planID, month string) (int, error)
}

// QuotaService combines the quota gate and the interaction recorder.
type QuotaService interface {
	// CanInteract decides whether one more interaction is permitted this month.
	// Unknown plan fails closed; a broken count query fails per the configured
	// policy (open by default).
	CanInteract(ctx context.Context, userID, planID string) QuotaDecision
	// GetStats never returns an error; on failure it falls back to zero counts.
	GetStats(ctx context.Context, userID, planID string) UsageStats
	// Record appends a consumed interaction to the ledger. Callers log and
	// swallow the returned error; recording must not block the user response.
	Record(ctx context.Context, userID, planID string, interactionType InteractionType, clientRequestID string) error
}
