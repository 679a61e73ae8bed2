package domain

import (
	"context"
	"time"
)

// FAQEntry is a piece of admin-managed landing page content.
type FAQEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Position  int       `json:"position"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FAQRepository defines persistence for FAQ content.
type FAQRepository interface {
	// ListPublished returns published entries ordered by position ascending.
	ListPublished(ctx context.Context) ([]FAQEntry, error)
	ListAll(ctx context.Context) ([]FAQEntry, error)
	Create(ctx context.Context, entry *FAQEntry) error
	Update(ctx context.Context, entry *FAQEntry) error
	Delete(ctx context.Context, id string) error
}
