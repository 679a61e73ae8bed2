package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-doctor-helper/internal/domain"
)

const accountDisabledCacheTTL = 30 * time.Second

type accountDisabledCacheEntry struct {
	disabled  bool
	expiresAt time.Time
}

type authService struct {
	supabaseClient domain.SupabaseClient
	profileRepo    domain.ProfileRepository
	logger         domain.Logger

	accountDisabledCacheMu sync.RWMutex
	accountDisabledCache   map[string]accountDisabledCacheEntry
}

func NewAuthService(
	supabaseClient domain.SupabaseClient,
	profileRepo domain.ProfileRepository,
	logger domain.Logger,
) *authService {
	return &authService{
		supabaseClient:       supabaseClient,
		profileRepo:          profileRepo,
		logger:               logger,
		accountDisabledCache: make(map[string]accountDisabledCacheEntry),
	}
}

// ValidateToken validates a token and returns user info (for frontend validation)
func (s *authService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return user, nil
}

// IsAccountDisabled checks the persisted flag on the user's profile.
// Users without a profile row default to enabled.
func (s *authService) IsAccountDisabled(ctx context.Context, userID string) (bool, error) {
	now := time.Now()
	s.accountDisabledCacheMu.RLock()
	entry, ok := s.accountDisabledCache[userID]
	s.accountDisabledCacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.disabled, nil
	}

	profile, err := s.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get account status: %w", err)
	}
	disabled := profile != nil && profile.AccountDisabled

	s.accountDisabledCacheMu.Lock()
	s.accountDisabledCache[userID] = accountDisabledCacheEntry{disabled: disabled, expiresAt: now.Add(accountDisabledCacheTTL)}
	s.accountDisabledCacheMu.Unlock()

	return disabled, nil
}
