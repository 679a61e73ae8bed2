package handler

import (
	"context"
	"net/http"
	"strings"

	"ai-doctor-helper/internal/domain"
)

// AuthValidator validates Supabase JWTs and checks account status.
type AuthValidator interface {
	ValidateToken(token string) (*domain.SupabaseUser, error)
	IsAccountDisabled(ctx context.Context, userID string) (bool, error)
}

// AuthMiddleware validates Supabase JWT tokens
type AuthMiddleware struct {
	authService AuthValidator
	logger      domain.Logger
}

func NewAuthMiddleware(authService AuthValidator, logger domain.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger,
	}
}

// Middleware requires a valid bearer token and an enabled account.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		user, err := m.authService.ValidateToken(token)
		if err != nil {
			m.logger.Error("Token validation failed", err)
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		disabled, err := m.authService.IsAccountDisabled(r.Context(), user.ID)
		if err != nil {
			// Status check is advisory; a broken profile read must not lock
			// everyone out.
			m.logger.Warn("Account status check failed", "user_id", user.ID, "error", err)
		} else if disabled {
			writeError(w, http.StatusForbidden, "Account disabled")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithAuth(r.Context(), user, token)))
	})
}

// Optional attaches the user when a valid bearer token is present and lets
// the request through anonymously otherwise. Gated endpoints use this;
// anonymous requests are not metered.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authService.ValidateToken(token)
		if err != nil {
			m.logger.Warn("Ignoring invalid token on optional-auth route", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		disabled, err := m.authService.IsAccountDisabled(r.Context(), user.ID)
		if err == nil && disabled {
			writeError(w, http.StatusForbidden, "Account disabled")
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithAuth(r.Context(), user, token)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func contextWithAuth(ctx context.Context, user *domain.SupabaseUser, token string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, user)
	return context.WithValue(ctx, tokenContextKey, token)
}
