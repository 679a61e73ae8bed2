package handler

import (
	"encoding/json"
	"net/http"

	"ai-doctor-helper/internal/domain"
	apperrors "ai-doctor-helper/pkg/errors"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) (*domain.SupabaseUser, bool) {
	user, ok := r.Context().Value(userContextKey).(*domain.SupabaseUser)
	return user, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeAppError writes a typed application error; the status code comes from
// the error type, not the call site.
func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	writeError(w, appErr.StatusCode, appErr.Message)
}

// limitReachedResponse is the 429 body returned when the quota gate denies an
// interaction. Limit is null for plans whose limit could not be determined.
type limitReachedResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Remaining int    `json:"remaining"`
	Limit     *int   `json:"limit"`
}

// writeLimitReached writes the machine-readable limit_reached response.
func writeLimitReached(w http.ResponseWriter, decision domain.QuotaDecision) {
	appErr := apperrors.NewRateLimitedError("Interaction limit reached")
	remaining := 0
	if decision.RemainingInteractions != nil {
		remaining = *decision.RemainingInteractions
	}
	writeJSON(w, appErr.StatusCode, limitReachedResponse{
		Error:     appErr.Message,
		Message:   "You have used all interactions included in your plan this month. Upgrade your plan to continue.",
		Remaining: remaining,
		Limit:     decision.Limit,
	})
}
