package domain

import "errors"

// Domain errors
var (
	ErrPlanNotFound            = errors.New("plan not found")
	ErrStoreUnavailable        = errors.New("store unavailable")
	ErrPersistence             = errors.New("persistence error")
	ErrInteractionLimitReached = errors.New("interaction limit reached")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidToken            = errors.New("invalid token")
	ErrAccountDisabled         = errors.New("account disabled")
	ErrInvalidInteractionType  = errors.New("invalid interaction type")
	ErrInvalidClientRequestID  = errors.New("invalid client request id")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
