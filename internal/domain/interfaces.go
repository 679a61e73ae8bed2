package domain

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetGCPProjectID() string
	GetGCPLocation() string
	GetStripeAPIKey() string
	GetAdminAPISecret() string
	// QuotaFailOpen controls gate behavior when the usage count query fails:
	// true allows the interaction, false denies it. Plan-not-found always
	// denies regardless of this flag.
	QuotaFailOpen() bool
}
