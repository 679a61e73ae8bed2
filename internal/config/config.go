package config

import (
	"os"
	"strconv"

	"ai-doctor-helper/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	LogLevel       string
	SupabaseURL    string
	SupabaseKey    string
	GCPProjectID   string
	GCPLocation    string
	StripeAPIKey   string
	AdminAPISecret string
	FailOpen       bool
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_SERVICE_ROLE_KEY", ""),
		GCPProjectID:   getEnvOrDefault("GCP_PROJECT_ID", ""),
		GCPLocation:    getEnvOrDefault("GCP_LOCATION", "us-central1"),
		StripeAPIKey:   getEnvOrDefault("STRIPE_API_KEY", ""),
		AdminAPISecret: getEnvOrDefault("ADMIN_API_SECRET", ""),
		// Metering outages allow the interaction unless this is set to false.
		FailOpen: getEnvBoolOrDefault("QUOTA_FAIL_OPEN", true),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase service role key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetGCPProjectID returns the Google Cloud project id used for Vertex AI
func (c *AppConfig) GetGCPProjectID() string {
	return c.GCPProjectID
}

// GetGCPLocation returns the Vertex AI location
func (c *AppConfig) GetGCPLocation() string {
	return c.GCPLocation
}

// GetStripeAPIKey returns the Stripe secret key
func (c *AppConfig) GetStripeAPIKey() string {
	return c.StripeAPIKey
}

// GetAdminAPISecret returns the shared secret for admin endpoints
func (c *AppConfig) GetAdminAPISecret() string {
	return c.AdminAPISecret
}

// QuotaFailOpen returns the gate policy for metering failures
func (c *AppConfig) QuotaFailOpen() bool {
	return c.FailOpen
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
