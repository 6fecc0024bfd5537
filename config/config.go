package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds service configuration
type Config struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// DataDir is where the SQLite database lives. Empty means the per-user
	// default under the home directory.
	DataDir string

	// ClassifierURL is the base URL of the classification service.
	ClassifierURL string
	// ClassifyTimeout bounds one classification round trip.
	ClassifyTimeout time.Duration

	// FetchTimeout bounds one policy document fetch.
	FetchTimeout time.Duration
	// MaxPolicySize caps how many bytes of a policy document are read.
	MaxPolicySize int64

	// WebhookURL receives alerts for blocking verdicts. Empty disables
	// notifications.
	WebhookURL string
}

// New creates a new configuration from environment variables
func New() *Config {
	return &Config{
		Port:            getEnv("FIREWALL_PORT", "8080"),
		ReadTimeout:     getDurationEnv("FIREWALL_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getDurationEnv("FIREWALL_WRITE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getDurationEnv("FIREWALL_SHUTDOWN_TIMEOUT", 30*time.Second),
		DataDir:         getEnv("FIREWALL_DATA_DIR", ""),
		ClassifierURL:   getEnv("FIREWALL_CLASSIFIER_URL", "http://localhost:8000"),
		ClassifyTimeout: getDurationEnv("FIREWALL_CLASSIFY_TIMEOUT", 30*time.Second),
		FetchTimeout:    getDurationEnv("FIREWALL_FETCH_TIMEOUT", 15*time.Second),
		MaxPolicySize:   getInt64Env("FIREWALL_MAX_POLICY_SIZE", 2*1024*1024), // 2MB
		WebhookURL:      getEnv("FIREWALL_WEBHOOK_URL", ""),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable with a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getInt64Env gets an int64 environment variable with a default value
func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
